// internal/protocol/protocol_test.go
package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// TestChatRoundTrip encodes a chat frame and decodes it back.
func TestChatRoundTrip(t *testing.T) {
	in := &ChatMessage{
		User:      "alice",
		RoomID:    42,
		Content:   "hello room",
		Timestamp: 1700000000123,
		Type:      MsgUserText,
	}
	data := ChatFrame(in)
	require.NotEmpty(t, data)

	env, err := Unmarshal(data)
	require.NoError(t, err)
	require.NotNil(t, env.Chat)
	assert.Nil(t, env.Game)
	assert.Equal(t, *in, *env.Chat)
}

// TestGameStateRoundTrip covers the full nested world snapshot.
func TestGameStateRoundTrip(t *testing.T) {
	in := &GameMessage{
		Type: GameMsgState,
		GameState: &GameStatePayload{
			Tick:        991,
			GameTime:    12.7,
			GameStarted: true,
			Room: &Room{
				Name:     "Room-7",
				Width:    60,
				Height:   60,
				RedBase:  &Base{ID: "red_base", X: 8, Y: 52, HP: 730, HPMax: 1000},
				BlueBase: &Base{ID: "blue_base", X: 52, Y: 8, HP: 1000, HPMax: 1000},
				MineFields: []*MineField{
					{ID: "mine_a1b2c3", X: 14.2, Y: 44.8, Energy: 420, EnergyMax: 1000},
				},
				Units: []*Unit{
					{
						ID: "u-1", Type: "miner", Team: "red", OwnerID: "9",
						X: 10.5, Y: 50.25, HP: 48, HPMax: 60, Attack: 6,
						Speed: 1.0, CarryingEnergy: 30, TargetX: 14.2, TargetY: 44.8,
					},
					{
						ID: "u-2", Type: "heavy_tank", Team: "blue", OwnerID: "11",
						X: 30, Y: 30, HP: 220, HPMax: 220, Attack: 28, Speed: 0.5,
					},
				},
				EnergyDrops: []*EnergyDrop{
					{ID: "drop_deadbeef", X: 22, Y: 31, Energy: 40},
				},
				HealEffects: []*HealEffect{
					{ID: "heal_0a0b0c", X: 12, Y: 40, CreatedTime: 1700000000.5, Lifetime: 0.5, Team: "red"},
				},
				BulletEffects: []*BulletEffect{
					{ID: "bullet_0c0d0e", FromX: 30, FromY: 30, ToX: 28, ToY: 29, CreatedTime: 1700000000.9, Lifetime: 0.3, Team: "blue"},
				},
			},
			Logs:      []string{"[red] bob joined", "[blue] eve joined"},
			TeamStats: &TeamStatsMap{Red: &TeamStats{Units: 3}, Blue: &TeamStats{Units: 2}},
			Players: []*PlayerSummary{
				{ID: "9", Name: "bob", Team: "red"},
				{ID: "11", Name: "eve", Team: "blue"},
			},
			Player: &Player{ID: "9", Name: "bob", Team: "red", SelectedUnitType: "miner", Energy: 80},
		},
	}

	env, err := Unmarshal(GameFrame(in))
	require.NoError(t, err)
	require.NotNil(t, env.Game)
	assert.Nil(t, env.Chat)

	out := env.Game
	assert.Equal(t, GameMsgState, out.Type)
	require.NotNil(t, out.GameState)
	assert.Equal(t, in.GameState.Tick, out.GameState.Tick)
	assert.Equal(t, in.GameState.GameTime, out.GameState.GameTime)
	assert.True(t, out.GameState.GameStarted)
	assert.Equal(t, in.GameState.Logs, out.GameState.Logs)

	require.NotNil(t, out.GameState.Room)
	assert.Equal(t, *in.GameState.Room.RedBase, *out.GameState.Room.RedBase)
	assert.Equal(t, *in.GameState.Room.BlueBase, *out.GameState.Room.BlueBase)
	require.Len(t, out.GameState.Room.Units, 2)
	assert.Equal(t, *in.GameState.Room.Units[0], *out.GameState.Room.Units[0])
	assert.Equal(t, *in.GameState.Room.Units[1], *out.GameState.Room.Units[1])
	require.Len(t, out.GameState.Room.MineFields, 1)
	assert.Equal(t, *in.GameState.Room.MineFields[0], *out.GameState.Room.MineFields[0])
	require.Len(t, out.GameState.Room.EnergyDrops, 1)
	assert.Equal(t, *in.GameState.Room.EnergyDrops[0], *out.GameState.Room.EnergyDrops[0])
	require.Len(t, out.GameState.Room.HealEffects, 1)
	assert.Equal(t, *in.GameState.Room.HealEffects[0], *out.GameState.Room.HealEffects[0])
	require.Len(t, out.GameState.Room.BulletEffects, 1)
	assert.Equal(t, *in.GameState.Room.BulletEffects[0], *out.GameState.Room.BulletEffects[0])

	require.NotNil(t, out.GameState.TeamStats)
	assert.EqualValues(t, 3, out.GameState.TeamStats.Red.Units)
	assert.EqualValues(t, 2, out.GameState.TeamStats.Blue.Units)
	require.Len(t, out.GameState.Players, 2)
	assert.Equal(t, *in.GameState.Players[1], *out.GameState.Players[1])
	require.NotNil(t, out.GameState.Player)
	assert.Equal(t, *in.GameState.Player, *out.GameState.Player)
}

// TestClientCommandRoundTrips exercises the frames clients send.
func TestClientCommandRoundTrips(t *testing.T) {
	join := GameFrame(&GameMessage{Type: GameMsgJoin, JoinGame: &JoinGamePayload{Team: "blue"}})
	env, err := Unmarshal(join)
	require.NoError(t, err)
	require.NotNil(t, env.Game)
	assert.Equal(t, GameMsgJoin, env.Game.Type)
	require.NotNil(t, env.Game.JoinGame)
	assert.Equal(t, "blue", env.Game.JoinGame.Team)

	sel := GameFrame(&GameMessage{Type: GameMsgSelectUnit, SelectUnit: &SelectUnitPayload{UnitType: "assault_tank"}})
	env, err = Unmarshal(sel)
	require.NoError(t, err)
	require.NotNil(t, env.Game.SelectUnit)
	assert.Equal(t, "assault_tank", env.Game.SelectUnit.UnitType)

	spawn := GameFrame(&GameMessage{Type: GameMsgSpawnUnit})
	env, err = Unmarshal(spawn)
	require.NoError(t, err)
	assert.Equal(t, GameMsgSpawnUnit, env.Game.Type)

	move := ChatFrame(&ChatMessage{RoomID: 3, Content: `{"x": 7, "y": 7}`, Type: MsgGobangMove})
	env, err = Unmarshal(move)
	require.NoError(t, err)
	require.NotNil(t, env.Chat)
	assert.Equal(t, MsgGobangMove, env.Chat.Type)
	assert.JSONEq(t, `{"x":7,"y":7}`, env.Chat.Content)
}

// TestUnknownFieldSkipped verifies decode tolerates fields this build
// does not know about.
func TestUnknownFieldSkipped(t *testing.T) {
	body := (&ChatMessage{User: "bob", Content: "hi", Type: MsgUserText}).appendTo(nil)
	// future string field 99 and varint field 100
	body = protowire.AppendTag(body, 99, protowire.BytesType)
	body = protowire.AppendString(body, "future")
	body = protowire.AppendTag(body, 100, protowire.VarintType)
	body = protowire.AppendVarint(body, 7)

	var frame []byte
	frame = protowire.AppendTag(frame, 1, protowire.BytesType)
	frame = protowire.AppendBytes(frame, body)

	env, err := Unmarshal(frame)
	require.NoError(t, err)
	require.NotNil(t, env.Chat)
	assert.Equal(t, "bob", env.Chat.User)
	assert.Equal(t, "hi", env.Chat.Content)
	assert.Equal(t, MsgUserText, env.Chat.Type)
}

// TestUnknownEnumPreserved verifies unlisted enum values survive decode.
func TestUnknownEnumPreserved(t *testing.T) {
	env, err := Unmarshal(ChatFrame(&ChatMessage{Content: "x", Type: MessageType(42)}))
	require.NoError(t, err)
	require.NotNil(t, env.Chat)
	assert.Equal(t, MessageType(42), env.Chat.Type)
}

// TestEmptyPayloadPresence verifies a set-but-empty submessage keeps its
// presence across the wire, which the spectator Player view relies on.
func TestEmptyPayloadPresence(t *testing.T) {
	in := &GameMessage{
		Type:      GameMsgState,
		GameState: &GameStatePayload{Player: &Player{}},
	}
	env, err := Unmarshal(GameFrame(in))
	require.NoError(t, err)
	require.NotNil(t, env.Game)
	require.NotNil(t, env.Game.GameState)
	assert.NotNil(t, env.Game.GameState.Player, "empty player view should still be present")
	assert.Equal(t, Player{}, *env.Game.GameState.Player)
}

// TestZeroValuesOmitted checks scalar zeros produce no bytes.
func TestZeroValuesOmitted(t *testing.T) {
	data := ChatFrame(&ChatMessage{Type: MsgSystem})
	// envelope tag + zero-length chat body
	assert.Equal(t, []byte{0x0a, 0x00}, data)

	env, err := Unmarshal(data)
	require.NoError(t, err)
	require.NotNil(t, env.Chat)
	assert.Equal(t, ChatMessage{}, *env.Chat)
}

// TestTruncatedFrame checks structural damage is reported.
func TestTruncatedFrame(t *testing.T) {
	data := ChatFrame(&ChatMessage{User: "alice", Content: "hello", Type: MsgUserText})
	_, err := Unmarshal(data[:len(data)-2])
	assert.Error(t, err)
}

// TestEmptyFrame decodes to an envelope with no payload.
func TestEmptyFrame(t *testing.T) {
	env, err := Unmarshal(nil)
	require.NoError(t, err)
	assert.Nil(t, env.Chat)
	assert.Nil(t, env.Game)
}
