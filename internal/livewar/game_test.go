// internal/livewar/game_test.go
package livewar

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentchat/moment/internal/protocol"
)

type testRecipient struct {
	userID    int64
	anonymous bool
}

// mockBroadcaster collects frames instead of sending them over WS.
type mockBroadcaster struct {
	mu         sync.Mutex
	messages   []*protocol.GameMessage
	recipients []testRecipient
	states     map[testRecipient]*protocol.GameStatePayload
}

func newMockBroadcaster(recipients ...testRecipient) *mockBroadcaster {
	return &mockBroadcaster{
		recipients: recipients,
		states:     make(map[testRecipient]*protocol.GameStatePayload),
	}
}

func (mb *mockBroadcaster) broadcast(msg *protocol.GameMessage) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.messages = append(mb.messages, msg)
}

func (mb *mockBroadcaster) broadcastEach(build func(userID int64, anonymous bool) *protocol.GameMessage) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, r := range mb.recipients {
		msg := build(r.userID, r.anonymous)
		if msg != nil && msg.GameState != nil {
			mb.states[r] = msg.GameState
		}
	}
}

func (mb *mockBroadcaster) lastOfType(t protocol.GameMsgType) *protocol.GameMessage {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.messages) - 1; i >= 0; i-- {
		if mb.messages[i].Type == t {
			return mb.messages[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) stateFor(r testRecipient) *protocol.GameStatePayload {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.states[r]
}

func (mb *mockBroadcaster) messageCount() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.messages)
}

// setupTestGame builds a deterministic game: fixed rng seed, a manual clock,
// and the background loop disabled so tests drive ticks themselves.
func setupTestGame(t *testing.T, recipients ...testRecipient) (*Game, *mockBroadcaster, *float64) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	g := NewGame(1, logrus.NewEntry(logger))
	g.rng = rand.New(rand.NewSource(42))

	clock := 1000.0
	g.now = func() float64 { return clock }
	g.loopRunning = true

	mb := newMockBroadcaster(recipients...)
	g.Broadcast = mb.broadcast
	g.BroadcastEach = mb.broadcastEach
	return g, mb, &clock
}

func runTick(g *Game) {
	g.Mu.Lock()
	g.tickLocked()
	g.Mu.Unlock()
}

func TestJoinRequiresLogin(t *testing.T) {
	g, mb, _ := setupTestGame(t)

	err := g.HandleJoin(0, "Anonymous", true, TeamRed)
	require.Error(t, err)
	assert.Equal(t, "请先登录再加入游戏", err.Error())
	assert.Zero(t, mb.messageCount())

	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Empty(t, g.state.Players)
}

func TestJoinAssignsTeamAndStarterMiner(t *testing.T) {
	g, mb, _ := setupTestGame(t, testRecipient{userID: 1})

	require.NoError(t, g.HandleJoin(1, "alice", false, ""))

	joined := mb.lastOfType(protocol.GameMsgPlayerJoined)
	require.NotNil(t, joined)
	require.NotNil(t, joined.PlayerEvent)
	assert.Equal(t, "1", joined.PlayerEvent.PlayerID)
	assert.Equal(t, "alice", joined.PlayerEvent.PlayerName)
	assert.Equal(t, TeamRed, joined.PlayerEvent.Team)

	g.Mu.Lock()
	defer g.Mu.Unlock()
	st := g.state
	require.NotNil(t, st)
	assert.Equal(t, TeamRed, st.Teams[1])
	assert.Equal(t, int64(initialEnergy), st.Energies[1])
	assert.Equal(t, UnitMiner, st.Selected[1])
	require.Len(t, st.Units, 1)
	miner := st.Units[0]
	assert.Equal(t, UnitMiner, miner.Type)
	assert.Equal(t, st.RedBase.X+2, miner.X)
	assert.Equal(t, miner.ID, st.MainMinerID[1])
	assert.False(t, st.GameStarted, "one team alone must not start the match")
}

func TestGameStartsWhenBothTeamsFilled(t *testing.T) {
	g, mb, _ := setupTestGame(t, testRecipient{userID: 1}, testRecipient{userID: 2})

	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	assert.Nil(t, mb.lastOfType(protocol.GameMsgStarted))

	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))
	assert.NotNil(t, mb.lastOfType(protocol.GameMsgStarted))

	g.Mu.Lock()
	defer g.Mu.Unlock()
	st := g.state
	assert.True(t, st.GameStarted)
	assert.Equal(t, 1000.0, st.GameStartTime)
	assert.NotEmpty(t, st.MineFields, "starting mines are seeded at kickoff")
	assert.LessOrEqual(t, len(st.MineFields), 4)
	for _, m := range st.MineFields {
		assert.Equal(t, int64(mineEnergyMax), m.Energy)
	}
}

func TestJoinDuringPostGameGrace(t *testing.T) {
	recipients := []testRecipient{{userID: 1}, {userID: 2}, {userID: 3}}
	g, mb, clk := setupTestGame(t, recipients...)
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	g.Mu.Lock()
	g.state.Winner = TeamRed
	g.state.GameOverTime = *clk
	g.Mu.Unlock()

	*clk += 4
	err := g.HandleJoin(3, "carol", false, TeamBlue)
	require.Error(t, err)
	assert.Equal(t, "游戏刚结束，请等待 6 秒后再开始新游戏", err.Error())

	// The join itself still lands; only the fresh start is delayed.
	joined := mb.lastOfType(protocol.GameMsgPlayerJoined)
	require.NotNil(t, joined)
	assert.Equal(t, "3", joined.PlayerEvent.PlayerID)
	g.Mu.Lock()
	defer g.Mu.Unlock()
	_, ok := g.state.Players[3]
	assert.True(t, ok)
}

func TestLeaveBeforeStart(t *testing.T) {
	g, mb, _ := setupTestGame(t, testRecipient{userID: 1})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))

	require.NoError(t, g.HandleLeave(1, "alice", false))

	left := mb.lastOfType(protocol.GameMsgPlayerLeft)
	require.NotNil(t, left)
	assert.Equal(t, "1", left.PlayerEvent.PlayerID)
	assert.Equal(t, "", left.PlayerEvent.Team)

	g.Mu.Lock()
	defer g.Mu.Unlock()
	st := g.state
	assert.Empty(t, st.Players)
	assert.Empty(t, st.Units, "the starter miner leaves with its owner")
	assert.Empty(t, st.MainMinerID)
}

func TestLeaveAfterStartRejected(t *testing.T) {
	g, _, _ := setupTestGame(t, testRecipient{userID: 1}, testRecipient{userID: 2})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	err := g.HandleLeave(1, "alice", false)
	require.Error(t, err)
	assert.Equal(t, "游戏已经开始，无法退出队伍", err.Error())

	g.Mu.Lock()
	defer g.Mu.Unlock()
	_, ok := g.state.Players[1]
	assert.True(t, ok)
}

func TestSpawnUnitCostsEnergy(t *testing.T) {
	g, _, _ := setupTestGame(t, testRecipient{userID: 1})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleSelectUnit(1, false, UnitHeavyTank))

	require.NoError(t, g.HandleSpawnUnit(1, false))

	g.Mu.Lock()
	assert.Equal(t, int64(0), g.state.Energies[1])
	require.Len(t, g.state.Units, 2)
	tank := g.state.Units[1]
	assert.Equal(t, UnitHeavyTank, tank.Type)
	assert.Equal(t, int64(220), tank.HP)
	g.Mu.Unlock()

	err := g.HandleSpawnUnit(1, false)
	require.Error(t, err)
	assert.Equal(t, "能量不足", err.Error())
}

func TestSpawnUnknownTypeFallsBackToMinerCost(t *testing.T) {
	g, _, _ := setupTestGame(t, testRecipient{userID: 1})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleSelectUnit(1, false, "dragon"))

	require.NoError(t, g.HandleSpawnUnit(1, false))

	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Equal(t, int64(80), g.state.Energies[1])
	spawned := g.state.Units[len(g.state.Units)-1]
	assert.Equal(t, "dragon", spawned.Type)
	assert.Equal(t, int64(60), spawned.HP)
	// the tracked starter miner is untouched by a non-miner spawn
	assert.Equal(t, g.state.Units[0].ID, g.state.MainMinerID[1])
}

func TestSelectAndSpawnIgnoreNonPlayers(t *testing.T) {
	g, _, _ := setupTestGame(t)

	require.NoError(t, g.HandleSelectUnit(7, false, UnitHeavyTank))
	require.NoError(t, g.HandleSpawnUnit(7, false))

	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Empty(t, g.state.Units)
	_, ok := g.state.Selected[7]
	assert.False(t, ok)
}

func TestSelectUnitIsFree(t *testing.T) {
	g, _, _ := setupTestGame(t, testRecipient{userID: 1})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))

	require.NoError(t, g.HandleSelectUnit(1, false, UnitHeavyTank))
	require.NoError(t, g.HandleSelectUnit(1, false, UnitHeavyTank))
	require.NoError(t, g.HandleSelectUnit(1, false, ""))

	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Equal(t, UnitMiner, g.state.Selected[1])
	assert.Equal(t, int64(initialEnergy), g.state.Energies[1])
}

func TestMinerMinesAndDeposits(t *testing.T) {
	g, _, clk := setupTestGame(t, testRecipient{userID: 1}, testRecipient{userID: 2})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	g.Mu.Lock()
	st := g.state
	miner := st.Units[0]
	st.MineFields = []*MineField{newMine(miner.X+0.3, miner.Y, *clk)}
	st.LastMineSpawn = *clk
	g.Mu.Unlock()

	// Three ticks to fill the satchel, one to haul it home.
	for i := 0; i < 4; i++ {
		*clk += tickSeconds
		runTick(g)
	}

	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Equal(t, int64(initialEnergy+30), st.Energies[1])
	assert.Equal(t, int64(0), miner.CarryingEnergy)
	// 1000 minus three harvests of 10, plus regen on the ticks it was short
	assert.Equal(t, int64(979), st.MineFields[0].Energy)
}

func TestCombatCooldownKillAndRespawn(t *testing.T) {
	g, _, clk := setupTestGame(t, testRecipient{userID: 1}, testRecipient{userID: 2})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	g.Mu.Lock()
	st := g.state
	st.MineFields = nil
	st.LastMineSpawn = *clk
	victim := st.Units[1]
	attacker := &Unit{
		ID:          "atk1",
		Type:        UnitAssaultTank,
		Team:        TeamRed,
		OwnerID:     1,
		X:           victim.X + 1,
		Y:           victim.Y,
		HP:          120,
		HPMax:       120,
		Attack:      32,
		Speed:       1.2,
		AttackRange: 2.5,
		TargetX:     victim.X + 1,
		TargetY:     victim.Y,
	}
	st.Units = append(st.Units, attacker)
	g.Mu.Unlock()

	*clk += tickSeconds
	runTick(g)

	g.Mu.Lock()
	assert.Equal(t, int64(60-32), victim.HP)
	assert.Equal(t, *clk, attacker.LastAttackTime)
	g.Mu.Unlock()

	// Within the cooldown window nobody fires again.
	*clk += tickSeconds
	runTick(g)
	g.Mu.Lock()
	assert.Equal(t, int64(28), victim.HP)
	g.Mu.Unlock()

	// Past the cooldown the second shot kills the miner.
	*clk += 1.0
	runTick(g)

	g.Mu.Lock()
	assert.True(t, victim.IsDead)
	require.Len(t, st.EnergyDrops, 1)
	assert.Equal(t, int64(10), st.EnergyDrops[0].Energy)
	_, tracked := st.MainMinerID[2]
	assert.False(t, tracked)
	assert.Equal(t, *clk, st.MinerDeathTime[2])
	g.Mu.Unlock()

	// Five seconds later the starter miner respawns at the team base.
	*clk += minerRespawnDelay
	runTick(g)

	g.Mu.Lock()
	newMinerID, ok := st.MainMinerID[2]
	assert.True(t, ok)
	assert.NotEmpty(t, newMinerID)
	_, pending := st.MinerDeathTime[2]
	assert.False(t, pending)
	assert.Contains(t, st.PlayerLogs[2], "bob 的矿工已重生")
	g.Mu.Unlock()

	// The dropped energy evaporates after a minute on the ground.
	*clk += dropLifetime
	runTick(g)
	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Empty(t, st.EnergyDrops)
}

func TestEngineerHealsNearbyAllies(t *testing.T) {
	g, _, clk := setupTestGame(t, testRecipient{userID: 1}, testRecipient{userID: 2})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	g.Mu.Lock()
	st := g.state
	st.MineFields = nil
	st.LastMineSpawn = *clk
	wounded := st.Units[0]
	wounded.HP = 30
	eng := &Unit{
		ID:          "eng1",
		Type:        UnitEngineer,
		Team:        TeamRed,
		OwnerID:     1,
		X:           wounded.X + 1,
		Y:           wounded.Y,
		HP:          90,
		HPMax:       90,
		Attack:      12,
		Speed:       4.0,
		AttackRange: 1.5,
		TargetX:     wounded.X + 1,
		TargetY:     wounded.Y,
	}
	st.Units = append(st.Units, eng)
	engStartX, engStartY := eng.X, eng.Y
	g.Mu.Unlock()

	*clk += tickSeconds
	runTick(g)

	g.Mu.Lock()
	defer g.Mu.Unlock()
	assert.Equal(t, int64(31), wounded.HP)
	// one marker on the patient, one aura on the engineer
	assert.Len(t, st.HealEffects, 2)
	assert.Equal(t, engStartX, eng.X, "a healing engineer holds position")
	assert.Equal(t, engStartY, eng.Y)
}

func TestGameOverBroadcastAndReset(t *testing.T) {
	alice := testRecipient{userID: 1}
	g, mb, clk := setupTestGame(t, alice, testRecipient{userID: 2})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	g.Mu.Lock()
	g.state.BlueBase.HP = 0
	g.Mu.Unlock()

	*clk += tickSeconds
	runTick(g)

	over := mb.lastOfType(protocol.GameMsgOver)
	require.NotNil(t, over)
	require.NotNil(t, over.GameOver)
	assert.Equal(t, TeamRed, over.GameOver.Winner)
	assert.Equal(t, "RED", over.GameOver.WinnerName)

	state := mb.stateFor(alice)
	require.NotNil(t, state)
	assert.Equal(t, TeamRed, state.Winner)
	assert.Contains(t, state.Logs, "游戏结束，红方获胜")

	// Ten seconds later the room resets to an empty pre-game roster.
	*clk += gameOverResetDelay
	runTick(g)

	g.Mu.Lock()
	defer g.Mu.Unlock()
	st := g.state
	assert.Empty(t, st.Players)
	assert.False(t, st.GameStarted)
	assert.Equal(t, "", st.Winner)
	assert.Equal(t, st.BlueBase.HPMax, st.BlueBase.HP)
	assert.Equal(t, st.RedBase.HPMax, st.RedBase.HP)
	assert.Empty(t, st.Units)
	assert.Zero(t, st.Tick)
}

func TestStateDistinguishesPlayersAndSpectators(t *testing.T) {
	alice := testRecipient{userID: 1}
	bob := testRecipient{userID: 2}
	watcher := testRecipient{anonymous: true}
	g, mb, _ := setupTestGame(t, alice, bob, watcher)

	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	aliceState := mb.stateFor(alice)
	require.NotNil(t, aliceState)
	require.NotNil(t, aliceState.Player)
	assert.Equal(t, "1", aliceState.Player.ID)
	assert.Equal(t, TeamRed, aliceState.Player.Team)
	assert.Equal(t, int64(initialEnergy), aliceState.Player.Energy)

	bobState := mb.stateFor(bob)
	require.NotNil(t, bobState)
	assert.Equal(t, "2", bobState.Player.ID)

	watcherState := mb.stateFor(watcher)
	require.NotNil(t, watcherState)
	require.NotNil(t, watcherState.Player, "spectators get an empty player, not a missing one")
	assert.Equal(t, "", watcherState.Player.ID)
	assert.Equal(t, int64(0), watcherState.Player.Energy)

	require.NotNil(t, aliceState.Room)
	assert.Equal(t, "Room-1", aliceState.Room.Name)
	assert.Len(t, aliceState.Players, 2)
	assert.Equal(t, aliceState.Tick, watcherState.Tick)
}

func TestOccupancyRules(t *testing.T) {
	st := newRoomState(60, 60, 0)
	st.Units = []*Unit{
		{ID: "a", Type: UnitMiner, X: 10.2, Y: 10.7},
		{ID: "b", Type: UnitHeavyTank, X: 10.9, Y: 10.1},
	}

	// Two regular units fill a cell for a third.
	assert.True(t, st.blocked(10.5, 10.5, "c", UnitMiner))
	// A unit never blocks itself.
	assert.False(t, st.blocked(10.5, 10.5, "a", UnitMiner))
	// Engineers ignore the regular limit entirely.
	assert.False(t, st.blocked(10.5, 10.5, "c", UnitEngineer))

	// Two engineers only crowd out a third engineer.
	st.Units = append(st.Units,
		&Unit{ID: "e1", Type: UnitEngineer, X: 20.1, Y: 20.1},
		&Unit{ID: "e2", Type: UnitEngineer, X: 20.8, Y: 20.8},
	)
	assert.True(t, st.blocked(20.5, 20.5, "x", UnitEngineer))
	assert.False(t, st.blocked(20.5, 20.5, "x", UnitMiner))

	// Base cells stop regular units but not engineers.
	assert.True(t, st.blocked(st.RedBase.X+0.4, st.RedBase.Y+0.4, "x", UnitMiner))
	assert.False(t, st.blocked(st.RedBase.X+0.4, st.RedBase.Y+0.4, "x", UnitEngineer))
}

func TestMoveTowardsMakesProgressAndClamps(t *testing.T) {
	g, _, _ := setupTestGame(t)
	g.Mu.Lock()
	defer g.Mu.Unlock()
	st := g.ensureStateLocked()

	u := &Unit{ID: "m1", Type: UnitMiner, Team: TeamRed, X: 30, Y: 30, Speed: 1.0}
	st.Units = append(st.Units, u)

	before := distance(u.X, u.Y, 40, 30)
	g.moveTowardsLocked(st, u, 40, 30)
	after := distance(u.X, u.Y, 40, 30)
	assert.Less(t, after, before)
	assert.InDelta(t, 0.1, before-after, 1e-9)
	assert.Equal(t, 40.0, u.TargetX)

	// Pushed past the border the unit parks on the clamp line.
	u.X, u.Y = 3, 30
	for i := 0; i < 50; i++ {
		g.moveTowardsLocked(st, u, -20, 30)
	}
	assert.Equal(t, 2.0, u.X)
}

func TestPeriodicMineSpawn(t *testing.T) {
	g, _, clk := setupTestGame(t, testRecipient{userID: 1}, testRecipient{userID: 2})
	require.NoError(t, g.HandleJoin(1, "alice", false, TeamRed))
	require.NoError(t, g.HandleJoin(2, "bob", false, TeamBlue))

	g.Mu.Lock()
	st := g.state
	st.MineFields = nil
	st.LastMineSpawn = *clk - mineSpawnInterval
	g.Mu.Unlock()

	*clk += tickSeconds
	runTick(g)

	g.Mu.Lock()
	defer g.Mu.Unlock()
	require.Len(t, st.MineFields, 1)
	m := st.MineFields[0]
	assert.Equal(t, int64(mineEnergyMax), m.Energy)
	assert.Greater(t, distance(m.X, m.Y, st.RedBase.X, st.RedBase.Y), 5.0)
	assert.Greater(t, distance(m.X, m.Y, st.BlueBase.X, st.BlueBase.Y), 5.0)
	assert.Equal(t, *clk, st.LastMineSpawn)
}

func TestRecentLogsCaps(t *testing.T) {
	g, _, _ := setupTestGame(t)
	g.Mu.Lock()
	defer g.Mu.Unlock()
	st := g.ensureStateLocked()

	for i := int64(1); i <= 5; i++ {
		st.addPlayer(i, fmt.Sprintf("p%d", i))
		for j := 0; j < 4; j++ {
			g.appendLogLocked(st, i, fmt.Sprintf("p%d line %d", i, j))
		}
	}

	logs := recentLogs(st)
	assert.Len(t, logs, 10)
	assert.Equal(t, "p5 line 3", logs[len(logs)-1])
}
