// internal/protocol/encode.go
package protocol

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes the envelope as a protobuf wire frame. Scalar zero
// values are omitted; set submessages are emitted even when empty.
func (e *Envelope) Marshal() []byte {
	var b []byte
	if e.Chat != nil {
		b = appendMsg(b, 1, e.Chat.appendTo(nil))
	}
	if e.Game != nil {
		b = appendMsg(b, 2, e.Game.appendTo(nil))
	}
	return b
}

func appendStr(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendMsg(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func (m *ChatMessage) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.User)
	b = appendVarint(b, 2, m.RoomID)
	b = appendStr(b, 3, m.Content)
	b = appendVarint(b, 4, m.Timestamp)
	b = appendVarint(b, 5, int64(m.Type))
	return b
}

func (m *GameMessage) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, int64(m.Type))
	if m.JoinGame != nil {
		b = appendMsg(b, 2, m.JoinGame.appendTo(nil))
	}
	if m.SelectUnit != nil {
		b = appendMsg(b, 3, m.SelectUnit.appendTo(nil))
	}
	if m.GameState != nil {
		b = appendMsg(b, 4, m.GameState.appendTo(nil))
	}
	if m.PlayerEvent != nil {
		b = appendMsg(b, 5, m.PlayerEvent.appendTo(nil))
	}
	if m.GameOver != nil {
		b = appendMsg(b, 6, m.GameOver.appendTo(nil))
	}
	if m.Error != nil {
		b = appendMsg(b, 7, m.Error.appendTo(nil))
	}
	return b
}

func (m *JoinGamePayload) appendTo(b []byte) []byte {
	return appendStr(b, 1, m.Team)
}

func (m *SelectUnitPayload) appendTo(b []byte) []byte {
	return appendStr(b, 1, m.UnitType)
}

func (m *ErrorPayload) appendTo(b []byte) []byte {
	return appendStr(b, 1, m.Message)
}

func (m *PlayerEventPayload) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.PlayerID)
	b = appendStr(b, 2, m.PlayerName)
	b = appendStr(b, 3, m.Team)
	return b
}

func (m *GameOverPayload) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.Winner)
	b = appendStr(b, 2, m.WinnerName)
	return b
}

func (m *PlayerSummary) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendStr(b, 2, m.Name)
	b = appendStr(b, 3, m.Team)
	return b
}

func (m *Player) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendStr(b, 2, m.Name)
	b = appendStr(b, 3, m.Team)
	b = appendStr(b, 4, m.SelectedUnitType)
	b = appendVarint(b, 5, m.Energy)
	return b
}

func (m *TeamStats) appendTo(b []byte) []byte {
	return appendVarint(b, 1, m.Units)
}

func (m *TeamStatsMap) appendTo(b []byte) []byte {
	if m.Red != nil {
		b = appendMsg(b, 1, m.Red.appendTo(nil))
	}
	if m.Blue != nil {
		b = appendMsg(b, 2, m.Blue.appendTo(nil))
	}
	return b
}

func (m *Base) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendDouble(b, 2, m.X)
	b = appendDouble(b, 3, m.Y)
	b = appendVarint(b, 4, m.HP)
	b = appendVarint(b, 5, m.HPMax)
	return b
}

func (m *MineField) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendDouble(b, 2, m.X)
	b = appendDouble(b, 3, m.Y)
	b = appendVarint(b, 4, m.Energy)
	b = appendVarint(b, 5, m.EnergyMax)
	return b
}

func (m *Unit) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendStr(b, 2, m.Type)
	b = appendStr(b, 3, m.Team)
	b = appendStr(b, 4, m.OwnerID)
	b = appendDouble(b, 5, m.X)
	b = appendDouble(b, 6, m.Y)
	b = appendVarint(b, 7, m.HP)
	b = appendVarint(b, 8, m.HPMax)
	b = appendVarint(b, 9, m.Attack)
	b = appendDouble(b, 10, m.Speed)
	b = appendBool(b, 11, m.IsDead)
	b = appendVarint(b, 12, m.CarryingEnergy)
	b = appendDouble(b, 13, m.TargetX)
	b = appendDouble(b, 14, m.TargetY)
	return b
}

func (m *EnergyDrop) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendDouble(b, 2, m.X)
	b = appendDouble(b, 3, m.Y)
	b = appendVarint(b, 4, m.Energy)
	return b
}

func (m *HealEffect) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendDouble(b, 2, m.X)
	b = appendDouble(b, 3, m.Y)
	b = appendDouble(b, 4, m.CreatedTime)
	b = appendDouble(b, 5, m.Lifetime)
	b = appendStr(b, 6, m.Team)
	return b
}

func (m *BulletEffect) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.ID)
	b = appendDouble(b, 2, m.FromX)
	b = appendDouble(b, 3, m.FromY)
	b = appendDouble(b, 4, m.ToX)
	b = appendDouble(b, 5, m.ToY)
	b = appendDouble(b, 6, m.CreatedTime)
	b = appendDouble(b, 7, m.Lifetime)
	b = appendStr(b, 8, m.Team)
	return b
}

func (m *Room) appendTo(b []byte) []byte {
	b = appendStr(b, 1, m.Name)
	b = appendVarint(b, 2, m.Width)
	b = appendVarint(b, 3, m.Height)
	if m.RedBase != nil {
		b = appendMsg(b, 4, m.RedBase.appendTo(nil))
	}
	if m.BlueBase != nil {
		b = appendMsg(b, 5, m.BlueBase.appendTo(nil))
	}
	for _, f := range m.MineFields {
		b = appendMsg(b, 6, f.appendTo(nil))
	}
	for _, u := range m.Units {
		b = appendMsg(b, 7, u.appendTo(nil))
	}
	for _, d := range m.EnergyDrops {
		b = appendMsg(b, 8, d.appendTo(nil))
	}
	for _, h := range m.HealEffects {
		b = appendMsg(b, 9, h.appendTo(nil))
	}
	for _, bl := range m.BulletEffects {
		b = appendMsg(b, 10, bl.appendTo(nil))
	}
	return b
}

func (m *GameStatePayload) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, m.Tick)
	b = appendDouble(b, 2, m.GameTime)
	b = appendBool(b, 3, m.GameStarted)
	b = appendStr(b, 4, m.Winner)
	if m.Room != nil {
		b = appendMsg(b, 5, m.Room.appendTo(nil))
	}
	for _, l := range m.Logs {
		// repeated elements keep empty strings, unlike scalar fields
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendString(b, l)
	}
	if m.TeamStats != nil {
		b = appendMsg(b, 7, m.TeamStats.appendTo(nil))
	}
	for _, p := range m.Players {
		b = appendMsg(b, 8, p.appendTo(nil))
	}
	if m.Player != nil {
		b = appendMsg(b, 9, m.Player.appendTo(nil))
	}
	return b
}
