// internal/protocol/decode.go
package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Unmarshal decodes a wire frame into an Envelope. Unknown fields and
// unknown enum values are skipped or carried through untouched; only a
// structurally broken frame returns an error.
func Unmarshal(data []byte) (*Envelope, error) {
	env := &Envelope{}
	b := data
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("envelope: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return nil, fmt.Errorf("envelope chat: %w", err)
			}
			cm := &ChatMessage{}
			if err = cm.unmarshal(body); err != nil {
				return nil, fmt.Errorf("chat message: %w", err)
			}
			env.Chat = cm
		case num == 2 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return nil, fmt.Errorf("envelope game: %w", err)
			}
			gm := &GameMessage{}
			if err = gm.unmarshal(body); err != nil {
				return nil, fmt.Errorf("game message: %w", err)
			}
			env.Game = gm
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return nil, fmt.Errorf("envelope: %w", err)
			}
		}
	}
	return env, nil
}

func consumeString(b []byte) (string, []byte, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func consumeVarint(b []byte) (int64, []byte, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return int64(v), b[n:], nil
}

func consumeDouble(b []byte) (float64, []byte, error) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return math.Float64frombits(v), b[n:], nil
}

func consumeBool(b []byte) (bool, []byte, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return false, nil, protowire.ParseError(n)
	}
	return v != 0, b[n:], nil
}

func consumeMsg(b []byte) ([]byte, []byte, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) ([]byte, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return b[n:], nil
}

func (m *ChatMessage) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.User, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			if m.RoomID, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.BytesType:
			if m.Content, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.VarintType:
			if m.Timestamp, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.VarintType:
			var v int64
			if v, b, err = consumeVarint(b); err != nil {
				return err
			}
			m.Type = MessageType(v)
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *GameMessage) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v int64
			if v, b, err = consumeVarint(b); err != nil {
				return err
			}
			m.Type = GameMsgType(v)
		case num == 2 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &JoinGamePayload{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.JoinGame = p
		case num == 3 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &SelectUnitPayload{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.SelectUnit = p
		case num == 4 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &GameStatePayload{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.GameState = p
		case num == 5 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &PlayerEventPayload{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.PlayerEvent = p
		case num == 6 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &GameOverPayload{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.GameOver = p
		case num == 7 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &ErrorPayload{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.Error = p
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *JoinGamePayload) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Team, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *SelectUnitPayload) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.UnitType, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *ErrorPayload) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Message, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *PlayerEventPayload) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.PlayerID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.BytesType:
			if m.PlayerName, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.BytesType:
			if m.Team, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *GameOverPayload) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Winner, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.BytesType:
			if m.WinnerName, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *PlayerSummary) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.BytesType:
			if m.Name, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.BytesType:
			if m.Team, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Player) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.BytesType:
			if m.Name, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.BytesType:
			if m.Team, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.BytesType:
			if m.SelectedUnitType, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.VarintType:
			if m.Energy, b, err = consumeVarint(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *TeamStats) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if m.Units, b, err = consumeVarint(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *TeamStatsMap) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			s := &TeamStats{}
			if err = s.unmarshal(body); err != nil {
				return err
			}
			m.Red = s
		case num == 2 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			s := &TeamStats{}
			if err = s.unmarshal(body); err != nil {
				return err
			}
			m.Blue = s
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Base) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.Fixed64Type:
			if m.X, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.Fixed64Type:
			if m.Y, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.VarintType:
			if m.HP, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.VarintType:
			if m.HPMax, b, err = consumeVarint(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MineField) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.Fixed64Type:
			if m.X, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.Fixed64Type:
			if m.Y, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.VarintType:
			if m.Energy, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.VarintType:
			if m.EnergyMax, b, err = consumeVarint(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Unit) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.BytesType:
			if m.Type, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.BytesType:
			if m.Team, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.BytesType:
			if m.OwnerID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.Fixed64Type:
			if m.X, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 6 && typ == protowire.Fixed64Type:
			if m.Y, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 7 && typ == protowire.VarintType:
			if m.HP, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 8 && typ == protowire.VarintType:
			if m.HPMax, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 9 && typ == protowire.VarintType:
			if m.Attack, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 10 && typ == protowire.Fixed64Type:
			if m.Speed, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 11 && typ == protowire.VarintType:
			if m.IsDead, b, err = consumeBool(b); err != nil {
				return err
			}
		case num == 12 && typ == protowire.VarintType:
			if m.CarryingEnergy, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 13 && typ == protowire.Fixed64Type:
			if m.TargetX, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 14 && typ == protowire.Fixed64Type:
			if m.TargetY, b, err = consumeDouble(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *EnergyDrop) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.Fixed64Type:
			if m.X, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.Fixed64Type:
			if m.Y, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.VarintType:
			if m.Energy, b, err = consumeVarint(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *HealEffect) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.Fixed64Type:
			if m.X, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.Fixed64Type:
			if m.Y, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.Fixed64Type:
			if m.CreatedTime, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.Fixed64Type:
			if m.Lifetime, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 6 && typ == protowire.BytesType:
			if m.Team, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *BulletEffect) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.ID, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.Fixed64Type:
			if m.FromX, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.Fixed64Type:
			if m.FromY, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.Fixed64Type:
			if m.ToX, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.Fixed64Type:
			if m.ToY, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 6 && typ == protowire.Fixed64Type:
			if m.CreatedTime, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 7 && typ == protowire.Fixed64Type:
			if m.Lifetime, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 8 && typ == protowire.BytesType:
			if m.Team, b, err = consumeString(b); err != nil {
				return err
			}
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Room) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			if m.Name, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.VarintType:
			if m.Width, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.VarintType:
			if m.Height, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			base := &Base{}
			if err = base.unmarshal(body); err != nil {
				return err
			}
			m.RedBase = base
		case num == 5 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			base := &Base{}
			if err = base.unmarshal(body); err != nil {
				return err
			}
			m.BlueBase = base
		case num == 6 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			f := &MineField{}
			if err = f.unmarshal(body); err != nil {
				return err
			}
			m.MineFields = append(m.MineFields, f)
		case num == 7 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			u := &Unit{}
			if err = u.unmarshal(body); err != nil {
				return err
			}
			m.Units = append(m.Units, u)
		case num == 8 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			d := &EnergyDrop{}
			if err = d.unmarshal(body); err != nil {
				return err
			}
			m.EnergyDrops = append(m.EnergyDrops, d)
		case num == 9 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			h := &HealEffect{}
			if err = h.unmarshal(body); err != nil {
				return err
			}
			m.HealEffects = append(m.HealEffects, h)
		case num == 10 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			bl := &BulletEffect{}
			if err = bl.unmarshal(body); err != nil {
				return err
			}
			m.BulletEffects = append(m.BulletEffects, bl)
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *GameStatePayload) unmarshal(b []byte) error {
	var err error
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if m.Tick, b, err = consumeVarint(b); err != nil {
				return err
			}
		case num == 2 && typ == protowire.Fixed64Type:
			if m.GameTime, b, err = consumeDouble(b); err != nil {
				return err
			}
		case num == 3 && typ == protowire.VarintType:
			if m.GameStarted, b, err = consumeBool(b); err != nil {
				return err
			}
		case num == 4 && typ == protowire.BytesType:
			if m.Winner, b, err = consumeString(b); err != nil {
				return err
			}
		case num == 5 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			r := &Room{}
			if err = r.unmarshal(body); err != nil {
				return err
			}
			m.Room = r
		case num == 6 && typ == protowire.BytesType:
			var v string
			if v, b, err = consumeString(b); err != nil {
				return err
			}
			m.Logs = append(m.Logs, v)
		case num == 7 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			s := &TeamStatsMap{}
			if err = s.unmarshal(body); err != nil {
				return err
			}
			m.TeamStats = s
		case num == 8 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &PlayerSummary{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.Players = append(m.Players, p)
		case num == 9 && typ == protowire.BytesType:
			var body []byte
			if body, b, err = consumeMsg(b); err != nil {
				return err
			}
			p := &Player{}
			if err = p.unmarshal(body); err != nil {
				return err
			}
			m.Player = p
		default:
			if b, err = skipField(num, typ, b); err != nil {
				return err
			}
		}
	}
	return nil
}
