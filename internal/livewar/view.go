// internal/livewar/view.go
package livewar

import (
	"fmt"
	"strconv"

	"github.com/momentchat/moment/internal/protocol"
)

// basePayloadLocked builds the recipient-independent part of a state frame:
// map, bases, units, mines, drops, effects, roster, team counts and the
// aggregated log lines. Callers copy it and fill in Player per recipient.
func (g *Game) basePayloadLocked(st *RoomState) *protocol.GameStatePayload {
	room := &protocol.Room{
		Name:   fmt.Sprintf("Room-%d", g.RoomID),
		Width:  int64(st.Width),
		Height: int64(st.Height),
	}

	if st.RedBase != nil {
		room.RedBase = &protocol.Base{
			ID:    "red_base",
			X:     st.RedBase.X,
			Y:     st.RedBase.Y,
			HP:    st.RedBase.HP,
			HPMax: st.RedBase.HPMax,
		}
	}
	if st.BlueBase != nil {
		room.BlueBase = &protocol.Base{
			ID:    "blue_base",
			X:     st.BlueBase.X,
			Y:     st.BlueBase.Y,
			HP:    st.BlueBase.HP,
			HPMax: st.BlueBase.HPMax,
		}
	}

	for _, m := range st.MineFields {
		room.MineFields = append(room.MineFields, &protocol.MineField{
			ID:        m.ID,
			X:         m.X,
			Y:         m.Y,
			Energy:    m.Energy,
			EnergyMax: m.EnergyMax,
		})
	}

	for _, u := range st.Units {
		room.Units = append(room.Units, &protocol.Unit{
			ID:             u.ID,
			Type:           u.Type,
			Team:           u.Team,
			OwnerID:        strconv.FormatInt(u.OwnerID, 10),
			X:              u.X,
			Y:              u.Y,
			HP:             u.HP,
			HPMax:          u.HPMax,
			Attack:         u.Attack,
			Speed:          u.Speed,
			IsDead:         u.IsDead,
			CarryingEnergy: u.CarryingEnergy,
			TargetX:        u.TargetX,
			TargetY:        u.TargetY,
		})
	}

	for _, d := range st.EnergyDrops {
		room.EnergyDrops = append(room.EnergyDrops, &protocol.EnergyDrop{
			ID:     d.ID,
			X:      d.X,
			Y:      d.Y,
			Energy: d.Energy,
		})
	}

	for _, h := range st.HealEffects {
		room.HealEffects = append(room.HealEffects, &protocol.HealEffect{
			ID:          h.ID,
			X:           h.X,
			Y:           h.Y,
			CreatedTime: h.Created,
			Lifetime:    h.Lifetime,
			Team:        h.Team,
		})
	}

	for _, b := range st.BulletEffects {
		room.BulletEffects = append(room.BulletEffects, &protocol.BulletEffect{
			ID:          b.ID,
			FromX:       b.FromX,
			FromY:       b.FromY,
			ToX:         b.ToX,
			ToY:         b.ToY,
			CreatedTime: b.Created,
			Lifetime:    b.Lifetime,
			Team:        b.Team,
		})
	}

	redCount := int64(0)
	blueCount := int64(0)
	for _, u := range st.Units {
		if u.IsDead {
			continue
		}
		switch u.Team {
		case TeamRed:
			redCount++
		case TeamBlue:
			blueCount++
		}
	}

	players := make([]*protocol.PlayerSummary, 0, len(st.PlayerOrder))
	for _, uid := range st.PlayerOrder {
		players = append(players, &protocol.PlayerSummary{
			ID:   strconv.FormatInt(uid, 10),
			Name: st.Players[uid],
			Team: st.Teams[uid],
		})
	}

	return &protocol.GameStatePayload{
		Tick:        st.Tick,
		GameTime:    st.GameTime,
		GameStarted: st.GameStarted,
		Winner:      st.Winner,
		Room:        room,
		Logs:        recentLogs(st),
		TeamStats: &protocol.TeamStatsMap{
			Red:  &protocol.TeamStats{Units: redCount},
			Blue: &protocol.TeamStats{Units: blueCount},
		},
		Players: players,
	}
}

// recentLogs takes the last three lines of each player's log in join order,
// then the last ten of those overall.
func recentLogs(st *RoomState) []string {
	var all []string
	for _, uid := range st.PlayerOrder {
		logs := st.PlayerLogs[uid]
		if len(logs) > 3 {
			logs = logs[len(logs)-3:]
		}
		all = append(all, logs...)
	}
	if len(all) > 10 {
		all = all[len(all)-10:]
	}
	return all
}

// stateMessageLocked builds a complete state frame for one recipient.
func (g *Game) stateMessageLocked(st *RoomState, userID int64, anonymous bool) *protocol.GameMessage {
	payload := g.basePayloadLocked(st)
	payload.Player = g.playerViewLocked(st, userID, anonymous)
	return &protocol.GameMessage{Type: protocol.GameMsgState, GameState: payload}
}

// playerViewLocked returns the recipient's own entry. Spectators and
// anonymous connections get an empty Player, which still marshals as a
// present submessage so clients can tell "spectator" from "missing".
func (g *Game) playerViewLocked(st *RoomState, userID int64, anonymous bool) *protocol.Player {
	if anonymous {
		return &protocol.Player{}
	}
	name, ok := st.Players[userID]
	if !ok {
		return &protocol.Player{}
	}
	selected := st.Selected[userID]
	if selected == "" {
		selected = UnitMiner
	}
	return &protocol.Player{
		ID:               strconv.FormatInt(userID, 10),
		Name:             name,
		Team:             st.Teams[userID],
		SelectedUnitType: selected,
		Energy:           st.Energies[userID],
	}
}
