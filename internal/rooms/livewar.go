package rooms

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/livewar"
	"github.com/momentchat/moment/internal/protocol"
)

// teardownGrace keeps a running simulation alive after the last connection
// drops, so a brief disconnect or page refresh does not wipe an active game.
const teardownGrace = 60 * time.Second

// LiveWarRoom bridges the websocket room to the realtime game engine. Chat
// and music relay as usual; game envelopes drive the engine, whose
// broadcasts come back through the room's fan-out.
type LiveWarRoom struct {
	baseRoom
	game *livewar.Game

	graceMu    sync.Mutex
	graceTimer *time.Timer
}

func newLiveWarRoom(id int64, log *logrus.Entry) *LiveWarRoom {
	r := &LiveWarRoom{baseRoom: newBaseRoom(TypeLiveWar, id, log)}

	g := livewar.NewGame(id, log)
	g.Broadcast = func(msg *protocol.GameMessage) {
		r.broadcast(protocol.GameFrame(msg))
	}
	g.BroadcastEach = func(build func(userID int64, anonymous bool) *protocol.GameMessage) {
		for _, c := range r.snapshot() {
			msg := build(c.UserID, c.Anonymous)
			if msg == nil {
				continue
			}
			r.sendTo(c, protocol.GameFrame(msg))
		}
	}
	r.game = g
	return r
}

func (r *LiveWarRoom) Join(c *Conn) {
	r.stopGrace()
	n := r.register(c)
	r.publishEvent(c, "join", n)
	r.announceJoin(c)

	if state := r.game.StateFor(c.UserID, c.Anonymous); state != nil {
		r.sendTo(c, protocol.GameFrame(state))
	}
}

func (r *LiveWarRoom) HandleFrame(c *Conn, env *protocol.Envelope) {
	if env.Game != nil {
		r.handleGame(c, env.Game)
		return
	}
	if env.Chat != nil {
		r.handleChat(c, env.Chat)
	}
}

// handleGame drives the engine. Rule violations come back as errors and are
// forwarded to the originating socket only, never broadcast.
func (r *LiveWarRoom) handleGame(c *Conn, msg *protocol.GameMessage) {
	var err error
	switch msg.Type {
	case protocol.GameMsgJoin:
		team := ""
		if msg.JoinGame != nil {
			team = msg.JoinGame.Team
		}
		err = r.game.HandleJoin(c.UserID, c.Username, c.Anonymous, team)
	case protocol.GameMsgLeave:
		err = r.game.HandleLeave(c.UserID, c.Username, c.Anonymous)
	case protocol.GameMsgSelectUnit:
		unitType := ""
		if msg.SelectUnit != nil {
			unitType = msg.SelectUnit.UnitType
		}
		err = r.game.HandleSelectUnit(c.UserID, c.Anonymous, unitType)
	case protocol.GameMsgSpawnUnit:
		err = r.game.HandleSpawnUnit(c.UserID, c.Anonymous)
	default:
		return
	}
	if err != nil {
		r.sendTo(c, protocol.GameFrame(&protocol.GameMessage{
			Type:  protocol.GameMsgError,
			Error: &protocol.ErrorPayload{Message: err.Error()},
		}))
	}
}

func (r *LiveWarRoom) Leave(c *Conn) {
	n := r.unregister(c)
	r.publishEvent(c, "leave", n)
	r.announceLeave(c)
	if n == 0 {
		r.startGrace()
	}
}

// startGrace schedules simulation teardown for when the room stays empty.
// Any rejoin within the window cancels it.
func (r *LiveWarRoom) startGrace() {
	r.graceMu.Lock()
	defer r.graceMu.Unlock()
	if r.graceTimer != nil {
		r.graceTimer.Stop()
	}
	r.graceTimer = time.AfterFunc(teardownGrace, func() {
		if r.occupancy() > 0 {
			return
		}
		r.log.Info("room stayed empty, tearing down game state")
		r.game.Teardown()
	})
}

func (r *LiveWarRoom) stopGrace() {
	r.graceMu.Lock()
	defer r.graceMu.Unlock()
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
	}
}
