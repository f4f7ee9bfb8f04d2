// internal/livewar/game.go

// Package livewar runs the real-time-strategy simulation behind live_war
// rooms: a fixed 100ms tick advances unit AI, combat, the mine economy and
// the win condition, and every tick fans out a per-recipient state frame.
package livewar

import (
	"context"
	"encoding/hex"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/protocol"
)

// Game is the simulation for a single room. All exported methods serialize on
// Mu; the broadcast callbacks are invoked with Mu held, so they must not call
// back into the game.
type Game struct {
	RoomID int64
	Width  int
	Height int

	Mu    sync.Mutex
	state *RoomState

	// Broadcast sends one message to every connection in the room.
	Broadcast func(msg *protocol.GameMessage)

	// BroadcastEach fans out a recipient-specific message; build runs once per
	// connection.
	BroadcastEach func(build func(userID int64, anonymous bool) *protocol.GameMessage)

	loopRunning bool
	loopCancel  context.CancelFunc

	log *logrus.Entry
	rng *rand.Rand
	now func() float64
}

// NewGame builds an idle simulation for roomID. Map dimensions come from
// MAP_WIDTH/MAP_HEIGHT when set. The tick loop starts once both teams have at
// least one player.
func NewGame(roomID int64, log *logrus.Entry) *Game {
	return &Game{
		RoomID: roomID,
		Width:  getEnvInt("MAP_WIDTH", defaultMapWidth),
		Height: getEnvInt("MAP_HEIGHT", defaultMapHeight),
		log:    log,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    wallClock,
	}
}

// getEnvInt parses an environment variable as an integer, else returns def.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func wallClock() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// ensureStateLocked lazily creates the map, bases and player tables.
func (g *Game) ensureStateLocked() *RoomState {
	if g.state == nil {
		w, h := g.Width, g.Height
		if w <= 0 {
			w = defaultMapWidth
		}
		if h <= 0 {
			h = defaultMapHeight
		}
		g.state = newRoomState(w, h, g.now())
	}
	return g.state
}

// spawnUnitForPlayerLocked creates one unit beside the team base. Every miner
// spawned here becomes the owner's tracked starter miner and clears any
// pending respawn.
func (g *Game) spawnUnitForPlayerLocked(st *RoomState, userID int64, team, unitType string) {
	b := st.baseFor(team)
	if b == nil {
		return
	}
	stats, ok := unitTypes[unitType]
	if !ok {
		stats = unitTypes[UnitMiner]
	}

	offset := 2.0
	if team != TeamRed {
		offset = -2.0
	}
	x := b.X + offset
	y := b.Y + g.uniform(-2, 2)

	u := &Unit{
		ID:          uuid.NewString()[:8],
		Type:        unitType,
		Team:        team,
		OwnerID:     userID,
		X:           x,
		Y:           y,
		HP:          stats.HP,
		HPMax:       stats.HP,
		Attack:      stats.Attack,
		Speed:       stats.Speed,
		AttackRange: stats.AttackRange,
		TargetX:     x,
		TargetY:     y,
	}
	st.Units = append(st.Units, u)

	if unitType == UnitMiner {
		st.MainMinerID[userID] = u.ID
		delete(st.MinerDeathTime, userID)
	}
}

// startLoopLocked launches the tick goroutine unless one is already running.
func (g *Game) startLoopLocked() {
	if g.loopRunning {
		return
	}
	g.loopRunning = true
	ctx, cancel := context.WithCancel(context.Background())
	g.loopCancel = cancel
	go g.run(ctx)
}

// run drives ticks until teardown or until no players remain.
func (g *Game) run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Mu.Lock()
			if ctx.Err() != nil {
				g.Mu.Unlock()
				return
			}
			if g.state == nil || len(g.state.Players) == 0 {
				g.loopRunning = false
				g.loopCancel = nil
				g.Mu.Unlock()
				return
			}
			g.tickSafeLocked()
			g.Mu.Unlock()
		}
	}
}

// tickSafeLocked keeps a tick panic from killing the room.
func (g *Game) tickSafeLocked() {
	defer func() {
		if r := recover(); r != nil {
			g.log.WithField("panic", r).Error("game tick panicked")
		}
	}()
	g.tickLocked()
}

// Teardown stops the loop and discards all simulation state.
func (g *Game) Teardown() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.loopCancel != nil {
		g.loopCancel()
		g.loopCancel = nil
	}
	g.loopRunning = false
	g.state = nil
}

// StateFor builds the frame a newly connected client should receive, or nil
// when no simulation exists yet.
func (g *Game) StateFor(userID int64, anonymous bool) *protocol.GameMessage {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.state == nil {
		return nil
	}
	return g.stateMessageLocked(g.state, userID, anonymous)
}

func (g *Game) broadcastLocked(msg *protocol.GameMessage) {
	if g.Broadcast == nil {
		return
	}
	g.Broadcast(msg)
}

func (g *Game) broadcastStateLocked(st *RoomState) {
	if g.BroadcastEach == nil {
		return
	}
	base := g.basePayloadLocked(st)
	g.BroadcastEach(func(userID int64, anonymous bool) *protocol.GameMessage {
		view := *base
		view.Player = g.playerViewLocked(st, userID, anonymous)
		return &protocol.GameMessage{Type: protocol.GameMsgState, GameState: &view}
	})
}

func (g *Game) appendLogLocked(st *RoomState, userID int64, line string) {
	logs := append(st.PlayerLogs[userID], line)
	if len(logs) > 10 {
		logs = logs[len(logs)-10:]
	}
	st.PlayerLogs[userID] = logs
}

func (g *Game) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

func shortID(prefix string, n int) string {
	id := uuid.New()
	return prefix + hex.EncodeToString(id[:])[:n]
}
