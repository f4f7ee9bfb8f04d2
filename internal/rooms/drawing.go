package rooms

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/protocol"
)

// leaseDuration is how long one user may hold the drawing lease before the
// room auto-releases it.
const leaseDuration = 10 * time.Minute

// DrawingRoom extends the chat relay with a single-drawer lease. One user at
// a time holds the canvas; others queue requests the drawer may approve. The
// latest canvas snapshot is replayed to late joiners.
type DrawingRoom struct {
	baseRoom

	stateMu     sync.Mutex
	drawer      string
	drawerSince time.Time
	canvas      string
	requests    map[string]bool
	leaseTimer  *time.Timer
	leaseGen    int
}

func newDrawingRoom(id int64, log *logrus.Entry) *DrawingRoom {
	return &DrawingRoom{
		baseRoom: newBaseRoom(TypeDrawing, id, log),
		requests: make(map[string]bool),
	}
}

func (r *DrawingRoom) Join(c *Conn) {
	n := r.register(c)
	r.publishEvent(c, "join", n)
	r.announceJoin(c)

	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.drawer == "" {
		return
	}
	r.sendTo(c, drawerStateFrame(r.id, r.drawer))
	if r.canvas != "" {
		r.sendTo(c, protocol.ChatFrame(&protocol.ChatMessage{
			User:      r.drawer,
			RoomID:    r.id,
			Content:   r.canvas,
			Timestamp: nowMillis(),
			Type:      protocol.MsgDrawing,
		}))
	}
}

func (r *DrawingRoom) HandleFrame(c *Conn, env *protocol.Envelope) {
	if env.Chat == nil {
		return
	}
	msg := env.Chat
	switch msg.Type {
	case protocol.MsgDrawingRequest:
		r.handleRequest(c)
	case protocol.MsgDrawingApprove:
		r.handleApprove(c, msg.Content)
	case protocol.MsgDrawing:
		r.handleDraw(c, msg.Content)
	case protocol.MsgDrawingClear:
		r.handleClear(c)
	case protocol.MsgDrawingStop:
		r.handleStop(c)
	default:
		r.handleChat(c, msg)
	}
}

func (r *DrawingRoom) Leave(c *Conn) {
	n := r.unregister(c)
	r.publishEvent(c, "leave", n)
	r.announceLeave(c)

	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	delete(r.requests, c.Username)
	if r.drawer == c.Username {
		r.releaseLocked()
		r.broadcast(drawerStateFrame(r.id, ""))
	}
	if n == 0 {
		r.releaseLocked()
		r.requests = make(map[string]bool)
	}
}

// handleRequest grants the lease immediately when free, otherwise queues the
// requester and echoes the request so the drawer sees it.
func (r *DrawingRoom) handleRequest(c *Conn) {
	if c.Anonymous {
		r.sendSystemTo(c, "未登录用户不能申请画板，只能观战。")
		return
	}

	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	switch {
	case r.drawer == "":
		r.grantLocked(c.Username)
	case r.drawer == c.Username:
		// already holds the lease
	default:
		r.requests[c.Username] = true
		r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
			User:      c.Username,
			RoomID:    r.id,
			Content:   c.Username,
			Timestamp: nowMillis(),
			Type:      protocol.MsgDrawingRequest,
		}))
	}
}

// handleApprove hands the lease to a queued requester. Only the current
// drawer may approve, and only for users still connected and still queued;
// anything else is a silent no-op. The canvas is retained across the
// handover.
func (r *DrawingRoom) handleApprove(c *Conn, approved string) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.drawer != c.Username {
		return
	}
	if !r.requests[approved] || !r.isConnected(approved) {
		return
	}
	delete(r.requests, approved)
	r.grantLocked(approved)
}

func (r *DrawingRoom) handleDraw(c *Conn, content string) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.drawer != c.Username {
		return
	}
	r.canvas = content
	r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
		User:      c.Username,
		RoomID:    r.id,
		Content:   content,
		Timestamp: nowMillis(),
		Type:      protocol.MsgDrawing,
	}))
}

func (r *DrawingRoom) handleClear(c *Conn) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.drawer != c.Username {
		return
	}
	r.canvas = ""
	r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
		User:      c.Username,
		RoomID:    r.id,
		Content:   "",
		Timestamp: nowMillis(),
		Type:      protocol.MsgDrawingClear,
	}))
}

func (r *DrawingRoom) handleStop(c *Conn) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.drawer != c.Username {
		return
	}
	r.releaseLocked()
	r.broadcast(drawerStateFrame(r.id, ""))
}

// grantLocked makes username the drawer and restarts the auto-release
// timer. The generation counter invalidates any timer already in flight.
func (r *DrawingRoom) grantLocked(username string) {
	if r.leaseTimer != nil {
		r.leaseTimer.Stop()
	}
	r.drawer = username
	r.drawerSince = time.Now()
	r.leaseGen++
	gen := r.leaseGen
	r.leaseTimer = time.AfterFunc(leaseDuration, func() {
		r.expireLease(gen)
	})
	r.broadcast(drawerStateFrame(r.id, username))
}

// releaseLocked clears the drawer, the canvas and any pending auto-release.
func (r *DrawingRoom) releaseLocked() {
	r.leaseGen++
	if r.leaseTimer != nil {
		r.leaseTimer.Stop()
		r.leaseTimer = nil
	}
	r.drawer = ""
	r.drawerSince = time.Time{}
	r.canvas = ""
}

// expireLease is the auto-release path. A stale generation means the lease
// changed hands or was released while the timer was in flight.
func (r *DrawingRoom) expireLease(gen int) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if gen != r.leaseGen {
		return
	}
	r.log.WithFields(logrus.Fields{
		"drawer": r.drawer,
		"held":   time.Since(r.drawerSince),
	}).Info("drawing lease expired")
	r.releaseLocked()
	r.broadcast(drawerStateFrame(r.id, ""))
}

// isConnected reports whether a user with the given name is in the room.
func (r *DrawingRoom) isConnected(username string) bool {
	for _, c := range r.snapshot() {
		if c.Username == username {
			return true
		}
	}
	return false
}

// drawerStateFrame encodes the DRAWING_STATE announcement; empty content
// means nobody holds the lease.
func drawerStateFrame(roomID int64, drawer string) []byte {
	return protocol.ChatFrame(&protocol.ChatMessage{
		User:      systemUser,
		RoomID:    roomID,
		Content:   drawer,
		Timestamp: nowMillis(),
		Type:      protocol.MsgDrawingState,
	})
}
