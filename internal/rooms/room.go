package rooms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/cache"
	"github.com/momentchat/moment/internal/protocol"
)

// Room is one live room instance. The websocket handler calls Join once per
// connection, HandleFrame for every decoded inbound envelope, and Leave
// exactly once when the connection ends. Implementations are safe for
// concurrent use.
type Room interface {
	Join(c *Conn)
	HandleFrame(c *Conn, env *protocol.Envelope)
	Leave(c *Conn)
}

const (
	occupancyInterval = 10 * time.Second
	musicLeadMillis   = 500

	systemUser = "System"
)

// baseRoom carries the membership set, fan-out and chat relay shared by
// every room type.
type baseRoom struct {
	roomType string
	id       int64
	log      *logrus.Entry

	mu          sync.Mutex
	conns       map[*Conn]bool
	countCancel context.CancelFunc
}

func newBaseRoom(roomType string, id int64, log *logrus.Entry) baseRoom {
	return baseRoom{
		roomType: roomType,
		id:       id,
		log:      log,
		conns:    make(map[*Conn]bool),
	}
}

// register adds the connection, starting the occupancy announcer with the
// first member. Returns the member count after the add.
func (r *baseRoom) register(c *Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = true
	if r.countCancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		r.countCancel = cancel
		go r.occupancyLoop(ctx)
	}
	return len(r.conns)
}

// unregister removes the connection, stopping the occupancy announcer with
// the last member. Returns the member count after the removal.
func (r *baseRoom) unregister(c *Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
	n := len(r.conns)
	if n == 0 && r.countCancel != nil {
		r.countCancel()
		r.countCancel = nil
	}
	return n
}

func (r *baseRoom) occupancy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// snapshot returns the current members for lock-free fan-out.
func (r *baseRoom) snapshot() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	targets := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		targets = append(targets, c)
	}
	return targets
}

// broadcast fans an encoded frame out to every member. Members whose queue
// is full are evicted asynchronously; broadcast may run under a game engine
// lock and Evict touches the socket.
func (r *baseRoom) broadcast(frame []byte) {
	for _, c := range r.snapshot() {
		if !c.Send(frame) {
			go c.Evict("send queue overflow")
		}
	}
}

// sendTo delivers a frame to a single member.
func (r *baseRoom) sendTo(c *Conn, frame []byte) {
	if !c.Send(frame) {
		go c.Evict("send queue overflow")
	}
}

// systemText broadcasts a SYSTEM chat line under the given sender name.
func (r *baseRoom) systemText(user, content string) {
	r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
		User:      user,
		RoomID:    r.id,
		Content:   content,
		Timestamp: nowMillis(),
		Type:      protocol.MsgSystem,
	}))
}

// sendSystemTo delivers a targeted SYSTEM chat line to one member only.
// Drawing and gobang validation errors travel on this channel.
func (r *baseRoom) sendSystemTo(c *Conn, content string) {
	r.sendTo(c, protocol.ChatFrame(&protocol.ChatMessage{
		User:      systemUser,
		RoomID:    r.id,
		Content:   content,
		Timestamp: nowMillis(),
		Type:      protocol.MsgSystem,
	}))
}

func (r *baseRoom) announceJoin(c *Conn) {
	r.systemText(c.Username, fmt.Sprintf("%s joined room %d", c.Username, r.id))
}

func (r *baseRoom) announceLeave(c *Conn) {
	r.systemText(c.Username, fmt.Sprintf("%s left room %d", c.Username, r.id))
}

// occupancyLoop announces the member count every ten seconds while the room
// has members.
func (r *baseRoom) occupancyLoop(ctx context.Context) {
	ticker := time.NewTicker(occupancyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := r.occupancy()
			if n == 0 {
				continue
			}
			r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
				User:      systemUser,
				RoomID:    r.id,
				Content:   fmt.Sprintf("当前房间人数: %d", n),
				Timestamp: nowMillis(),
				Type:      protocol.MsgRoomCount,
			}))
		}
	}
}

// handleChat relays user text and music frames to the whole room with a
// server-assigned sender and timestamp. Music frames are stamped half a
// second ahead so every client starts playback at the same wall time.
// Other chat types are ignored here; room managers intercept their own
// types before delegating.
func (r *baseRoom) handleChat(c *Conn, msg *protocol.ChatMessage) {
	switch msg.Type {
	case protocol.MsgUserText:
		if msg.Content == "" {
			r.sendSystemTo(c, "消息内容不能为空")
			return
		}
		r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
			User:      c.Username,
			RoomID:    r.id,
			Content:   msg.Content,
			Timestamp: nowMillis(),
			Type:      protocol.MsgUserText,
		}))
	case protocol.MsgMusic:
		r.broadcast(protocol.ChatFrame(&protocol.ChatMessage{
			User:      c.Username,
			RoomID:    r.id,
			Content:   msg.Content,
			Timestamp: nowMillis() + musicLeadMillis,
			Type:      protocol.MsgMusic,
		}))
	}
}

// publishEvent records a presence change on the Redis room-events feed
// without blocking the join/leave path.
func (r *baseRoom) publishEvent(c *Conn, event string, occupancy int) {
	record := cache.RoomEventRecord{
		RoomType:  r.roomType,
		RoomID:    r.id,
		UserID:    c.UserID,
		Username:  c.Username,
		Event:     event,
		Occupancy: occupancy,
		Timestamp: nowMillis(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoomEvent(ctx, record); err != nil {
			r.log.WithError(err).Warn("failed to publish room event")
		}
	}()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
