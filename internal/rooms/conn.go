// Package rooms implements the realtime room layer: the per-room connection
// registry and broadcast pipeline, plus the four room managers (chat,
// drawing, gobang, live_war) that interpret inbound envelopes.
package rooms

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// sendQueueDepth bounds the per-connection outbound queue. A client that
	// falls this far behind is evicted rather than allowed to stall the room.
	sendQueueDepth = 64

	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
	pingTimeout  = 15 * time.Second
)

// Conn is one websocket client attached to a room. Anonymous connections
// carry UserID 0 and the placeholder username.
type Conn struct {
	UserID    int64
	Username  string
	Anonymous bool

	WS      *websocket.Conn
	OutChan chan []byte
	Cancel  context.CancelFunc

	log *logrus.Entry
}

// NewConn wraps an accepted websocket for room use. cancel must stop the
// connection's read loop and write pump.
func NewConn(userID int64, username string, anonymous bool, ws *websocket.Conn, cancel context.CancelFunc, log *logrus.Entry) *Conn {
	return &Conn{
		UserID:    userID,
		Username:  username,
		Anonymous: anonymous,
		WS:        ws,
		OutChan:   make(chan []byte, sendQueueDepth),
		Cancel:    cancel,
		log:       log,
	}
}

// Send queues a frame for the write pump without blocking. It returns false
// when the queue is full and the frame was dropped.
func (c *Conn) Send(frame []byte) bool {
	select {
	case c.OutChan <- frame:
		return true
	default:
		c.log.Warn("outbound queue full, dropping frame")
		return false
	}
}

// Evict force-closes the connection. The read loop observes the closed
// socket and runs the normal leave path.
func (c *Conn) Evict(reason string) {
	if c.Cancel != nil {
		c.Cancel()
	}
	if c.WS != nil {
		_ = c.WS.Close(websocket.StatusPolicyViolation, reason)
	}
}

// WritePump drains OutChan onto the socket and pings periodically to keep
// intermediaries from timing the connection out. It returns when ctx is
// cancelled or a write fails; the read side notices via the dead socket.
func (c *Conn) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-c.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.WS.Write(writeCtx, websocket.MessageBinary, frame)
			cancel()
			if err != nil {
				c.log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.WS.Ping(pingCtx)
			cancel()
			if err != nil {
				c.log.WithError(err).Debug("ping failed, assuming disconnect")
				return
			}
		}
	}
}
