package rooms

import (
	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/protocol"
)

// ChatRoom is the plain relay room: user text, music sync and the shared
// occupancy announcements, nothing else.
type ChatRoom struct {
	baseRoom
}

func newChatRoom(id int64, log *logrus.Entry) *ChatRoom {
	return &ChatRoom{baseRoom: newBaseRoom(TypeChat, id, log)}
}

func (r *ChatRoom) Join(c *Conn) {
	n := r.register(c)
	r.publishEvent(c, "join", n)
	r.announceJoin(c)
}

func (r *ChatRoom) HandleFrame(c *Conn, env *protocol.Envelope) {
	if env.Chat == nil {
		return
	}
	r.handleChat(c, env.Chat)
}

func (r *ChatRoom) Leave(c *Conn) {
	n := r.unregister(c)
	r.publishEvent(c, "leave", n)
	r.announceLeave(c)
}
