package rooms

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Room type names as they appear in the websocket path.
const (
	TypeChat    = "chat"
	TypeDrawing = "drawing"
	TypeGobang  = "gobang"
	TypeLiveWar = "live_war"
)

// Key identifies one logical room.
type Key struct {
	Type string
	ID   int64
}

// Hub owns every live room, keyed by type and id. Rooms are created on first
// use and retained for the process lifetime: gobang matches and the live_war
// teardown grace both outlive an empty connection set.
type Hub struct {
	log *logrus.Logger

	mu    sync.Mutex
	rooms map[Key]Room
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[Key]Room),
	}
}

// Get returns the room for (roomType, id), creating it on first use.
// Unknown room types return nil.
func (h *Hub) Get(roomType string, id int64) Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := Key{Type: roomType, ID: id}
	if room, ok := h.rooms[key]; ok {
		return room
	}

	entry := h.log.WithFields(logrus.Fields{
		"room_type": roomType,
		"room_id":   id,
	})

	var room Room
	switch roomType {
	case TypeChat:
		room = newChatRoom(id, entry)
	case TypeDrawing:
		room = newDrawingRoom(id, entry)
	case TypeGobang:
		room = newGobangRoom(id, entry)
	case TypeLiveWar:
		room = newLiveWarRoom(id, entry)
	default:
		return nil
	}
	h.rooms[key] = room
	return room
}
