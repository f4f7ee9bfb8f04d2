// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/auth"
	"github.com/momentchat/moment/internal/database"
	"github.com/momentchat/moment/internal/middleware"
	"github.com/momentchat/moment/internal/protocol"
	"github.com/momentchat/moment/internal/rooms"
)

// anonymousName is the display name for connections without a valid token.
const anonymousName = "Anonymous"

// RoomWSHandler upgrades the HTTP connection to a websocket for one room.
// The path is /room/ws/{room_type}/{room_id}. An optional token query
// parameter identifies the user; anything invalid degrades silently to an
// anonymous connection. Unknown room types close with 1008.
func RoomWSHandler(logger *logrus.Logger, hub *rooms.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/room/ws/"), "/")
		if len(pathParts) < 2 || pathParts[0] == "" || pathParts[1] == "" {
			http.Error(w, "Missing room_type or room_id in path (/room/ws/{room_type}/{room_id})", http.StatusBadRequest)
			return
		}
		roomType := pathParts[0]
		roomID, err := strconv.ParseInt(pathParts[1], 10, 64)
		if err != nil {
			http.Error(w, "Invalid room_id format", http.StatusBadRequest)
			return
		}

		userID, username, anonymous := resolveUser(r.Context(), logger, r.URL.Query().Get("token"))

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"room"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error for %s/%d: %v", roomType, roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		room := hub.Get(roomType, roomID)
		if room == nil {
			c.Close(websocket.StatusPolicyViolation, "Invalid room type")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		connLog := logger.WithFields(logrus.Fields{
			"room_type": roomType,
			"room_id":   roomID,
			"user":      username,
		})
		conn := rooms.NewConn(userID, username, anonymous, c, cancel, connLog)

		middleware.LogRoomConnect(logger, r.RemoteAddr, roomType, roomID, username)

		room.Join(conn)
		go conn.WritePump(ctx)

		readErr := readFrames(ctx, c, room, conn, connLog)

		room.Leave(conn)
		middleware.LogRoomDisconnect(logger, r.RemoteAddr, roomType, roomID, username, readErr)
	}
}

// readFrames pumps inbound frames into the room until the socket closes.
// Undecodable frames are dropped; a normal closure returns nil.
func readFrames(ctx context.Context, c *websocket.Conn, room rooms.Room, conn *rooms.Conn, log *logrus.Entry) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, data, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		env, err := protocol.Unmarshal(data)
		if err != nil {
			log.WithError(err).Debug("dropping undecodable frame")
			continue
		}
		room.HandleFrame(conn, env)
	}
}

// resolveUser turns an optional token into a user identity. A missing token,
// a bad or expired signature, a missing database or an unknown user id all
// fall back to anonymous rather than rejecting the connection.
func resolveUser(ctx context.Context, logger *logrus.Logger, token string) (userID int64, username string, anonymous bool) {
	if token == "" {
		return 0, anonymousName, true
	}
	id, err := auth.AuthenticateJWT(token)
	if err != nil {
		logger.WithError(err).Debug("rejected ws token, continuing as anonymous")
		return 0, anonymousName, true
	}
	if database.DB == nil {
		return 0, anonymousName, true
	}
	user, err := database.GetUserByID(ctx, id)
	if err != nil {
		logger.WithError(err).Debug("user lookup failed, continuing as anonymous")
		return 0, anonymousName, true
	}
	return user.ID, user.Username, false
}
