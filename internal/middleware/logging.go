// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware is an HTTP middleware that logs incoming requests using Logrus.
// Logs the method, path, and duration of each request. The query string is
// never logged: room sockets carry their auth token in it.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			duration := time.Since(start)
			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"duration": duration,
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogRoomConnect logs a websocket joining a room, after the upgrade and
// identity resolution succeeded.
func LogRoomConnect(logger *logrus.Logger, remoteAddr, roomType string, roomID int64, username string) {
	logger.WithFields(logrus.Fields{
		"remote":    remoteAddr,
		"room_type": roomType,
		"room_id":   roomID,
		"user":      username,
	}).Info("WebSocket connected")
}

// LogRoomDisconnect logs a websocket leaving a room.
func LogRoomDisconnect(logger *logrus.Logger, remoteAddr, roomType string, roomID int64, username string, err error) {
	fields := logrus.Fields{
		"remote":    remoteAddr,
		"room_type": roomType,
		"room_id":   roomID,
		"user":      username,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
