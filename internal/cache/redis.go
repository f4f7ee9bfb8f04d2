// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup;
// when it stays nil the room-event feed is silently disabled.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for room presence events.
var DefaultQueueName = "moment_room_events"

// RoomEventRecord is one presence change, consumed by whatever analytics
// process drains the queue. UserID is 0 for anonymous connections.
type RoomEventRecord struct {
	RoomType  string `json:"room_type"`
	RoomID    int64  `json:"room_id"`
	UserID    int64  `json:"user_id,omitempty"`
	Username  string `json:"username"`
	Event     string `json:"event"`
	Occupancy int    `json:"occupancy"`
	Timestamp int64  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishRoomEvent serializes the given record to JSON, then pushes it to
// the Redis queue. A nil client makes this a no-op so room code never has
// to care whether the feed is enabled.
func PublishRoomEvent(ctx context.Context, record RoomEventRecord) error {
	if Rdb == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomEventRecord: %w", err)
	}

	queueName := getEnv("ROOM_EVENTS_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
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
