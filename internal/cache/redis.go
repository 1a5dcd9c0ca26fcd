// Package cache wraps the Redis connection used for the game action queue.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list holding game action records until the
// historian drains them.
var DefaultQueueName = "skyjo_actions"

// GameActionRecord is one engine transition as queued for the historian.
// ActionIndex is the per-game sequence number so replays preserve order.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorUserID   uuid.UUID              `json:"actor_user_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client from environment variables:
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
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// QueueName resolves the action queue list name.
func QueueName() string {
	return getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
}

// PublishGameAction serializes the record to JSON and pushes it onto the
// action queue. Cheap enough to call from the game loop via a goroutine.
func PublishGameAction(ctx context.Context, record GameActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}
	if err := Rdb.RPush(ctx, QueueName(), data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", QueueName(), err)
	}
	return nil
}

// PopGameAction blocks up to timeout waiting for the next queued record.
// Returns (nil, nil) when the wait times out with an empty queue.
func PopGameAction(ctx context.Context, timeout time.Duration) (*GameActionRecord, error) {
	res, err := Rdb.BLPop(ctx, timeout, QueueName()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to BLPop from Redis list '%s': %w", QueueName(), err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	var rec GameActionRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal GameActionRecord: %w", err)
	}
	return &rec, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as an integer, else a default.
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
