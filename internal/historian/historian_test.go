// internal/historian/historian_test.go
package historian

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Nyaru01/skyjo/internal/cache"
)

// TestQueueRoundTrip pushes one action record through the queue and pops it
// back. Requires a local Redis; skipped otherwise. The full write path needs
// postgres and runs in the integration environment.
func TestQueueRoundTrip(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	cache.Rdb = rdb

	rec := cache.GameActionRecord{
		GameID:      uuid.New(),
		ActionIndex: 1,
		ActorUserID: uuid.New(),
		ActionType:  "player_draw",
		ActionPayload: map[string]interface{}{
			"cardId": uuid.New().String(),
		},
		Timestamp: time.Now().UnixMilli(),
	}
	require.NoError(t, cache.PublishGameAction(ctx, rec))

	got, err := cache.PopGameAction(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, rec.GameID, got.GameID)
	require.Equal(t, rec.ActionType, got.ActionType)
}

func TestServiceDefaults(t *testing.T) {
	s := NewService(Config{}, nil)
	require.Equal(t, 20, s.batchSize)
	require.Equal(t, 500*time.Millisecond, s.flushDelay)
	require.Equal(t, 10*time.Minute, s.inactivity)
}
