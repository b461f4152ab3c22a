package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Journal records delivered notification keys in Redis so that event
// redelivery does not re-send the same message. Dedupe is best-effort:
// delivery stays at-least-once, and a journal failure never blocks a send.
type Journal struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewJournal creates a journal; a nil client disables dedupe.
func NewJournal(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Journal {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Journal{client: client, ttl: ttl, logger: logger}
}

// MarkIfNew returns true when key has not been delivered before and records
// it. When the journal is unavailable it reports true: duplicate delivery is
// preferable to silence.
func (j *Journal) MarkIfNew(ctx context.Context, key string) bool {
	if j == nil || j.client == nil {
		return true
	}
	fresh, err := j.client.SetNX(ctx, "notify:"+key, "1", j.ttl).Result()
	if err != nil {
		j.logger.Warn("notification journal unavailable", zap.String("key", key), zap.Error(err))
		return true
	}
	return fresh
}
