package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Gateways retry webhooks for up to a day, so seen markers must outlive the
// retry schedule.
const dedupeTTL = 48 * time.Hour

// DedupeStore implements ports.DedupeStore using Redis SET NX. It remembers
// webhook signatures so retried deliveries short-circuit before touching the
// database.
type DedupeStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewDedupeStore creates a new Redis-backed webhook dedupe store.
func NewDedupeStore(client *goredis.Client) *DedupeStore {
	return &DedupeStore{
		client: client,
		prefix: "webhook:",
		ttl:    dedupeTTL,
	}
}

// CheckAndSet atomically marks a notification as seen. Returns true when the
// key was newly set, false when the notification was already processed.
func (s *DedupeStore) CheckAndSet(ctx context.Context, key string) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  s.ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, notification was already seen
			return false, nil
		}
		return false, fmt.Errorf("redis dedupe check: %w", err)
	}
	return result == "OK", nil
}
