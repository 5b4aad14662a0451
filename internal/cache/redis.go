package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trendmart/storefront/internal/domain/recommend"
)

// DefaultTTL bounds how long a cached recommendation list is served before
// the provider is consulted again.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "recommend:"

// Redis stores recommendation lists in a redis instance shared across
// replicas.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis-backed recommendation cache. A non-positive ttl
// falls back to DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, userID string) ([]recommend.Item, bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}

	var items []recommend.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt entry is treated as a miss so it gets overwritten.
		return nil, false, nil
	}
	return items, true, nil
}

func (r *Redis) Set(ctx context.Context, userID string, items []recommend.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "marshal items")
	}
	if err := r.client.Set(ctx, keyPrefix+userID, raw, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}
