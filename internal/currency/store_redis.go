package currency

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisRatesKey = "vendora:rates"

// RedisStore shares one snapshot across relay instances. The entry carries
// no Redis expiry; staleness is judged by the snapshot timestamp so the
// stale-fallback path still has data to serve.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := r.client.Get(ctx, redisRatesKey).Bytes()
	if err == redis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("rates redis get: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("rates redis unmarshal: %w", err)
	}
	return snap, true, nil
}

func (r *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("rates redis marshal: %w", err)
	}
	if err := r.client.Set(ctx, redisRatesKey, data, 0).Err(); err != nil {
		return fmt.Errorf("rates redis set: %w", err)
	}
	return nil
}
