package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldside/rdysl/internal/summary"
)

const snapshotKey = "rdysl:callup_summary"

// RedisCache mirrors the latest callup summary into Redis so cached-only
// readers in other processes can serve it without a browser. The in-process
// engine stays authoritative; this is a write-through copy.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// StoreSnapshot writes the snapshot under the summary key with the cache
// TTL, so the mirror ages out on the same schedule as the in-process cache.
func (rc *RedisCache) StoreSnapshot(ctx context.Context, snap *summary.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return rc.client.Set(ctx, snapshotKey, data, rc.ttl).Err()
}

// LoadSnapshot reads the mirrored snapshot. Returns nil with no error when
// the key is absent or expired.
func (rc *RedisCache) LoadSnapshot(ctx context.Context) (*summary.Snapshot, error) {
	data, err := rc.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap summary.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &snap, nil
}
