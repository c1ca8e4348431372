package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ReportCache keeps rendered report payloads in redis so repeated report
// requests do not re-run the aggregation queries. Values are JSON because
// report rows are heterogeneous slices.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache connects to redis and verifies the connection.
func NewReportCache(addr, password string, ttl time.Duration) (*ReportCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ReportCache{client: rdb, ttl: ttl}, nil
}

// Get unmarshals the cached payload for key into dest.
func (c *ReportCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c == nil || c.client == nil {
		// No-op when the cache is disabled
		return ErrCacheMiss
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set stores value under key with the configured TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

// Invalidate drops every cached report. Called after the bulk admin
// actions that change what reports would show.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, "report:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *ReportCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *ReportCache) key(key string) string {
	return "report:" + key
}
