package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps go-redis with key building and timing logs
type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// Cache key patterns
const (
	KeyVoterMarker     = "lunchvote:poll:%s:voter:%s" // set once a vote is durably recorded
	KeyPollVoterPrefix = "lunchvote:poll:%s:voter:*"
)

// TTL constants
const (
	TTLVoterMarker = 24 * time.Hour
)

// NewClient creates a new Redis client and verifies the connection
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Set stores a value with TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	c.observe("redis_set", key, start, err)
	return err
}

// Exists reports how many of the keys exist
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	start := time.Now()
	n, err := c.rdb.Exists(ctx, keys...).Result()
	c.observe("redis_exists", keys[0], start, err, zap.Int64("result", n))
	return n, err
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	c.observe("redis_ping", "", start, err)
	return err
}

// InvalidatePattern removes keys matching a glob pattern. It walks the
// keyspace with SCAN so large keyspaces do not block the server.
func (c *Client) InvalidatePattern(ctx context.Context, pattern string) (int, error) {
	start := time.Now()
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			c.observe("redis_invalidate", pattern, start, err)
			return removed, err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.observe("redis_invalidate", pattern, start, err)
				return removed, err
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.observe("redis_invalidate", pattern, start, nil, zap.Int("removed", removed))
	return removed, nil
}

func (c *Client) observe(op, key string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", time.Since(start)))
	if err != nil {
		c.log.Info(op, append(fields, zap.Error(err))...)
		return
	}
	c.log.Debug(op, fields...)
}

// prefixForLog returns a safe prefix of a key so voter tokens are not logged in full
func prefixForLog(key string) string {
	if len(key) <= 24 {
		return key
	}
	return key[:24] + "…"
}
