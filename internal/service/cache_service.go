package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lunchvote/pkg/redis"
)

// CacheService keeps voter markers in Redis so repeat submissions can be
// rejected without a database round trip. Markers are written only after a
// vote commits, so a hit is always authoritative; a miss proves nothing.
// A nil Redis client turns every call into a miss.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Enabled reports whether a Redis client is configured
func (c *CacheService) Enabled() bool {
	return c != nil && c.redis != nil
}

// HasVoted reports whether a marker exists for (pollID, voterToken). Redis
// errors are logged and reported as a miss.
func (c *CacheService) HasVoted(ctx context.Context, pollID, voterToken string) bool {
	if !c.Enabled() {
		return false
	}

	n, err := c.redis.Exists(ctx, c.redis.KeyBuilder.KeyVoterMarker(pollID, voterToken))
	if err != nil {
		c.logger.Warn("Voter marker lookup failed, falling back to database",
			zap.String("poll_id", pollID),
			zap.Error(err))
		return false
	}
	if n > 0 {
		c.logger.Debug("Voter marker hit", zap.String("poll_id", pollID))
		return true
	}
	return false
}

// MarkVotedAsync records a voter marker in the background
func (c *CacheService) MarkVotedAsync(pollID, voterToken string) {
	if !c.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.MarkVoted(ctx, pollID, voterToken); err != nil {
			c.logger.Warn("Failed to cache voter marker",
				zap.String("poll_id", pollID),
				zap.Error(err))
		}
	}()
}

// MarkVoted records a voter marker
func (c *CacheService) MarkVoted(ctx context.Context, pollID, voterToken string) error {
	if !c.Enabled() {
		return nil
	}
	return c.redis.Set(ctx, c.redis.KeyBuilder.KeyVoterMarker(pollID, voterToken), "1", redis.TTLVoterMarker)
}

// InvalidatePoll removes every voter marker of a poll
func (c *CacheService) InvalidatePoll(ctx context.Context, pollID string) error {
	if !c.Enabled() {
		return nil
	}

	removed, err := c.redis.InvalidatePattern(ctx, c.redis.KeyBuilder.KeyPollVoterPattern(pollID))
	if err != nil {
		c.logger.Error("Failed to invalidate voter markers",
			zap.String("poll_id", pollID),
			zap.Error(err))
		return err
	}
	c.logger.Info("Voter markers invalidated",
		zap.String("poll_id", pollID),
		zap.Int("removed", removed))
	return nil
}

// HealthCheck checks Redis. A disabled cache is healthy.
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.redis.Health(ctx)
}
