package pricing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"domreg/pkg/domain"
)

const premiumKeyPrefix = "pricing:premium:"

// CachedChecker wraps a Checker with a Redis read-through cache. Premium
// lists change rarely and every token policy evaluation on a discounting
// token consults them, so a short TTL cache keeps the hot path off the
// database.
//
// Cache failures degrade to the underlying checker; premium answers must
// not depend on Redis availability.
type CachedChecker struct {
	next   Checker
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedChecker constructs a caching premium checker.
func NewCachedChecker(next Checker, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedChecker {
	return &CachedChecker{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedChecker) IsPremium(ctx context.Context, name domain.DomainName, now time.Time) (bool, error) {
	key := premiumKeyPrefix + name.String()

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return val == "1", nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "premium cache read failed", "name", name, "error", err)
	}

	premium, err := c.next.IsPremium(ctx, name, now)
	if err != nil {
		return false, err
	}

	cached := "0"
	if premium {
		cached = "1"
	}
	if err := c.client.Set(ctx, key, cached, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "premium cache write failed", "name", name, "error", err)
	}
	return premium, nil
}
