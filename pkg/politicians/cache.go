package politicians

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seihyo/seihyo-cli/pkg/logging"
)

// CachedRegistry is a read-through cache in front of a Registry. Scraped
// rosters repeat the same names many times within a batch, so caching the
// name lookup saves most registry round-trips. Cache failures degrade to a
// direct lookup; they never fail the batch.
type CachedRegistry struct {
	inner  Registry
	client *redis.Client
	ttl    time.Duration
	log    logging.Logger
}

// NewCachedRegistry wraps a Registry with a Redis cache.
func NewCachedRegistry(inner Registry, client *redis.Client, ttl time.Duration, log logging.Logger) *CachedRegistry {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = logging.Nop()
	}
	return &CachedRegistry{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// SearchByName returns the cached candidate list for name, falling back to
// the inner registry on a miss or any cache error.
func (c *CachedRegistry) SearchByName(ctx context.Context, name string) ([]Politician, error) {
	return c.lookup(ctx, fmt.Sprintf("seihyo:registry:exact:%s", name), func() ([]Politician, error) {
		return c.inner.SearchByName(ctx, name)
	})
}

// SearchByPartialName returns the cached partial-match list for (name, limit),
// falling back to the inner registry on a miss or any cache error.
func (c *CachedRegistry) SearchByPartialName(ctx context.Context, name string, limit int) ([]Politician, error) {
	return c.lookup(ctx, fmt.Sprintf("seihyo:registry:partial:%d:%s", limit, name), func() ([]Politician, error) {
		return c.inner.SearchByPartialName(ctx, name, limit)
	})
}

func (c *CachedRegistry) lookup(ctx context.Context, key string, fetch func() ([]Politician, error)) ([]Politician, error) {
	if c.client != nil {
		data, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var cached []Politician
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				return cached, nil
			}
			// Corrupt entry: fall through to a fresh fetch and overwrite.
		} else if err != redis.Nil {
			c.log.Warn("registry cache read failed", logging.F("key", key), logging.Err(err))
		}
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		data, jsonErr := json.Marshal(result)
		if jsonErr == nil {
			if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
				c.log.Warn("registry cache write failed", logging.F("key", key), logging.Err(setErr))
			}
		}
	}

	return result, nil
}
