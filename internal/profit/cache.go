package profit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryCacheKey = "balcao:profit:month_summary"

// SummaryCache mirrors the latest monthly-profit summary in Redis so the
// dashboard survives process restarts without waiting for the first refresh.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache builds a cache on the given Redis client. A zero ttl keeps
// entries until the next refresh overwrites them.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Store writes the summary, replacing any previous value.
func (c *SummaryCache) Store(ctx context.Context, s Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("profit/cache: marshal: %w", err)
	}
	if err := c.client.Set(ctx, summaryCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("profit/cache: set: %w", err)
	}
	return nil
}

// Load reads the cached summary. The second return value is false when no
// summary has been stored yet.
func (c *SummaryCache) Load(ctx context.Context) (Summary, bool, error) {
	data, err := c.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Summary{}, false, nil
		}
		return Summary{}, false, fmt.Errorf("profit/cache: get: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, false, fmt.Errorf("profit/cache: unmarshal: %w", err)
	}
	return s, true, nil
}
