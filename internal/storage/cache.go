package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EasterCompany/dex-runway-service/types"
	"github.com/redis/go-redis/v9"
)

const (
	CampaignKeyPrefix = "campaign:"
	DefaultCacheTTL   = 24 * time.Hour
)

// ErrCacheMiss is returned by RedisCache.Get when the campaign is not cached.
var ErrCacheMiss = errors.New("campaign not cached")

// RedisCache mirrors campaign records into Redis for fast reads.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Set stores the campaign under its id for the cache TTL.
func (c *RedisCache) Set(ctx context.Context, campaign *types.Campaign) error {
	data, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}
	return c.client.Set(ctx, CampaignKeyPrefix+campaign.ID, data, c.ttl).Err()
}

// Get returns the cached campaign, or ErrCacheMiss when the key is absent or holds
// an unreadable record.
func (c *RedisCache) Get(ctx context.Context, id string) (*types.Campaign, error) {
	data, err := c.client.Get(ctx, CampaignKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var campaign types.Campaign
	if err := json.Unmarshal(data, &campaign); err != nil {
		return nil, fmt.Errorf("%w: corrupt cached campaign %s: %v", ErrCacheMiss, id, err)
	}
	return &campaign, nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
