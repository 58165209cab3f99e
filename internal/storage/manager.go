// Package storage persists campaigns. Files on disk are authoritative; an optional
// Redis cache mirrors them for reads.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/EasterCompany/dex-runway-service/internal/metrics"
	"github.com/EasterCompany/dex-runway-service/types"
	"go.uber.org/zap"
)

const DefaultHealthInterval = 5 * time.Second

// Manager combines the file store with the optional cache.
type Manager struct {
	files       *FileStore
	cache       *RedisCache
	metrics     *metrics.Metrics
	logger      *zap.Logger
	mu          sync.RWMutex
	cacheOnline bool
}

// NewManager creates a Manager. cache may be nil.
func NewManager(files *FileStore, cache *RedisCache, m *metrics.Metrics, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		files:       files,
		cache:       cache,
		metrics:     m,
		logger:      logger.Named("storage"),
		cacheOnline: cache != nil,
	}
}

// MonitorCacheHealth pings the cache every interval until ctx is done, toggling
// whether the cache is used.
func (m *Manager) MonitorCacheHealth(ctx context.Context, interval time.Duration) {
	if m.cache == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultHealthInterval
	}

	m.checkCache(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkCache(ctx)
		}
	}
}

func (m *Manager) checkCache(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	err := m.cache.Ping(pingCtx)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if m.cacheOnline {
			m.logger.Warn("Campaign cache is OFFLINE", zap.Error(err))
		}
		m.cacheOnline = false
		return
	}
	if !m.cacheOnline {
		m.logger.Info("Campaign cache is ONLINE")
	}
	m.cacheOnline = true
}

// IsCacheOnline reports whether reads and writes currently go to the cache.
func (m *Manager) IsCacheOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cacheOnline
}

func (m *Manager) markCacheOffline(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cacheOnline {
		m.logger.Warn("Campaign cache is OFFLINE", zap.Error(err))
	}
	m.cacheOnline = false
}

// Save writes the campaign to disk, then mirrors it to the cache.
func (m *Manager) Save(ctx context.Context, c *types.Campaign) (string, error) {
	id, err := m.files.Save(ctx, c)
	if err != nil {
		return "", err
	}
	m.mirror(ctx, c)
	return id, nil
}

// Load reads a campaign from the cache when possible, otherwise from disk.
func (m *Manager) Load(ctx context.Context, id string) (*types.Campaign, error) {
	if !ValidID(id) {
		return m.files.Load(ctx, id)
	}

	if m.IsCacheOnline() {
		c, err := m.cache.Get(ctx, id)
		switch {
		case err == nil:
			m.metrics.CacheLookup("hit")
			return c, nil
		case errors.Is(err, ErrCacheMiss):
			m.metrics.CacheLookup("miss")
		default:
			m.metrics.CacheLookup("error")
			m.markCacheOffline(err)
		}
	}

	c, err := m.files.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mirror(ctx, c)
	return c, nil
}

// List delegates to the file store, which holds every campaign.
func (m *Manager) List(ctx context.Context) ([]types.CampaignSummary, error) {
	return m.files.List(ctx)
}

func (m *Manager) mirror(ctx context.Context, c *types.Campaign) {
	if !m.IsCacheOnline() {
		return
	}
	if err := m.cache.Set(ctx, c); err != nil {
		m.logger.Warn("Mirror to cache failed", zap.String("campaign_id", c.ID), zap.Error(err))
		m.markCacheOffline(err)
	}
}

// Close releases the cache connection.
func (m *Manager) Close() error {
	if m.cache == nil {
		return nil
	}
	return m.cache.Close()
}
