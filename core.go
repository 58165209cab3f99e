package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/EasterCompany/dex-runway-service/config"
	"github.com/EasterCompany/dex-runway-service/endpoints"
	"github.com/EasterCompany/dex-runway-service/internal/campaign"
	"github.com/EasterCompany/dex-runway-service/internal/gemini"
	"github.com/EasterCompany/dex-runway-service/internal/imaginator"
	"github.com/EasterCompany/dex-runway-service/internal/metrics"
	"github.com/EasterCompany/dex-runway-service/internal/roadmap"
	"github.com/EasterCompany/dex-runway-service/internal/storage"
	"github.com/EasterCompany/dex-runway-service/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Service holds the long-lived resources of a running server.
type Service struct {
	Config   *config.Config
	Store    *storage.Manager
	Registry *prometheus.Registry
	Handler  http.Handler
	logger   *zap.Logger
}

// newStore builds the campaign store. The Redis cache is used when an address is
// configured and reachable at startup; otherwise campaigns are served from disk only.
func newStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *storage.Manager {
	var cache *storage.RedisCache
	if cfg.Storage.Redis.Addr != "" {
		client, err := utils.GetRedisClient(ctx, cfg.Storage.Redis)
		if err != nil {
			logger.Warn("Campaign cache unavailable, serving from disk only", zap.Error(err))
		} else {
			cache = storage.NewRedisCache(client, cfg.Storage.Redis.TTL)
			logger.Info("Campaign cache enabled", zap.String("addr", cfg.Storage.Redis.Addr))
		}
	}
	return storage.NewManager(storage.NewFileStore(cfg.Storage.Dir), cache, m, logger)
}

// NewService wires the provider client, pipeline stages, store and HTTP router.
func NewService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, gemini.Options{
		RoadmapModel: cfg.Gemini.RoadmapModel,
		ImageModel:   cfg.Gemini.ImageModel,
		Metrics:      m,
	})
	if err != nil {
		return nil, err
	}

	store := newStore(ctx, cfg, m, logger)

	orch := campaign.NewOrchestrator(
		roadmap.NewGenerator(client, cfg.Generation.Temperature, cfg.Generation.RoadmapTimeout, logger),
		imaginator.NewExecutor(client, imaginator.Options{
			Concurrency: cfg.Generation.ImageConcurrency,
			Timeout:     cfg.Generation.ImageTimeout,
			Metrics:     m,
			Logger:      logger,
		}),
		store,
		campaign.Options{
			MaxImageDim: cfg.Generation.MaxImageDim,
			Metrics:     m,
			Logger:      logger,
		},
	)

	handler := endpoints.NewRouter(endpoints.RouterDeps{
		Campaigns: orch,
		Config:    cfg,
		Cache:     store,
		Gatherer:  reg,
		Logger:    logger,
	})

	return &Service{
		Config:   cfg,
		Store:    store,
		Registry: reg,
		Handler:  handler,
		logger:   logger,
	}, nil
}

// RunCoreLogic runs the background work of the service until ctx is cancelled.
func (s *Service) RunCoreLogic(ctx context.Context) error {
	if err := ensureStorageDir(s.Config.Storage.Dir); err != nil {
		utils.SetHealthStatus(utils.HealthDegraded, "Storage unavailable: "+err.Error())
		return err
	}

	utils.SetHealthStatus(utils.HealthOK, "Service is running normally")
	s.logger.Info("Core logic initialized, service is healthy")

	s.Store.MonitorCacheHealth(ctx, s.Config.Storage.Redis.HealthInterval)

	<-ctx.Done()
	utils.SetHealthStatus(utils.HealthShuttingDown, "Core logic is shutting down")
	return nil
}

// Close releases the service's connections.
func (s *Service) Close() error {
	return s.Store.Close()
}

func (s *Service) httpServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Config.Server.Port),
		Handler:      s.Handler,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}
}

func shutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func ensureStorageDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return nil
}
