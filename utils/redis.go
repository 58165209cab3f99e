package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/EasterCompany/dex-runway-service/config"
	"github.com/redis/go-redis/v9"
)

// GetRedisClient connects to the configured Redis and verifies it answers a ping.
func GetRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
