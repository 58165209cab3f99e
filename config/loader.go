package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "config.yaml"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    20 << 20,
		},
		Gemini: GeminiConfig{
			RoadmapModel: "gemini-2.5-flash",
			ImageModel:   "gemini-2.5-flash-image",
		},
		Generation: GenerationConfig{
			Temperature:      0.7,
			RoadmapTimeout:   60 * time.Second,
			ImageTimeout:     90 * time.Second,
			ImageConcurrency: 4,
			MaxImageDim:      1024,
		},
		Storage: StorageConfig{
			Dir: "campaigns",
			Redis: RedisConfig{
				TTL:            24 * time.Hour,
				HealthInterval: 5 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the defaults.
// Environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	// GEMINI_API_KEY wins over GOOGLE_API_KEY, matching the genai SDK.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if port := os.Getenv("RUNWAY_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid RUNWAY_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	if dir := os.Getenv("RUNWAY_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if addr := os.Getenv("RUNWAY_REDIS_ADDR"); addr != "" {
		c.Storage.Redis.Addr = addr
	}
	if level := os.Getenv("RUNWAY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Gemini.RoadmapModel == "" || c.Gemini.ImageModel == "" {
		return errors.New("gemini models must be set")
	}
	if c.Generation.Temperature <= 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation temperature must be in (0, 2], got %v", c.Generation.Temperature)
	}
	if c.Generation.ImageConcurrency < 1 {
		return fmt.Errorf("image concurrency must be at least 1, got %d", c.Generation.ImageConcurrency)
	}
	if c.Generation.RoadmapTimeout <= 0 || c.Generation.ImageTimeout <= 0 {
		return errors.New("generation timeouts must be positive")
	}
	if c.Storage.Dir == "" {
		return errors.New("storage dir must be set")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}
