package config

import "time"

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Generation GenerationConfig `yaml:"generation"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// GeminiConfig selects the provider credentials and models.
type GeminiConfig struct {
	APIKey       string `yaml:"api_key"`
	RoadmapModel string `yaml:"roadmap_model"`
	ImageModel   string `yaml:"image_model"`
}

// GenerationConfig tunes the generation pipeline.
type GenerationConfig struct {
	Temperature      float32       `yaml:"temperature"`
	RoadmapTimeout   time.Duration `yaml:"roadmap_timeout"`
	ImageTimeout     time.Duration `yaml:"image_timeout"`
	ImageConcurrency int           `yaml:"image_concurrency"`
	MaxImageDim      int           `yaml:"max_image_dim"`
}

// StorageConfig locates campaign files and the optional Redis cache.
type StorageConfig struct {
	Dir   string      `yaml:"dir"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig is disabled when Addr is empty.
type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	TTL            time.Duration `yaml:"ttl"`
	HealthInterval time.Duration `yaml:"health_interval"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// GetSanitized returns a copy safe to expose in status reports.
func (c Config) GetSanitized() Config {
	if c.Gemini.APIKey != "" {
		c.Gemini.APIKey = "********"
	}
	if c.Storage.Redis.Password != "" {
		c.Storage.Redis.Password = "********"
	}
	return c
}
