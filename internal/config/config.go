package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the denoise gateway service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Suppression engine configuration
	// EnginePath points at the engine's WASM binary. Optional: when unset,
	// streams stay in passthrough until a client ships a binary with its
	// init control frame.
	EnginePath string `envconfig:"ENGINE_PATH" default:""`

	// Silence gating configuration
	SilenceThreshold float64 `envconfig:"SILENCE_THRESHOLD" default:"0.5"` // Smoothed-VAD level below which a frame counts as silence
	MaxSilenceFrames int     `envconfig:"MAX_SILENCE_FRAMES" default:"10"` // Consecutive silent frames delivered before gating starts

	// Control intake configuration
	ControlQueueSize int `envconfig:"CONTROL_QUEUE_SIZE" default:"16"` // Buffered control messages per stream

	// WebSocket buffer sizing
	WSReadBufferSize  int `envconfig:"WS_READ_BUFFER_SIZE" default:"4096"`
	WSWriteBufferSize int `envconfig:"WS_WRITE_BUFFER_SIZE" default:"4096"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SilenceThreshold < 0 || c.SilenceThreshold > 1 {
		return fmt.Errorf("SILENCE_THRESHOLD must be in [0, 1], got %v", c.SilenceThreshold)
	}
	if c.MaxSilenceFrames < 0 {
		return fmt.Errorf("MAX_SILENCE_FRAMES must be non-negative, got %d", c.MaxSilenceFrames)
	}
	if c.ControlQueueSize <= 0 {
		return fmt.Errorf("CONTROL_QUEUE_SIZE must be positive, got %d", c.ControlQueueSize)
	}
	return nil
}
