package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// SimulationConfig bounds a single persona simulation
type SimulationConfig struct {
	MaxTurns       int `koanf:"max_turns"`
	TimeoutMinutes int `koanf:"timeout_minutes"`
}

// RateLimitConfig holds the fixed-window quotas
type RateLimitConfig struct {
	ProjectLimit  int           `koanf:"project_limit"`  // runs per project per window
	ProjectWindow time.Duration `koanf:"project_window"` // default 24h
	GlobalLimit   int           `koanf:"global_limit"`   // runs across all projects per window
	GlobalWindow  time.Duration `koanf:"global_window"`  // default 1h
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        string `koanf:"port"`
	CORSOrigins string `koanf:"cors_origins"`
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URI string `koanf:"uri"`
}

// Config is the full service configuration, loaded from environment variables.
// Variables use SECTION_FIELD naming: SERVER_PORT, MONGO_URI, SIMULATION_MAX_TURNS.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Redis      RedisConfig      `koanf:"redis"`
	Simulation SimulationConfig `koanf:"simulation"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
}

// Load reads configuration from environment variables over defaults
func Load() (*Config, error) {
	k := koanf.New(".")

	// SERVER_PORT -> server.port, SIMULATION_MAX_TURNS -> simulation.max_turns
	if err := k.Load(env.Provider("", ".", func(s string) string {
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Remove redis:// prefix if present
	cfg.Redis.URI = strings.TrimPrefix(cfg.Redis.URI, "redis://")

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: "*",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "demosim",
		},
		Redis: RedisConfig{
			URI: "localhost:6379",
		},
		Simulation: SimulationConfig{
			MaxTurns:       40,
			TimeoutMinutes: 5,
		},
		RateLimit: RateLimitConfig{
			ProjectLimit:  10,
			ProjectWindow: 24 * time.Hour,
			GlobalLimit:   50,
			GlobalWindow:  time.Hour,
			SweepInterval: 10 * time.Minute,
		},
	}
}
