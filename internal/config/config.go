// Package config handles configuration loading for crewgrid.
// It layers built-in defaults, an optional crewgrid.yaml in the
// working directory, and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for crewgrid.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Roster   RosterConfig   `mapstructure:"roster"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path"`
}

// RedisConfig holds Redis Streams settings for the goal queue.
type RedisConfig struct {
	// Addr is the Redis host:port. Empty disables the durable queue
	// and goals run inline instead.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// Stream is the goal queue stream key.
	Stream string `mapstructure:"stream"`
	// Group is the consumer group name.
	Group string `mapstructure:"group"`
	// Consumer is this process's consumer name within the group.
	Consumer string `mapstructure:"consumer"`
}

// DispatchConfig holds dispatcher settings.
type DispatchConfig struct {
	// Interval is how often idle workers are swept for pending tasks.
	Interval time.Duration `mapstructure:"interval"`
}

// QueueConfig holds goal queue consumer settings.
type QueueConfig struct {
	// Block is how long a dequeue blocks waiting for a goal.
	Block time.Duration `mapstructure:"block"`
}

// RosterConfig holds worker roster settings.
type RosterConfig struct {
	// Path is an optional roster YAML file; empty uses the built-in roster.
	Path string `mapstructure:"path"`
}

// Load loads configuration from defaults, an optional crewgrid.yaml in
// the working directory, and environment variables. Precedence
// (highest to lowest): environment, config file, defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("crewgrid")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("CREWGRID")
	v.AutomaticEnv()
	v.BindEnv("database.path", "CREWGRID_DB_PATH")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Dispatch.Interval <= 0 {
		return nil, fmt.Errorf("dispatch.interval must be positive, got %s", cfg.Dispatch.Interval)
	}
	if cfg.Queue.Block <= 0 {
		return nil, fmt.Errorf("queue.block must be positive, got %s", cfg.Queue.Block)
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "crewgrid.db")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "crewgrid:goal_queue")
	v.SetDefault("redis.group", "crewgrid_workers")
	v.SetDefault("redis.consumer", "crewgrid-1")

	v.SetDefault("dispatch.interval", "1500ms")
	v.SetDefault("queue.block", "5s")

	v.SetDefault("roster.path", "")
}
