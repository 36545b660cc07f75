package quota

import (
	"fmt"
	"os"
	"strconv"
)

// Backend selects the quota counter implementation.
type Backend string

const (
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// Config holds quota settings and the redis connection for the redis
// backend. The postgres backend reuses the shared database connection.
type Config struct {
	// Backend is "redis" or "postgres". Default redis.
	Backend Backend `yaml:"backend" env:"QUOTA_BACKEND"`

	// DailyLimit is the free-tier budget per user per day.
	DailyLimit int64 `yaml:"daily_limit" env:"QUOTA_DAILY_LIMIT"`

	// Redis connection (redis backend only).
	RedisHost     string `yaml:"redis_host" env:"REDIS_HOST"`
	RedisPort     int    `yaml:"redis_port" env:"REDIS_PORT"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

// DefaultConfig returns the default quota settings.
func DefaultConfig() *Config {
	return &Config{
		Backend:    BackendRedis,
		DailyLimit: 50,
		RedisHost:  "localhost",
		RedisPort:  6379,
	}
}

// NewConfig builds a Config from environment variables, falling back to
// the defaults where a variable is unset.
func NewConfig() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("QUOTA_BACKEND"); v != "" {
		switch Backend(v) {
		case BackendRedis, BackendPostgres:
			cfg.Backend = Backend(v)
		default:
			return nil, fmt.Errorf("quota: unknown QUOTA_BACKEND %q", v)
		}
	}
	if v := os.Getenv("QUOTA_DAILY_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.DailyLimit = n
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.RedisHost = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisPort = n
		}
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}

	return cfg, nil
}

// limitFor maps a role to its daily budget. 0 means unlimited.
func (c *Config) limitFor(role Role) int64 {
	switch role {
	case RolePro, RoleAdmin:
		return 0
	default:
		return c.DailyLimit
	}
}
