// Package config reads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	Port         int
	NodeID       int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NatsConfig struct {
	Servers []string
	Name    string
	Enabled bool
}

type JWTConfig struct {
	Secret string
}

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Nats   NatsConfig
	JWT    JWTConfig

	LogLevel string
}

// Load pulls everything from the environment with local-dev defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getIntEnv("DM_PORT", 8080),
			NodeID:       int64(getIntEnv("DM_NODE_ID", 1)),
			ReadTimeout:  getDurationEnv("DM_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("DM_WRITE_TIMEOUT", 120*time.Second),
		},
		Mongo: MongoConfig{
			URI:      getEnv("DM_MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database: getEnv("DM_MONGO_DB", "dm"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("DM_REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("DM_REDIS_PASSWORD", ""),
			DB:       getIntEnv("DM_REDIS_DB", 0),
		},
		Nats: NatsConfig{
			Servers: []string{getEnv("DM_NATS_URL", "nats://127.0.0.1:4222")},
			Name:    getEnv("DM_NATS_NAME", "dm-service"),
			Enabled: getBoolEnv("DM_NATS_ENABLED", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("DM_JWT_SECRET", "dev-secret-do-not-ship"),
		},
		LogLevel: getEnv("DM_LOG_LEVEL", "debug"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
