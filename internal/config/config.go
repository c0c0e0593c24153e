package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string
	JWTSecret  string

	// AdminEmail is the out-of-band administrator identity. A session with
	// this email is an admin even when its profile flag says otherwise.
	AdminEmail string

	OpenAIKey   string
	OpenAIModel string

	// GenerationTimeout bounds a single call to the generation service.
	GenerationTimeout time.Duration
	// ProviderTimeout bounds calls into the identity provider.
	ProviderTimeout time.Duration
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		MySQLDSN:          getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/fitplan?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@plexus.es"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 90*time.Second),
		ProviderTimeout:   getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
