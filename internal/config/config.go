package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	BackendURL            string
	BackendAuthCollection string
	BackendTimeout        time.Duration
	ListPageSize          int

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	// Хранилище сессий: redis, затем postgres, иначе память
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SweepInterval time.Duration
}

func Load() Config {
	_ = godotenv.Load() // .env не обязателен

	return Config{
		Port:                  getEnv("PORT", "8080"),
		BackendURL:            getEnv("BACKEND_URL", "http://127.0.0.1:8090"),
		BackendAuthCollection: getEnv("BACKEND_AUTH_COLLECTION", "users"),
		BackendTimeout:        getDuration("BACKEND_TIMEOUT", 10*time.Second),
		ListPageSize:          getInt("LIST_PAGE_SIZE", 200),
		SessionSecret:         getEnv("SESSION_SECRET", "dev-secret-change-me"),
		SessionTTL:            getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:          getEnv("COOKIE_SECURE", "false") == "true",
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getInt("REDIS_DB", 0),
		SweepInterval:         getDuration("SWEEP_INTERVAL", 5*time.Minute),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
