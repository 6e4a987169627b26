package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	Port     string
	// Durable store
	DatabaseURL string
	// Ephemeral cache
	CacheBackend  string // redis | memory | none
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	// External rate source
	RatesAPIBase    string
	RatesAPITimeout time.Duration
	// Batch refresher
	RefreshInterval time.Duration
	RefreshBases    []string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:             getEnv("ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CacheBackend:    getEnv("CACHE_BACKEND", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         atoiDef(getEnv("REDIS_DB", "0"), 0),
		CacheTTL:        time.Duration(atoiDef(getEnv("CACHE_TTL_SECONDS", "3600"), 3600)) * time.Second,
		RatesAPIBase:    getEnv("RATES_API_BASE", ""),
		RatesAPITimeout: time.Duration(atoiDef(getEnv("RATES_API_TIMEOUT_SECONDS", "10"), 10)) * time.Second,
		RefreshInterval: time.Duration(atoiDef(getEnv("REFRESH_INTERVAL_MINUTES", "60"), 60)) * time.Minute,
		RefreshBases:    splitCSV(getEnv("REFRESH_BASES", "USD,EUR")),
	}
}
