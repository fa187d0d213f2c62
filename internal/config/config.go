package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	DBPath     string
	SuperAdmin string
	RedisAddr  string

	Rtp       int64
	MinBet    int64
	MaxWin    int64
	MaxRounds uint64
}

func Load() *Config {
	cfg := &Config{
		DBPath:     getEnv("DB_PATH", "db.sqlite"),
		SuperAdmin: os.Getenv("SUPER_ADMIN_ID"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		Rtp:        getEnvInt("RTP", 97),
		MinBet:     getEnvInt("MIN_BET", 10_000_000),
		MaxWin:     getEnvInt("MAX_WIN", 2_000_000_000),
		MaxRounds:  uint64(getEnvInt("MAX_ROUNDS", 10)),
	}

	if os.Getenv("API_KEY") == "" || os.Getenv("ADMIN_TOKEN") == "" || cfg.SuperAdmin == "" {
		log.Fatal("Missing critical environment variables")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
