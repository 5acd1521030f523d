// Package config reads service settings from the environment.
// main loads a .env file (godotenv) before calling Load.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             string
	LogLevel         string
	DatabaseURL      string // empty disables the round journal
	SessionSecret    string
	SessionTTL       time.Duration // cookie lifetime
	SessionIdle      time.Duration // in-memory sessions idle longer than this are swept
	ClientOrigin     string
	DailySalt        string
	LeaderboardSlots int
	Production       bool
}

func Load() Config {
	return Config{
		Port:             getEnv("PORT", "5175"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SessionSecret:    getEnv("SESSION_SECRET", "dev_secret_change_me"),
		SessionTTL:       time.Duration(getEnvInt("SESSION_DAYS", 180)) * 24 * time.Hour,
		SessionIdle:      time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
		ClientOrigin:     getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:        getEnv("DAILY_SALT", "local_dev_salt"),
		LeaderboardSlots: getEnvInt("LEADERBOARD_SLOTS", 5),
		Production:       os.Getenv("APP_ENV") == "production",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
