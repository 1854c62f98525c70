package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	JWTSecret   string
	Location    *time.Location
	BotToken    string // телеграм-канал для админ-уведомлений, опционально
	AdminChatID int64
	TokenTTL    time.Duration

	// Стартовый админ: заводится при старте, если e-mail ещё свободен.
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Baku")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminChatID, err := parseID(os.Getenv("ADMIN_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_ID: %w", err)
	}

	cfg := &Config{
		DatabaseURL: mustEnv("DATABASE_URL"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		JWTSecret:   mustEnv("JWT_SECRET"),
		Location:    loc,
		BotToken:    os.Getenv("BOT_TOKEN"),
		AdminChatID: adminChatID,
		TokenTTL:    24 * time.Hour,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q: %w", s, err)
	}
	return n, nil
}
