package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr      string
	JWTSecret string
	JWTTTLMin int

	// Storage DSN; a postgres:// scheme selects the Postgres store,
	// anything else is treated as a SQLite DSN.
	StorageDSN string

	// Optional Redis address for the shared rates cache. Empty means the
	// rates snapshot lives in the durable KV store instead.
	RedisAddr string

	RatesURL    string
	RatesTTLSec int

	SupportReplyDelayMs int
	SupportReplyText    string

	// SendGrid config for offline-support notifications
	SendGridAPIKey string
	SendGridFrom   string
	SupportInbox   string
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func MustLoad() Config {
	cfg := Config{
		Addr:                getenv("HTTP_ADDR", ":8080"),
		JWTSecret:           getenv("JWT_SECRET", ""),
		JWTTTLMin:           getenvInt("JWT_TTL_MIN", 1440),
		StorageDSN:          getenv("STORAGE_DSN", "file:vendora.db?_pragma=foreign_keys(ON)"),
		RedisAddr:           getenv("REDIS_ADDR", ""),
		RatesURL:            getenv("RATES_URL", "https://api.exchangerate.host/latest"),
		RatesTTLSec:         getenvInt("RATES_TTL_SEC", 3600),
		SupportReplyDelayMs: getenvInt("SUPPORT_REPLY_DELAY_MS", 2000),
		SupportReplyText:    getenv("SUPPORT_REPLY_TEXT", "Thanks for reaching out! A support agent will be with you shortly."),
		SendGridAPIKey:      getenv("SENDGRID_API_KEY", ""),
		SendGridFrom:        getenv("SENDGRID_FROM", ""),
		SupportInbox:        getenv("SUPPORT_INBOX", ""),
	}
	return cfg
}
