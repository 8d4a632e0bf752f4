package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=payment_bot_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultChapaBaseURL = "https://api.chapa.co/v1"
const defaultCallbackURL = "https://joker-bingo-api.vercel.app/webhook/chapa"
const defaultReturnURL = "https://joker-bingo-frontend.vercel.app"
const defaultHTTPPort = "5000"
const defaultOpsChannelID = "JokerOps"
const defaultOpsChannelKey = "JokerOpsKey001"
const defaultCollectTimeout = 60 * time.Second
const defaultSettlingDelay = 8 * time.Second

type Config struct {
	BotToken      string
	ChapaSecret   string
	ChapaBaseURL  string
	WebhookSecret string
	CallbackURL   string
	ReturnURL     string
	DatabaseDSN   string
	MigrationsDir string
	HTTPPort      string
	OpsChannelID  string
	OpsChannelKey string

	// CollectTimeout bounds every conversational wait; SettlingDelay is how
	// long a withdrawal rests before the first verification attempt.
	CollectTimeout time.Duration
	SettlingDelay  time.Duration
}

func Load() (Config, error) {
	botToken := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if botToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	chapaSecret := strings.TrimSpace(os.Getenv("CHAPA_SECRET"))
	if chapaSecret == "" {
		return Config{}, fmt.Errorf("CHAPA_SECRET is required")
	}

	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	return Config{
		BotToken:       botToken,
		ChapaSecret:    chapaSecret,
		ChapaBaseURL:   envOrDefault("CHAPA_BASE_URL", defaultChapaBaseURL),
		WebhookSecret:  strings.TrimSpace(os.Getenv("CHAPA_WEBHOOK_SECRET")),
		CallbackURL:    envOrDefault("CALLBACK_URL", defaultCallbackURL),
		ReturnURL:      envOrDefault("RETURN_URL", defaultReturnURL),
		DatabaseDSN:    normalizeConnectionString(conn),
		MigrationsDir:  filepath.Join("src", "migrations"),
		HTTPPort:       envOrDefault("HTTP_PORT", defaultHTTPPort),
		OpsChannelID:   envOrDefault("OPS_CHANNEL_ID", defaultOpsChannelID),
		OpsChannelKey:  envOrDefault("OPS_CHANNEL_KEY", defaultOpsChannelKey),
		CollectTimeout: durationOrDefault("COLLECT_TIMEOUT", defaultCollectTimeout),
		SettlingDelay:  durationOrDefault("SETTLING_DELAY", defaultSettlingDelay),
	}, nil
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
