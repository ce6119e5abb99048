package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// StoreKind selects the record store backend.
type StoreKind string

const (
	StoreSQL      StoreKind = "sql"
	StoreSupabase StoreKind = "supabase"
)

// Config keeps runtime settings.
type Config struct {
	Store          StoreKind
	DatabaseURL    string
	SupabaseURL    string
	SupabaseKey    string
	StoreRetries   int
	TelegramToken  string
	TelegramChatID int64
	ReportTime     string
	Location       *time.Location
	LogLevel       logrus.Level
	LogFormat      string
}

// Load reads configuration from environment variables with sane defaults. A .env file in
// the working directory is read first; variables already set in the process win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		Store:         StoreKind(strings.ToLower(get("TRACKIT_STORE"))),
		DatabaseURL:   get("DATABASE_URL"),
		SupabaseURL:   get("SUPABASE_URL"),
		SupabaseKey:   get("SUPABASE_KEY"),
		TelegramToken: get("TELEGRAM_TOKEN"),
		ReportTime:    get("REPORT_TIME"),
		LogFormat:     strings.ToLower(get("LOG_FORMAT")),
		StoreRetries:  3,
		Location:      time.Local,
		LogLevel:      logrus.InfoLevel,
	}

	if cfg.Store == "" {
		cfg.Store = StoreSQL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "trackit.db"
	}
	if cfg.ReportTime == "" {
		cfg.ReportTime = "21:00"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	switch cfg.Store {
	case StoreSQL:
	case StoreSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return cfg, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase store")
		}
	default:
		return cfg, fmt.Errorf("unknown TRACKIT_STORE %q (want sql or supabase)", cfg.Store)
	}

	if raw := get("STORE_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("STORE_RETRIES must be a positive integer, got %q", raw)
		}
		cfg.StoreRetries = n
	}

	if raw := get("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID must be numeric, got %q", raw)
		}
		cfg.TelegramChatID = id
	}

	if raw := get("TIMEZONE"); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return cfg, fmt.Errorf("TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	if raw := get("LOG_LEVEL"); raw != "" {
		level, err := logrus.ParseLevel(raw)
		if err != nil {
			return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return cfg, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// RequireTelegram checks the settings the bot cannot run without.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}
