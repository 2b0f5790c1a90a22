package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultListenAddr     = ":8080"
	defaultDatabaseURL    = "factorydesk.db"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultSessionTTL     = "24h"
	defaultTrashRetention = "2m"
	defaultSweepInterval  = "1s"
	defaultStoragePoll    = "1s"
	defaultQuotaBytes     = "5242880" // 5 MB per document
	defaultLanguage       = "TH"
	defaultGeminiBaseURL  = "https://generativelanguage.googleapis.com"
)

type Config struct {
	AppEnv      string
	ListenAddr  string
	DatabaseURL string

	JWTSecret  string
	SessionTTL time.Duration

	// TrashRetention is the window between soft delete and purge
	// eligibility. The short default matches the reference terminal
	// behavior; production deployments are expected to raise it.
	TrashRetention time.Duration
	TrashAutosweep bool
	SweepInterval  time.Duration

	StorageQuotaBytes   int
	StoragePollInterval time.Duration

	DefaultLanguage string

	GeminiAPIKey  string
	GeminiBaseURL string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = strings.TrimSpace(getEnv("LISTEN_ADDR", defaultListenAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.DefaultLanguage = strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_LANGUAGE", defaultLanguage)))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.GeminiBaseURL = strings.TrimSpace(getEnv("GEMINI_BASE_URL", defaultGeminiBaseURL))
	cfg.TrashAutosweep = parseBoolEnv("TRASH_AUTOSWEEP", "false")

	var err error
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.TrashRetention, err = parseDurationEnv("TRASH_RETENTION", defaultTrashRetention); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = parseDurationEnv("TRASH_SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		return nil, err
	}
	if cfg.StoragePollInterval, err = parseDurationEnv("STORAGE_POLL_INTERVAL", defaultStoragePoll); err != nil {
		return nil, err
	}
	if cfg.StorageQuotaBytes, err = parseIntEnv("STORAGE_QUOTA_BYTES", defaultQuotaBytes); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.TrashRetention <= 0 {
		return fmt.Errorf("TRASH_RETENTION must be > 0")
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("TRASH_SWEEP_INTERVAL must be > 0")
	}
	if cfg.StoragePollInterval <= 0 {
		return fmt.Errorf("STORAGE_POLL_INTERVAL must be > 0")
	}
	if cfg.StorageQuotaBytes < 0 {
		return fmt.Errorf("STORAGE_QUOTA_BYTES must be >= 0")
	}
	if cfg.DefaultLanguage != "TH" && cfg.DefaultLanguage != "EN" {
		return fmt.Errorf("DEFAULT_LANGUAGE must be TH or EN")
	}
	if isProdLike(cfg.AppEnv) && cfg.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func parseIntEnv(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, raw, err)
	}
	return n, nil
}

func parseBoolEnv(key, fallback string) bool {
	raw := strings.ToLower(strings.TrimSpace(getEnv(key, fallback)))
	return raw == "1" || raw == "true" || raw == "yes"
}
