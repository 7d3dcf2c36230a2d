package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TieBreak decides the order of players with equal totals.
type TieBreak string

const (
	TieBreakPlayerID TieBreak = "player_id"
	TieBreakName     TieBreak = "name"
	TieBreakRoster   TieBreak = "roster"
)

// ActiveSelection decides which tournaments the home view treats as active.
type ActiveSelection string

const (
	ActiveLatest ActiveSelection = "latest"
	ActiveUnwon  ActiveSelection = "unwon"
)

// R2Config holds Cloudflare R2 credentials. Empty means object storage is disabled.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c R2Config) Enabled() bool {
	return c.AccountID != "" || c.AccessKeyID != "" || c.SecretAccessKey != "" ||
		c.BucketName != "" || c.PublicBaseURL != ""
}

// Standings holds the winner rules of the standings engine.
type Standings struct {
	WinThreshold    int
	TieBreak        TieBreak
	ActiveSelection ActiveSelection
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL        string
	JWTSecretKey       string
	ServerPort         int
	TokenTTL           time.Duration
	AutoMigrate        bool
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	AdminUsername      string
	AdminPassword      string
	Standings          Standings
	R2                 R2Config
}

const (
	DefaultServerPort   = 8080
	DefaultWinThreshold = 30
	DefaultTokenTTL     = 24 * time.Hour
)

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", DefaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	threshold, err := intFromEnv("WIN_THRESHOLD", DefaultWinThreshold)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("WIN_THRESHOLD must be positive, got %d", threshold)
	}

	tieBreak := TieBreak(strings.ToLower(getEnvOrDefault("STANDINGS_TIE_BREAK", string(TieBreakPlayerID))))
	switch tieBreak {
	case TieBreakPlayerID, TieBreakName, TieBreakRoster:
	default:
		return nil, fmt.Errorf("invalid STANDINGS_TIE_BREAK %q: expected player_id, name or roster", tieBreak)
	}

	active := ActiveSelection(strings.ToLower(getEnvOrDefault("ACTIVE_SELECTION", string(ActiveLatest))))
	switch active {
	case ActiveLatest, ActiveUnwon:
	default:
		return nil, fmt.Errorf("invalid ACTIVE_SELECTION %q: expected latest or unwon", active)
	}

	ttlHours, err := intFromEnv("TOKEN_TTL_HOURS", int(DefaultTokenTTL/time.Hour))
	if err != nil {
		return nil, err
	}
	if ttlHours <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS must be positive, got %d", ttlHours)
	}

	autoMigrate := false
	if raw := os.Getenv("AUTO_MIGRATE"); raw != "" {
		autoMigrate, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_MIGRATE environment variable: %w", err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	r2 := R2Config{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	adminUser := os.Getenv("ADMIN_USERNAME")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if (adminUser == "") != (adminPass == "") {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		TokenTTL:           time.Duration(ttlHours) * time.Hour,
		AutoMigrate:        autoMigrate,
		LogLevel:           level,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		AdminUsername:      adminUser,
		AdminPassword:      adminPass,
		Standings: Standings{
			WinThreshold:    threshold,
			TieBreak:        tieBreak,
			ActiveSelection: active,
		},
		R2: r2,
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intFromEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
