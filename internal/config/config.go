package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Rate limiter backends.
const (
	LimiterMemory = "memory"
	LimiterRedis  = "redis"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Env       string // "development" exposes error internals in responses
	Store     string
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Slack     SlackConfig
	Media     MediaConfig
	Accounts  AccountsConfig
	Lifecycle LifecycleConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string //nolint:gosec // G117: DB connection config
	DBName       string
	SSLMode      string
	MaxConns     int
	EnsureSchema bool
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// RateLimitConfig bounds requests per window across the whole process.
type RateLimitConfig struct {
	Backend string
	Max     int
	Window  time.Duration
}

// SlackConfig holds admin alert settings. Alerts are off without a token.
type SlackConfig struct {
	BotToken     string
	AlertChannel string
}

// MediaConfig holds local image storage settings.
type MediaConfig struct {
	Dir     string
	BaseURL string
	MaxSize int64
}

// AccountsConfig holds registration settings.
type AccountsConfig struct {
	AllowAdminSignup bool
	OTPTTL           time.Duration
}

// LifecycleConfig selects how flag toggles are executed.
type LifecycleConfig struct {
	AtomicToggles bool
}

// Dev reports whether development diagnostics are enabled.
func (c *Config) Dev() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("PATA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("PATA_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ensureSchema, err := getEnvBool("PATA_DB_ENSURE_SCHEMA", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("PATA_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("PATA_JWT_ACCESS_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("PATA_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("PATA_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("PATA_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateMax, err := getEnvInt("PATA_RATE_LIMIT_MAX", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateWindow, err := getEnvDuration("PATA_RATE_LIMIT_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	mediaMax, err := getEnvInt("PATA_MEDIA_MAX_BYTES", 5<<20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	adminSignup, err := getEnvBool("PATA_ALLOW_ADMIN_SIGNUP", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	otpTTL, err := getEnvDuration("PATA_OTP_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	atomicToggles, err := getEnvBool("PATA_LIFECYCLE_ATOMIC_TOGGLES", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("PATA_CORS_ORIGINS", []string{"*"})

	cfg := &Config{
		Env:   getEnv("PATA_ENV", "production"),
		Store: getEnv("PATA_STORE", StorePostgres),
		Database: DatabaseConfig{
			Host:         getEnv("PATA_DB_HOST", "localhost"),
			Port:         dbPort,
			User:         getEnv("PATA_DB_USER", "pata"),
			Password:     getEnv("PATA_DB_PASSWORD", ""),
			DBName:       getEnv("PATA_DB_NAME", "pata_dev"),
			SSLMode:      getEnv("PATA_DB_SSLMODE", "disable"),
			MaxConns:     dbMaxConns,
			EnsureSchema: ensureSchema,
		},
		Redis: RedisConfig{
			Addr:     getEnv("PATA_REDIS_ADDR", ""),
			Password: getEnv("PATA_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("PATA_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("PATA_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		RateLimit: RateLimitConfig{
			Backend: getEnv("PATA_RATE_LIMIT_BACKEND", LimiterMemory),
			Max:     rateMax,
			Window:  rateWindow,
		},
		Slack: SlackConfig{
			BotToken:     getEnv("PATA_SLACK_BOT_TOKEN", ""),
			AlertChannel: getEnv("PATA_SLACK_ALERT_CHANNEL", ""),
		},
		Media: MediaConfig{
			Dir:     getEnv("PATA_MEDIA_DIR", "./uploads"),
			BaseURL: getEnv("PATA_MEDIA_BASE_URL", "/media"),
			MaxSize: int64(mediaMax),
		},
		Accounts: AccountsConfig{
			AllowAdminSignup: adminSignup,
			OTPTTL:           otpTTL,
		},
		Lifecycle: LifecycleConfig{
			AtomicToggles: atomicToggles,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("PATA_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("PATA_JWT_SECRET must be at least 32 characters")
	}

	switch c.Store {
	case StorePostgres:
		if c.Database.SSLMode == "disable" && !c.Dev() {
			log.Warn().Msg("PATA_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
		}
	case StoreMemory:
		if !c.Dev() {
			log.Warn().Msg("PATA_STORE=memory keeps data in process memory only")
		}
	default:
		return fmt.Errorf("PATA_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	switch c.RateLimit.Backend {
	case LimiterMemory:
	case LimiterRedis:
		if c.Redis.Addr == "" {
			return errors.New("PATA_RATE_LIMIT_BACKEND=redis requires PATA_REDIS_ADDR")
		}
	default:
		return fmt.Errorf("PATA_RATE_LIMIT_BACKEND must be %q or %q, got %q", LimiterMemory, LimiterRedis, c.RateLimit.Backend)
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("PATA_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("PATA_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("PATA_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("PATA_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("PATA_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("PATA_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.RateLimit.Max < 1 {
		return fmt.Errorf("PATA_RATE_LIMIT_MAX must be >= 1, got %d", c.RateLimit.Max)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("PATA_RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimit.Window)
	}
	if c.Media.MaxSize < 1 {
		return fmt.Errorf("PATA_MEDIA_MAX_BYTES must be >= 1, got %d", c.Media.MaxSize)
	}
	if c.Accounts.OTPTTL <= 0 {
		return fmt.Errorf("PATA_OTP_TTL must be positive, got %s", c.Accounts.OTPTTL)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
