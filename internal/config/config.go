package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Broker    BrokerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSOrigins           []string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret           string
	TokenIssuer         string
	SessionLifetimeDays int
	BcryptCost          int
}

// RateLimitConfig configures the login throttle.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// BrokerConfig points the event relay at an AMQP broker. An empty URL disables publishing.
type BrokerConfig struct {
	URL      string
	Exchange string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSOrigins:           getEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("APP_NAME", "helpdesk"),
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenIssuer:         getEnv("AUTH_TOKEN_ISSUER", "helpdesk"),
			SessionLifetimeDays: getEnvAsInt("AUTH_SESSION_LIFETIME_DAYS", 3),
			BcryptCost:          getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Capacity:       getEnvAsInt("RATE_LIMIT_CAPACITY", 10),
			RefillTokens:   getEnvAsInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: getEnvAsDuration("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
			TTL:            getEnvAsDuration("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),
		},
		Broker: BrokerConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "helpdesk.events"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Auth.SessionLifetimeDays <= 0 {
		return errors.New("AUTH_SESSION_LIFETIME_DAYS must be positive")
	}
	if c.App.Env != "development" && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "dev-secret") {
		return errors.New("AUTH_JWT_SECRET must be set outside development")
	}
	if c.RateLimit.Capacity < 1 {
		c.RateLimit.Capacity = 1
	}
	if c.RateLimit.RefillTokens < 1 {
		c.RateLimit.RefillTokens = 1
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RateLimit.RefillInterval; c.RateLimit.TTL < minTTL {
		c.RateLimit.TTL = minTTL
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionLifetime returns how long a freshly opened session stays valid.
func (a AuthConfig) SessionLifetime() time.Duration {
	return time.Duration(a.SessionLifetimeDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
