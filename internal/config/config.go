package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// HTTP
	Port        string
	CORSOrigins []string

	// Runtime
	Env      string
	LogLevel string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Tokens
	JWTSecret      string
	AccessTokenTTL time.Duration

	// AI answers
	AIAPIKey        string
	AIBaseURL       string
	AIModel         string
	AITimeout       time.Duration
	AICachePath     string
	AICacheTTL      time.Duration
	AIRatePerMinute int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is picked up by godotenv before this runs.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		CORSOrigins: getlist("CORS_ORIGINS", []string{"*"}),

		Env:      getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME", "stackit"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		SQLitePath: getenv("SQLITE_PATH", "stackit.db"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: getdur("ACCESS_TOKEN_TTL", 30*time.Minute),

		AIAPIKey:        os.Getenv("AI_API_KEY"),
		AIBaseURL:       os.Getenv("AI_BASE_URL"),
		AIModel:         getenv("AI_MODEL", "gemini-2.0-flash"),
		AITimeout:       getdur("AI_TIMEOUT", 15*time.Second),
		AICachePath:     os.Getenv("AI_CACHE_PATH"),
		AICacheTTL:      getdur("AI_CACHE_TTL", 24*time.Hour),
		AIRatePerMinute: getint("AI_RATE_PER_MINUTE", 30),
	}
}

// Validate reports configuration that would make the server unusable.
func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment is true for local and test environments.
func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

// SigningKey returns the JWT secret, falling back to a fixed development key.
func (c Config) SigningKey() []byte {
	if c.JWTSecret == "" {
		return []byte("stackit-development-secret")
	}
	return []byte(c.JWTSecret)
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func getlist(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
