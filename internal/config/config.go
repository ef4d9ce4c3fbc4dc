package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	AppEnv     string
	LogLevel   string

	DBDriver       string
	MySQLDSN       string
	PostgresDSN    string
	SQLitePath     string
	DBMaxOpenConns int
	DBMaxIdleConns int
	ResetDB        bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret string
	JWTExpiry time.Duration

	CORSOrigins    []string
	SwaggerHost    string
	SentryDSN      string
	MetricsEnabled bool
}

const (
	// EnvDevelopment is the APP_ENV value that allows development defaults.
	EnvDevelopment = "development"
	// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset.
	DefaultJWTSecret = "change-me"
)

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8050"),
		AppEnv:     getEnv("APP_ENV", EnvDevelopment),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		MySQLDSN:       getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/storefront?charset=utf8mb4&parseTime=True&loc=Local"),
		PostgresDSN:    getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=storefront port=5432 sslmode=disable TimeZone=UTC"),
		SQLitePath:     getEnv("SQLITE_PATH", "storefront.db"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
		ResetDB:        os.Getenv("RESET_DB") == "true",

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 6*time.Hour),

		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		MetricsEnabled: os.Getenv("METRICS_ENABLED") != "false",
	}
}

// Validate rejects settings that are only acceptable in development.
func (c *Config) Validate() error {
	if c.AppEnv != EnvDevelopment && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return errors.New("JWT_SECRET must be set when APP_ENV is not development")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
