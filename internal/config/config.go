// Package config loads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	AppHost string
	AppPort string

	DBDriver  string
	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBSSLMode string
	DBDSN     string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	RabbitMQURL string

	LogLevel  string
	LogFormat string
}

// ErrMissingSecret is returned when JWT_SECRET is not set.
var ErrMissingSecret = errors.New("JWT_SECRET is required")

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "")
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "")
	v.SetDefault("DB_NAME", "loja")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASS", "")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "loja-api")
	v.SetDefault("JWT_AUDIENCE", "users")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PRODUCT_CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppHost:       v.GetString("APP_HOST"),
		AppPort:       v.GetString("APP_PORT"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBName:        v.GetString("DB_NAME"),
		DBUser:        v.GetString("DB_USER"),
		DBPass:        v.GetString("DB_PASS"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		DBDSN:         v.GetString("DB_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTIssuer:     v.GetString("JWT_ISSUER"),
		JWTAudience:   v.GetString("JWT_AUDIENCE"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(v.GetString("JWT_TTL")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.ProductCacheTTL, err = time.ParseDuration(v.GetString("PRODUCT_CACHE_TTL")); err != nil {
		return nil, fmt.Errorf("invalid PRODUCT_CACHE_TTL: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(strings.TrimSpace(v.GetString("REDIS_DB"))); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}

// DSN returns the connection string for the configured driver. DB_DSN wins
// when set.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case DriverMySQL:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
			c.DBUser, c.DBPass, c.DBHost, port, c.DBName)
	case DriverSQLite:
		return c.DBName + ".db"
	default:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPass, c.DBName, port, c.DBSSLMode)
	}
}
