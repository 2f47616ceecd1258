package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string
	Environment          string
	Database             DatabaseConfig
	Redis                RedisConfig
	Payments             PaymentsConfig
	API                  APIConfig
	LogLevel             string
	PaymentWebhookSecret string // PAYMENT_WEBHOOK_SECRET: auth for POST /webhooks/payment from the payment provider
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

type RedisConfig struct {
	Addr     string // empty disables the tracking cache
	Password string
}

// PaymentsConfig is used to call the payment provider for payment links
type PaymentsConfig struct {
	BaseURL   string // e.g. http://payments:6000; empty means payment links are not generated
	AccessKey string // PAYMENTS_ACCESS_KEY
}

type APIConfig struct {
	KeyHashSalt string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set plain env vars
	_ = godotenv.Load(".env")

	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:          getEnvOrViper("DB_HOST", "localhost"),
			Port:          getEnvOrViper("DB_PORT", "5432"),
			User:          getEnvOrViper("DB_USER", "postgres"),
			Password:      getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:        getEnvOrViper("DB_NAME", "laundryapi"),
			SSLMode:       getEnvOrViper("DB_SSLMODE", "disable"),
			MigrationsDir: getEnvOrViper("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
		},
		Payments: PaymentsConfig{
			BaseURL:   strings.TrimSpace(getEnvOrViper("PAYMENTS_URL", "")),
			AccessKey: strings.TrimSpace(getEnvOrViper("PAYMENTS_ACCESS_KEY", "")),
		},
		API: APIConfig{
			KeyHashSalt: getEnvOrViper("API_KEY_HASH_SALT", "default-salt-change-in-production"),
		},
		LogLevel:             getEnvOrViper("LOG_LEVEL", "info"),
		PaymentWebhookSecret: strings.TrimSpace(getEnvOrViper("PAYMENT_WEBHOOK_SECRET", "")),
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
