// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Flutterwave FlutterwaveConfig
	Tip         TipConfig
	Session     SessionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type FlutterwaveConfig struct {
	BaseURL     string
	Environment string
	RedirectURL string
	// Customization shown on the provider's payment page.
	PageTitle       string
	PageDescription string
	LogoURL         string
	// Fallback customer identity when neither the request nor the session
	// carries one.
	DefaultCustomerEmail string
	DefaultCustomerName  string
	Timeout              time.Duration
}

type TipConfig struct {
	// FeeRate is the platform's cut, applied once at tip creation.
	FeeRate  decimal.Decimal
	Currency string
	// MinWithdrawal gates the (external) creator payout surface; carried in
	// config so it is policy, not code.
	MinWithdrawal decimal.Decimal
}

type SessionConfig struct {
	TTL time.Duration
}

func Load() (*Config, error) {
	feeRate, err := decimal.NewFromString(getEnv("FEE_RATE", "0.05"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEE_RATE: %w", err)
	}

	minWithdrawal, err := decimal.NewFromString(getEnv("MIN_WITHDRAWAL", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_WITHDRAWAL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8030"),
			Env:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "tipkesho"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Flutterwave: FlutterwaveConfig{
			BaseURL:              getEnv("FLW_BASE_URL", "https://api.flutterwave.com/v3"),
			Environment:          getEnv("FLW_ENVIRONMENT", "sandbox"),
			RedirectURL:          getEnv("FLW_REDIRECT_URL", "https://tipkesho.com/tip/complete"),
			PageTitle:            getEnv("FLW_PAGE_TITLE", "TipKesho"),
			PageDescription:      getEnv("FLW_PAGE_DESCRIPTION", "Support your favourite creator"),
			LogoURL:              getEnv("FLW_LOGO_URL", "https://tipkesho.com/logo.png"),
			DefaultCustomerEmail: getEnv("FLW_DEFAULT_CUSTOMER_EMAIL", "supporter@tipkesho.com"),
			DefaultCustomerName:  getEnv("FLW_DEFAULT_CUSTOMER_NAME", "TipKesho Supporter"),
			Timeout:              getEnvDuration("FLW_TIMEOUT", 30*time.Second),
		},
		Tip: TipConfig{
			FeeRate:       feeRate,
			Currency:      getEnv("TIP_CURRENCY", "KES"),
			MinWithdrawal: minWithdrawal,
		},
		Session: SessionConfig{
			TTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
		},
	}

	return cfg, nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
