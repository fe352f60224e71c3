package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
}

type ServerConfig struct {
	Port          string        `mapstructure:"SERVER_PORT"`
	Host          string        `mapstructure:"SERVER_HOST"`
	Env           string        `mapstructure:"ENV"`
	ReadTimeout   time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout  time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	DocumentToken string        `mapstructure:"DOCUMENT_BEARER_TOKEN"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	Timezone        string `mapstructure:"SCHEDULER_TIMEZONE"`
	InvoiceCron     string `mapstructure:"SCHEDULER_INVOICE_CRON"`
	DebitCron       string `mapstructure:"SCHEDULER_DEBIT_CRON"`
	StatusSweepCron string `mapstructure:"SCHEDULER_STATUS_SWEEP_CRON"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	CoverageHorizonMonths int           `mapstructure:"COVERAGE_HORIZON_MONTHS"`
	SplitEpsilon          string        `mapstructure:"SPLIT_EPSILON"`
	FocusLineCoverage     bool          `mapstructure:"FOCUS_LINE_COVERAGE"`
	OverviewCacheTTL      time.Duration `mapstructure:"OVERVIEW_CACHE_TTL"`
	IdempotencyTTL        time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Indian/Mayotte")
	viper.SetDefault("SCHEDULER_INVOICE_CRON", "0 5 0 1 * *")
	viper.SetDefault("SCHEDULER_DEBIT_CRON", "0 30 0 1 * *")
	viper.SetDefault("SCHEDULER_STATUS_SWEEP_CRON", "0 10 0 * * *")
	viper.SetDefault("COVERAGE_HORIZON_MONTHS", 6)
	viper.SetDefault("SPLIT_EPSILON", "0.01")
	viper.SetDefault("FOCUS_LINE_COVERAGE", false)
	viper.SetDefault("OVERVIEW_CACHE_TTL", "30s")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.CoverageHorizonMonths <= 0 {
		return fmt.Errorf("COVERAGE_HORIZON_MONTHS must be greater than 0")
	}

	epsilon, err := decimal.NewFromString(c.Business.SplitEpsilon)
	if err != nil {
		return fmt.Errorf("SPLIT_EPSILON must be a valid decimal: %w", err)
	}
	if epsilon.Sign() <= 0 {
		return fmt.Errorf("SPLIT_EPSILON must be positive")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is not a valid timezone: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetSplitEpsilon returns the tender split tolerance as decimal
func (c *Config) GetSplitEpsilon() decimal.Decimal {
	epsilon, _ := decimal.NewFromString(c.Business.SplitEpsilon)
	return epsilon
}

// GetSchedulerLocation returns the scheduler timezone
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, _ := time.LoadLocation(c.Scheduler.Timezone)
	return loc
}
