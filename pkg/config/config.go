package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/provisionhq/provision-retrier/pkg/logger"
)

// Config holds the configuration for the retrier service
type Config struct {
	PollInterval    time.Duration
	MaxAttempts     int
	BatchSize       int
	BackoffSchedule []time.Duration
	BackoffFallback time.Duration
	ExecTimeout     time.Duration

	ProvisionEndpoint string

	Redis       RedisConfig
	QueueKey    string
	AuditStream string

	MetricsPort string

	CircuitBreaker CircuitBreakerConfig
	LoggerConfig   LoggerConfig
}

// RedisConfig holds the connection settings for the job store and audit stream
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	pollInterval, err := GetEnvPollInterval()
	if err != nil {
		return nil, err
	}

	maxAttempts, err := GetEnvMaxAttempts()
	if err != nil {
		return nil, err
	}

	batchSize, err := GetEnvBatchSize()
	if err != nil {
		return nil, err
	}

	schedule, err := GetEnvBackoffSchedule()
	if err != nil {
		return nil, err
	}

	fallback, err := GetEnvBackoffFallback()
	if err != nil {
		return nil, err
	}

	execTimeout, err := GetEnvExecTimeout()
	if err != nil {
		return nil, err
	}

	redisDB, err := GetEnvRedisDB()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		PollInterval:      pollInterval,
		MaxAttempts:       maxAttempts,
		BatchSize:         batchSize,
		BackoffSchedule:   schedule,
		BackoffFallback:   fallback,
		ExecTimeout:       execTimeout,
		ProvisionEndpoint: os.Getenv("PROVISION_ENDPOINT"),
		Redis: RedisConfig{
			Addr:     GetEnvRedisAddr(),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		QueueKey:    GetEnvQueueKey(),
		AuditStream: GetEnvAuditStream(),
		MetricsPort: metricsPort,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	// Validate required environment variables
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.ProvisionEndpoint == "" {
		return fmt.Errorf("PROVISION_ENDPOINT environment variable is required")
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", cfg.BatchSize)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %v", cfg.PollInterval)
	}
	if len(cfg.BackoffSchedule) == 0 {
		return fmt.Errorf("BACKOFF_SCHEDULE must contain at least one step")
	}
	return nil
}
