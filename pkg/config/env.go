package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/provisionhq/provision-retrier/pkg/logger"
)

const (
	// DefaultPollInterval defines the default poll interval in seconds
	DefaultPollInterval = 30

	// DefaultMaxAttempts defines how many executions a job gets before it is abandoned
	DefaultMaxAttempts = 3

	// DefaultBatchSize defines the maximum number of due jobs claimed per tick
	DefaultBatchSize = 10

	// DefaultBackoffSchedule defines the delay staircase in seconds, one step per attempt
	DefaultBackoffSchedule = "60,300,1800"

	// DefaultBackoffFallback defines the delay in seconds for attempts beyond the schedule
	DefaultBackoffFallback = 3600

	// DefaultExecTimeout defines the per-attempt executor timeout in seconds
	DefaultExecTimeout = 60

	// DefaultRedisAddr defines the default Redis address for the job store
	DefaultRedisAddr = "localhost:6379"

	// DefaultQueueKey defines the Redis key prefix for the delayed job schedule
	DefaultQueueKey = "provision:retry"

	// DefaultAuditStream defines the Redis stream the audit trail is appended to
	DefaultAuditStream = "provision:audit"

	// DefaultMetricsPort defines the default port for the health and metrics server
	DefaultMetricsPort = "8081"

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker in minutes
	DefaultCircuitBreakerWindow = 5

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker in minutes
	DefaultCircuitBreakerReset = 15
)

// GetEnvPollInterval returns the poll interval in seconds from environment variables
func GetEnvPollInterval() (time.Duration, error) {
	val := os.Getenv("POLL_INTERVAL")
	if val == "" {
		return time.Duration(DefaultPollInterval) * time.Second, nil
	}
	interval, err := strconv.Atoi(val)
	if err != nil || interval <= 0 {
		return 0, fmt.Errorf("invalid POLL_INTERVAL value: %s, must be a positive number of seconds", val)
	}
	return time.Duration(interval) * time.Second, nil
}

// GetEnvMaxAttempts returns the attempt cap from environment variables
func GetEnvMaxAttempts() (int, error) {
	val := os.Getenv("MAX_ATTEMPTS")
	if val == "" {
		return DefaultMaxAttempts, nil
	}
	attempts, err := strconv.Atoi(val)
	if err != nil || attempts < 1 {
		return 0, fmt.Errorf("invalid MAX_ATTEMPTS value: %s, must be a positive number", val)
	}
	return attempts, nil
}

// GetEnvBatchSize returns the per-tick claim limit from environment variables
func GetEnvBatchSize() (int, error) {
	val := os.Getenv("BATCH_SIZE")
	if val == "" {
		return DefaultBatchSize, nil
	}
	size, err := strconv.Atoi(val)
	if err != nil || size < 1 {
		return 0, fmt.Errorf("invalid BATCH_SIZE value: %s, must be a positive number", val)
	}
	return size, nil
}

// GetEnvBackoffSchedule returns the backoff staircase from environment variables,
// a comma-separated list of delays in seconds, one step per attempt number.
func GetEnvBackoffSchedule() ([]time.Duration, error) {
	val := os.Getenv("BACKOFF_SCHEDULE")
	if val == "" {
		val = DefaultBackoffSchedule
	}
	parts := strings.Split(val, ",")
	steps := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		seconds, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid BACKOFF_SCHEDULE entry: %q, must be a positive number of seconds", part)
		}
		steps = append(steps, time.Duration(seconds)*time.Second)
	}
	return steps, nil
}

// GetEnvBackoffFallback returns the delay in seconds used for attempts beyond the schedule
func GetEnvBackoffFallback() (time.Duration, error) {
	val := os.Getenv("BACKOFF_FALLBACK")
	if val == "" {
		return time.Duration(DefaultBackoffFallback) * time.Second, nil
	}
	seconds, err := strconv.Atoi(val)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid BACKOFF_FALLBACK value: %s, must be a positive number of seconds", val)
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvExecTimeout returns the per-attempt executor timeout from environment variables
func GetEnvExecTimeout() (time.Duration, error) {
	val := os.Getenv("EXEC_TIMEOUT")
	if val == "" {
		return time.Duration(DefaultExecTimeout) * time.Second, nil
	}
	seconds, err := strconv.Atoi(val)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid EXEC_TIMEOUT value: %s, must be a positive number of seconds", val)
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvRedisAddr returns the Redis address from environment variables
func GetEnvRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return DefaultRedisAddr
}

// GetEnvRedisDB returns the Redis database number from environment variables
func GetEnvRedisDB() (int, error) {
	val := os.Getenv("REDIS_DB")
	if val == "" {
		return 0, nil
	}
	db, err := strconv.Atoi(val)
	if err != nil || db < 0 {
		return 0, fmt.Errorf("invalid REDIS_DB value: %s, must be a non-negative number", val)
	}
	return db, nil
}

// GetEnvQueueKey returns the job store key from environment variables
func GetEnvQueueKey() string {
	if key := os.Getenv("QUEUE_KEY"); key != "" {
		return key
	}
	return DefaultQueueKey
}

// GetEnvAuditStream returns the audit stream key from environment variables
func GetEnvAuditStream() string {
	if key := os.Getenv("AUDIT_STREAM"); key != "" {
		return key
	}
	return DefaultAuditStream
}

// GetEnvMetricsPort returns the metrics server port from environment variables
func GetEnvMetricsPort() (string, error) {
	val := os.Getenv("METRICS_PORT")
	if val == "" {
		return DefaultMetricsPort, nil
	}
	port, err := strconv.Atoi(val)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid port number", val)
	}
	return val, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled
func GetEnvCircuitBreakerEnabled() (bool, error) {
	val := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if val == "" {
		return DefaultCircuitBreakerEnabled, nil
	}
	enabled, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be true or false", val)
	}
	return enabled, nil
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker failure threshold
func GetEnvCircuitBreakerThreshold() (int, error) {
	val := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if val == "" {
		return DefaultCircuitBreakerThreshold, nil
	}
	threshold, err := strconv.Atoi(val)
	if err != nil || threshold < 1 {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be a positive number", val)
	}
	return threshold, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker failure window in minutes
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	val := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if val == "" {
		return time.Duration(DefaultCircuitBreakerWindow) * time.Minute, nil
	}
	minutes, err := strconv.Atoi(val)
	if err != nil || minutes < 1 {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be a positive number of minutes", val)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout in minutes
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	val := os.Getenv("CIRCUIT_BREAKER_RESET")
	if val == "" {
		return time.Duration(DefaultCircuitBreakerReset) * time.Minute, nil
	}
	minutes, err := strconv.Atoi(val)
	if err != nil || minutes < 1 {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be a positive number of minutes", val)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	val := os.Getenv("LOG_LEVEL")
	switch strings.ToLower(val) {
	case "":
		return logger.InfoLevel, nil
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be debug, info, notice or error", val)
	}
}

// GetEnvLogColoring returns whether log coloring is enabled
func GetEnvLogColoring() (bool, error) {
	val := os.Getenv("LOG_COLORING")
	if val == "" {
		return false, nil
	}
	coloring, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be true or false", val)
	}
	return coloring, nil
}
