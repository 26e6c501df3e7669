package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provisionhq/provision-retrier/pkg/logger"
)

func TestGetEnvPollInterval(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{name: "default", value: "", want: 30 * time.Second},
		{name: "custom", value: "10", want: 10 * time.Second},
		{name: "not a number", value: "soon", wantErr: true},
		{name: "zero", value: "0", wantErr: true},
		{name: "negative", value: "-5", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("POLL_INTERVAL", tc.value)
			got, err := GetEnvPollInterval()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvBackoffSchedule(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []time.Duration
		wantErr bool
	}{
		{
			name:  "default staircase",
			value: "",
			want:  []time.Duration{60 * time.Second, 300 * time.Second, 1800 * time.Second},
		},
		{
			name:  "custom with spaces",
			value: "5, 10, 15",
			want:  []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second},
		},
		{name: "non-numeric entry", value: "60,soon", wantErr: true},
		{name: "zero entry", value: "60,0", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BACKOFF_SCHEDULE", tc.value)
			got, err := GetEnvBackoffSchedule()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvLogLevel(t *testing.T) {
	tests := []struct {
		value   string
		want    logger.Level
		wantErr bool
	}{
		{value: "", want: logger.InfoLevel},
		{value: "debug", want: logger.DebugLevel},
		{value: "NOTICE", want: logger.NoticeLevel},
		{value: "error", want: logger.ErrorLevel},
		{value: "loud", wantErr: true},
	}

	for _, tc := range tests {
		t.Run("value "+tc.value, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tc.value)
			got, err := GetEnvLogLevel()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PROVISION_ENDPOINT", "http://localhost:9000/provision")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 3600*time.Second, cfg.BackoffFallback)
	assert.Equal(t, "provision:retry", cfg.QueueKey)
	assert.Equal(t, "provision:audit", cfg.AuditStream)
	assert.Equal(t, "8081", cfg.MetricsPort)
	assert.True(t, cfg.CircuitBreaker.Enabled)
}

func TestLoadConfigRequiresEndpoint(t *testing.T) {
	t.Setenv("PROVISION_ENDPOINT", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVISION_ENDPOINT")
}
