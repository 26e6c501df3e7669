package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleDelay(t *testing.T) {
	s := DefaultSchedule()

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{name: "first attempt", attempt: 1, want: 60 * time.Second},
		{name: "second attempt", attempt: 2, want: 300 * time.Second},
		{name: "third attempt", attempt: 3, want: 1800 * time.Second},
		{name: "beyond the table", attempt: 4, want: 3600 * time.Second},
		{name: "far beyond the table", attempt: 100, want: 3600 * time.Second},
		{name: "zero attempt", attempt: 0, want: 3600 * time.Second},
		{name: "negative attempt", attempt: -1, want: 3600 * time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Delay(tc.attempt))
		})
	}
}

func TestScheduleMonotonic(t *testing.T) {
	s := DefaultSchedule()
	for attempt := 1; attempt < len(s.Steps); attempt++ {
		assert.LessOrEqual(t, s.Delay(attempt), s.Delay(attempt+1),
			"delay must be non-decreasing between attempts %d and %d", attempt, attempt+1)
	}
}

func TestExponentialDelay(t *testing.T) {
	e := &Exponential{Initial: 10 * time.Second, Max: 2 * time.Minute}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{3, 40 * time.Second},
		{4, 80 * time.Second},
		{5, 2 * time.Minute}, // capped
		{60, 2 * time.Minute},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, e.Delay(tc.attempt), "attempt %d", tc.attempt)
	}
}
