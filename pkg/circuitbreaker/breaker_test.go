package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(true, 3, time.Minute, time.Minute, nil)

	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
	assert.True(t, cb.RecordFailure(), "third failure must trip a threshold-3 breaker")
	assert.True(t, cb.IsOpen())
}

func TestBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker(false, 1, time.Minute, time.Minute, nil)

	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())
}

func TestBreakerSuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(true, 2, time.Minute, time.Minute, nil)

	cb.RecordFailure()
	cb.RecordSuccess()
	assert.False(t, cb.RecordFailure(), "failure count must restart after a success")

	failures, _, _, _ := cb.GetState()
	assert.Equal(t, 1, failures)
}

func TestBreakerResetTimeout(t *testing.T) {
	cb := NewCircuitBreaker(true, 1, time.Minute, 10*time.Millisecond, nil)

	assert.True(t, cb.RecordFailure())
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen(), "breaker must close again after the reset timeout")
}

func TestBreakerManualReset(t *testing.T) {
	cb := NewCircuitBreaker(true, 1, time.Minute, time.Hour, nil)

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	cb.Reset()
	assert.False(t, cb.IsOpen())
}
