// Package backoff provides pluggable delay policies for retry scheduling.
// Policies are stateless and safe for concurrent use.
package backoff

import (
	"math"
	"time"
)

// Policy computes the delay before a retry attempt.
type Policy interface {
	// Delay returns how long to wait before executing attempt n (1-indexed).
	// It must be total: any attempt number yields a finite delay.
	Delay(attempt int) time.Duration
}

// Schedule is a hand-tuned escalating staircase: the delay for attempt n is
// Steps[n-1], and any attempt beyond the table gets Fallback. The step values
// are chosen to match the expected recovery profile of the downstream system
// rather than a closed-form exponential.
type Schedule struct {
	Steps    []time.Duration
	Fallback time.Duration
}

// DefaultSchedule returns the standard staircase: 1 minute, 5 minutes,
// 30 minutes, then a 1 hour fallback for anything past the table.
func DefaultSchedule() *Schedule {
	return &Schedule{
		Steps:    []time.Duration{60 * time.Second, 300 * time.Second, 1800 * time.Second},
		Fallback: 3600 * time.Second,
	}
}

// Delay returns the staircase value for the attempt, or the fallback when the
// attempt is outside the table. Attempt numbers below 1 also get the fallback
// so a caller bug cannot produce a zero or negative delay.
func (s *Schedule) Delay(attempt int) time.Duration {
	if attempt < 1 || attempt > len(s.Steps) {
		return s.Fallback
	}
	return s.Steps[attempt-1]
}

// Exponential doubles the delay each attempt: Initial * 2^(attempt-1), capped
// at Max. It is the drop-in replacement for Schedule once a formula-based
// policy is wanted; nothing in the scheduler depends on which one is wired.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// Delay returns Initial * 2^(attempt-1), capped at Max.
func (e *Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(e.Initial) * math.Pow(2, float64(attempt-1)))
	if e.Max > 0 && (d > e.Max || d < 0) {
		return e.Max
	}
	return d
}
