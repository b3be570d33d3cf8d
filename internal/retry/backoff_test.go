package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_NextDelay_WithoutJitter(t *testing.T) {
	b := NewExponentialBackoff(5, WithInitialDelay(100*time.Millisecond), WithJitter(0))

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_NextDelay_Capped(t *testing.T) {
	b := NewExponentialBackoff(100,
		WithInitialDelay(time.Second),
		WithMultiplier(3.0),
		WithMaxDelay(time.Minute),
		WithJitter(0),
	)
	for attempt := 0; attempt <= 100; attempt++ {
		assert.LessOrEqual(t, b.NextDelay(attempt), time.Minute, "attempt %d", attempt)
	}
	assert.Equal(t, time.Minute, b.NextDelay(10))
}

func TestExponentialBackoff_NextDelay_Jitter(t *testing.T) {
	tests := []struct {
		random float64
		want   time.Duration
	}{
		{0.0, 90 * time.Millisecond},
		{0.5, 100 * time.Millisecond},
		{1.0, 110 * time.Millisecond},
	}
	for _, tt := range tests {
		r := tt.random
		b := NewExponentialBackoff(3, WithJitter(0.1), WithRandom(func() float64 { return r }))
		assert.Equal(t, tt.want, b.NextDelay(0), "random %v", tt.random)
	}
}

func TestExponentialBackoff_MaxAttempts(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 5} {
		assert.Equal(t, n, NewExponentialBackoff(n).MaxAttempts())
	}
}
