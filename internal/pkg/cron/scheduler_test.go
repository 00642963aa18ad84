package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTrigger(t *testing.T) {
	s := NewScheduler(time.UTC)

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	next := s.nextTrigger(now, "18:30")
	assert.Equal(t, time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC), next)

	// Already past today's trigger: roll to tomorrow.
	next = s.nextTrigger(time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC), "18:30")
	assert.Equal(t, time.Date(2025, 6, 3, 18, 30, 0, 0, time.UTC), next)

	// Exactly at the trigger counts as passed.
	next = s.nextTrigger(time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC), "18:30")
	assert.Equal(t, time.Date(2025, 6, 3, 18, 30, 0, 0, time.UTC), next)
}

func TestAddDailyJobValidatesTime(t *testing.T) {
	s := NewScheduler(time.UTC)
	err := s.AddDailyJob("bad", "25:99", time.Minute, func(ctx context.Context) error { return nil })
	require.Error(t, err)

	err = s.AddDailyJob("good", "18:30", time.Minute, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
}

func TestIntervalJobRunsAndStops(t *testing.T) {
	s := NewScheduler(time.UTC)

	var runs atomic.Int32
	s.AddJob("tick", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	time.Sleep(70 * time.Millisecond)
	s.Stop()

	// Immediate run plus at least two ticks.
	assert.GreaterOrEqual(t, runs.Load(), int32(3))

	final := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, final, runs.Load())
}

func TestRunOnce(t *testing.T) {
	s := NewScheduler(time.UTC)

	var runs atomic.Int32
	s.AddJob("a", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.AddJob("b", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, int32(2), runs.Load())
}
