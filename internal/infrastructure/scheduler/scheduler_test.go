package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{JobTimeout: time.Second, RetryAttempts: 2, RetryDelay: time.Millisecond}
}

func stop(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(testConfig(), zap.NewNop())
	noop := func(context.Context) error { return nil }

	assert.ErrorIs(t, s.Register(Task{Interval: time.Minute, Run: noop}), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Name: "zero", Run: noop}), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Name: "empty", Interval: time.Minute}), ErrInvalidTask)

	require.NoError(t, s.Register(Task{Name: "purge", Interval: time.Minute, Run: noop}))
	assert.ErrorIs(t, s.Register(Task{Name: "purge", Interval: time.Minute, Run: noop}), ErrDuplicateTask)

	st, ok := s.State("purge")
	require.True(t, ok)
	assert.Equal(t, RunStatusIdle, st.Status)

	require.NoError(t, s.Start(context.Background()))
	defer stop(t, s)
	assert.ErrorIs(t, s.Register(Task{Name: "late", Interval: time.Minute, Run: noop}), ErrSchedulerRunning)
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	s := NewScheduler(testConfig(), zap.NewNop())
	var calls atomic.Int32
	require.NoError(t, s.Register(Task{
		Name:     "tick",
		Interval: 20 * time.Millisecond,
		Run: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	stop(t, s)

	st, _ := s.State("tick")
	assert.Equal(t, RunStatusSuccess, st.Status)
	assert.GreaterOrEqual(t, st.Runs, 3)
	assert.Zero(t, st.Failures)
	assert.NotNil(t, st.LastEndedAt)
}

func TestScheduler_RetriesFailedRuns(t *testing.T) {
	t.Run("succeeds on a later attempt", func(t *testing.T) {
		s := NewScheduler(testConfig(), zap.NewNop())
		var calls atomic.Int32
		require.NoError(t, s.Register(Task{
			Name:     "flaky",
			Interval: time.Hour,
			Run: func(context.Context) error {
				if calls.Add(1) < 3 {
					return errors.New("database busy")
				}
				return nil
			},
		}))

		require.NoError(t, s.Start(context.Background()))
		defer stop(t, s)
		assert.Eventually(t, func() bool {
			st, _ := s.State("flaky")
			return st.Status == RunStatusSuccess
		}, 2*time.Second, 5*time.Millisecond)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		s := NewScheduler(testConfig(), zap.NewNop())
		var calls atomic.Int32
		require.NoError(t, s.Register(Task{
			Name:     "broken",
			Interval: time.Hour,
			Run: func(context.Context) error {
				calls.Add(1)
				return errors.New("permission denied")
			},
		}))

		require.NoError(t, s.Start(context.Background()))
		defer stop(t, s)
		assert.Eventually(t, func() bool {
			st, _ := s.State("broken")
			return st.Status == RunStatusFailed
		}, 2*time.Second, 5*time.Millisecond)

		st, _ := s.State("broken")
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, 1, st.Failures)
		assert.Equal(t, "permission denied", st.LastError)
	})
}

func TestScheduler_RunsUnderTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.JobTimeout = 10 * time.Millisecond
	cfg.RetryAttempts = 0
	s := NewScheduler(cfg, zap.NewNop())
	require.NoError(t, s.Register(Task{
		Name:     "slow",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	defer stop(t, s)
	assert.Eventually(t, func() bool {
		st, _ := s.State("slow")
		return st.Status == RunStatusFailed
	}, 2*time.Second, 5*time.Millisecond)

	st, _ := s.State("slow")
	assert.Equal(t, context.DeadlineExceeded.Error(), st.LastError)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(DefaultConfig(), zap.NewNop())
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	stop(t, s)
	stop(t, s)
}
