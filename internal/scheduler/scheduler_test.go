package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhadevv/anichin/internal/testutil"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(testutil.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestRegisterTask(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.RegisterTask(TaskConfig{ID: "b", Name: "B", Cron: "*/15 * * * *", Func: noop}))
	require.NoError(t, s.RegisterTask(TaskConfig{ID: "a", Name: "A", Cron: "0 0 * * *", Func: noop}))

	err := s.RegisterTask(TaskConfig{ID: "a", Name: "A", Cron: "0 0 * * *", Func: noop})
	assert.ErrorContains(t, err, "already registered")

	err = s.RegisterTask(TaskConfig{ID: "bad", Name: "Bad", Cron: "not a cron", Func: noop})
	assert.ErrorContains(t, err, `failed to create job for task "bad"`)

	err = s.RegisterTask(TaskConfig{ID: "nil", Name: "Nil", Cron: "0 0 * * *"})
	assert.ErrorContains(t, err, "has no function")

	tasks := s.ListTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler(t)
	var runs atomic.Int32
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "probe",
		Name: "Probe",
		Cron: "0 0 * * *",
		Func: func(context.Context) error {
			runs.Add(1)
			return errors.New("upstream down")
		},
	}))
	require.NoError(t, s.Start())

	require.NoError(t, s.RunNow("probe"))
	require.Eventually(t, func() bool {
		info, err := s.GetTask("probe")
		return err == nil && info.LastRun != nil
	}, time.Second, 5*time.Millisecond)

	info, err := s.GetTask("probe")
	require.NoError(t, err)
	assert.Equal(t, "upstream down", info.LastError)
	assert.False(t, info.Running)
	assert.NotNil(t, info.NextRun)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 1, info.Runs)
	assert.Equal(t, 1, info.Failures)

	assert.ErrorIs(t, s.RunNow("missing"), ErrTaskNotFound)
	_, err = s.GetTask("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRunNow_AlreadyRunning(t *testing.T) {
	s := newTestScheduler(t)
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "block",
		Name: "Block",
		Cron: "0 0 * * *",
		Func: func(context.Context) error {
			close(started)
			<-release
			return nil
		},
	}))

	require.NoError(t, s.RunNow("block"))
	err := s.RunNow("block")
	assert.ErrorIs(t, err, ErrTaskRunning)

	<-started
	close(release)
	require.Eventually(t, func() bool {
		info, err := s.GetTask("block")
		return err == nil && !info.Running && info.Runs == 1
	}, time.Second, 5*time.Millisecond)

	info, err := s.GetTask("block")
	require.NoError(t, err)
	assert.Zero(t, info.Failures)
	assert.Empty(t, info.LastError)
}

func TestRunOnStartWithTimeout(t *testing.T) {
	s := newTestScheduler(t)
	done := make(chan error, 1)
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:         "slow",
		Name:       "Slow",
		Cron:       "0 0 * * *",
		RunOnStart: true,
		Timeout:    10 * time.Millisecond,
		Func: func(ctx context.Context) error {
			<-ctx.Done()
			done <- ctx.Err()
			return ctx.Err()
		},
	}))
	require.NoError(t, s.Start())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("task did not run on start")
	}
}
