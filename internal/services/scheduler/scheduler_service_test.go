package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJob_Validation(t *testing.T) {
	s := NewService(arbor.NewLogger())
	noop := func(ctx context.Context) error { return nil }

	assert.Error(t, s.RegisterJob("brief", "not a cron", "", false, noop))
	assert.Error(t, s.RegisterJob("brief", "30 6 * * 1-5", "", false, noop), "five fields are rejected")

	require.NoError(t, s.RegisterJob("brief", "0 30 6 * * 1-5", "morning briefing", false, noop))
	assert.Error(t, s.RegisterJob("brief", "0 30 6 * * 1-5", "", false, noop), "duplicate name")
}

func TestRunNow_RecordsStatus(t *testing.T) {
	s := NewService(arbor.NewLogger())
	fail := true
	require.NoError(t, s.RegisterJob("brief", "0 30 6 * * 1-5", "", false, func(ctx context.Context) error {
		if fail {
			return errors.New("upstream down")
		}
		return nil
	}))

	require.EqualError(t, s.RunNow("brief"), "upstream down")
	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "upstream down", jobs[0].LastError)
	assert.Equal(t, 1, jobs[0].Runs)
	assert.NotNil(t, jobs[0].LastRun)

	fail = false
	require.NoError(t, s.RunNow("brief"))
	jobs = s.Jobs()
	assert.Empty(t, jobs[0].LastError)
	assert.Equal(t, 2, jobs[0].Runs)

	assert.Error(t, s.RunNow("missing"))
}

func TestRunNow_SkipsOverlappingRun(t *testing.T) {
	s := NewService(arbor.NewLogger())
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, s.RegisterJob("brief", "0 30 6 * * 1-5", "", false, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.RunNow("brief") }()
	<-started

	assert.ErrorIs(t, s.RunNow("brief"), ErrJobRunning)
	assert.True(t, s.Jobs()[0].IsRunning)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, s.Jobs()[0].Runs)
}

func TestRunNow_RecoversPanic(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("brief", "0 30 6 * * 1-5", "", false, func(ctx context.Context) error {
		panic("boom")
	}))

	err := s.RunNow("brief")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked: boom")
	assert.False(t, s.Jobs()[0].IsRunning)
}

func TestStartStop_AutoStartAndCancel(t *testing.T) {
	s := NewService(arbor.NewLogger())
	var calls int32
	canceled := make(chan struct{})
	require.NoError(t, s.RegisterJob("brief", "0 30 6 * * 1-5", "", true, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	}))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 10*time.Millisecond)
	assert.NotNil(t, s.Jobs()[0].NextRun)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	<-canceled
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx), "second stop is a no-op")
}
