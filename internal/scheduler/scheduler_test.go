package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsBadExpression(t *testing.T) {
	s := NewScheduler(context.Background(), func(context.Context) error { return nil }, zerolog.Nop())
	_, err := s.Register("not a cron line")
	assert.Error(t, err)

	// five fields lack the seconds field
	_, err = s.Register("30 18 * * 1-5")
	assert.Error(t, err)
}

func TestRegisterNextActivation(t *testing.T) {
	s := NewScheduler(context.Background(), func(context.Context) error { return nil }, zerolog.Nop())
	id, err := s.Register("0 30 18 * * 1-5")
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	next := s.Next(id)
	require.False(t, next.IsZero())
	assert.Equal(t, 18, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())
}

func TestRunNowLogsFailures(t *testing.T) {
	var calls int32
	s := NewScheduler(context.Background(), func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("load: no such directory")
	}, zerolog.Nop())

	s.RunNow()
	s.RunNow()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRunSkippedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	s := NewScheduler(ctx, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, zerolog.Nop())

	cancel()
	s.RunNow()
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestScheduledRun(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewScheduler(context.Background(), func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, zerolog.Nop())
	_, err := s.Register("* * * * * *")
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestStopWaitsForTriggeredRun(t *testing.T) {
	started := make(chan struct{})
	var finished int32
	s := NewScheduler(context.Background(), func(context.Context) error {
		close(started)
		time.Sleep(200 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
		return nil
	}, zerolog.Nop())
	s.Start()

	s.Trigger()
	<-started
	s.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished))
}
