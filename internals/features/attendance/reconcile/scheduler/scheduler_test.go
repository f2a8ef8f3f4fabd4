package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadirku_backend/internals/features/attendance/reconcile/service"
)

type stubRunner struct {
	calls atomic.Int32
	delay time.Duration
	sum   service.Summary
	err   error
}

func (r *stubRunner) Run(ctx context.Context) (service.Summary, error) {
	r.calls.Add(1)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return r.sum, ctx.Err()
		}
	}
	return r.sum, r.err
}

func TestTriggerNowReturnsSummary(t *testing.T) {
	runner := &stubRunner{sum: service.Summary{Processed: 3, Skipped: 1}}
	s := New(runner, time.Hour, time.Minute)

	sum, ran, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 3, sum.Processed)
	assert.Equal(t, 1, sum.Skipped)

	st := s.Status()
	require.NotNil(t, st.LastRunAt)
	assert.Equal(t, 3, st.LastSummary.Processed)
}

func TestRunsNeverOverlap(t *testing.T) {
	runner := &stubRunner{delay: 150 * time.Millisecond}
	s := New(runner, time.Hour, time.Minute)

	var wg sync.WaitGroup
	var ranCount atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ran, _ := s.TriggerNow(context.Background())
			if ran {
				ranCount.Add(1)
			}
		}()
	}
	wg.Wait()

	// hanya satu trigger yang benar-benar jalan, sisanya ditolak flag run-aktif
	assert.EqualValues(t, 1, ranCount.Load())
	assert.EqualValues(t, 1, runner.calls.Load())
}

func TestPeriodicRuns(t *testing.T) {
	runner := &stubRunner{}
	s := New(runner, 20*time.Millisecond, time.Minute)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestStopHaltsLoop(t *testing.T) {
	runner := &stubRunner{}
	s := New(runner, 20*time.Millisecond, time.Minute)
	s.Start()

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	n := runner.calls.Load()
	time.Sleep(80 * time.Millisecond)
	assert.LessOrEqual(t, runner.calls.Load(), n+1) // maksimal satu tick yang sudah in-flight
}

func TestTriggerNotBoundByCallerDeadline(t *testing.T) {
	runner := &stubRunner{delay: 50 * time.Millisecond, sum: service.Summary{Processed: 2}}
	s := New(runner, time.Hour, time.Minute)

	// context request yang sudah mati tidak boleh memotong run — budget run
	// cuma MaxRunTime
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, ran, err := s.TriggerNow(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, sum.Processed)
	require.NotNil(t, s.Status().LastRunAt)
}

func TestMaxRunTimeEnforced(t *testing.T) {
	runner := &stubRunner{delay: time.Second}
	s := New(runner, time.Hour, 30*time.Millisecond)

	start := time.Now()
	_, ran, err := s.TriggerNow(context.Background())
	assert.True(t, ran)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// run gagal tidak menggeser watermark
	assert.Nil(t, s.Status().LastRunAt)
}
