package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *TimerScheduler {
	t.Helper()
	s := NewTimerScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Shutdown)
	return s
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestTimerScheduler_FiresRegisteredHandler(t *testing.T) {
	s := newTestScheduler(t)

	var mu sync.Mutex
	var fired []string
	s.Register(JobDuelTimeout, func(_ context.Context, postID string) {
		mu.Lock()
		fired = append(fired, postID)
		mu.Unlock()
	})

	s.Schedule(JobDuelTimeout, "post-1", time.Now().Add(10*time.Millisecond))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, "handler did not fire")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"post-1"}, fired)
}

func TestTimerScheduler_PastDeadlineFiresImmediately(t *testing.T) {
	s := newTestScheduler(t)

	done := make(chan struct{})
	s.Register(JobVotingDeadline, func(_ context.Context, _ string) {
		close(done)
	})

	s.Schedule(JobVotingDeadline, "post-1", time.Now().Add(-time.Hour))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("past-deadline job did not fire")
	}
}

func TestTimerScheduler_RescheduleReplacesPendingTimer(t *testing.T) {
	s := newTestScheduler(t)

	var mu sync.Mutex
	count := 0
	s.Register(JobDuelTimeout, func(_ context.Context, _ string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	s.Schedule(JobDuelTimeout, "post-1", time.Now().Add(time.Hour))
	s.Schedule(JobDuelTimeout, "post-1", time.Now().Add(10*time.Millisecond))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 1
	}, "rescheduled job did not fire")

	// The original hour-away timer was replaced, so only one firing happens.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestTimerScheduler_CancelStopsPendingJob(t *testing.T) {
	s := newTestScheduler(t)

	var mu sync.Mutex
	count := 0
	s.Register(JobOfficialStart, func(_ context.Context, _ string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	s.Schedule(JobOfficialStart, "post-1", time.Now().Add(30*time.Millisecond))
	s.Cancel(JobOfficialStart, "post-1")

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, count)
}

func TestTimerScheduler_IndependentPostsBothFire(t *testing.T) {
	s := newTestScheduler(t)

	var mu sync.Mutex
	fired := make(map[string]int)
	s.Register(JobDuelTimeout, func(_ context.Context, postID string) {
		mu.Lock()
		fired[postID]++
		mu.Unlock()
	})

	s.Schedule(JobDuelTimeout, "post-1", time.Now().Add(10*time.Millisecond))
	s.Schedule(JobDuelTimeout, "post-2", time.Now().Add(10*time.Millisecond))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired["post-1"] == 1 && fired["post-2"] == 1
	}, "jobs for independent posts did not both fire")
}

func TestTimerScheduler_UnregisteredJobIsDropped(t *testing.T) {
	s := newTestScheduler(t)
	s.Schedule("unknown_job", "post-1", time.Now())
	time.Sleep(50 * time.Millisecond)
}

func TestTimerScheduler_HandlerPanicIsRecovered(t *testing.T) {
	s := newTestScheduler(t)

	done := make(chan struct{})
	s.Register(JobDuelTimeout, func(_ context.Context, postID string) {
		if postID == "boom" {
			panic("handler failure")
		}
		close(done)
	})

	s.Schedule(JobDuelTimeout, "boom", time.Now())
	s.Schedule(JobDuelTimeout, "post-2", time.Now().Add(20*time.Millisecond))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler stopped processing after a handler panic")
	}
}

func TestTimerScheduler_ShutdownStopsPendingTimers(t *testing.T) {
	s := NewTimerScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var mu sync.Mutex
	count := 0
	s.Register(JobDuelTimeout, func(_ context.Context, _ string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	s.Schedule(JobDuelTimeout, "post-1", time.Now().Add(30*time.Millisecond))
	s.Shutdown()

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, count)
}
