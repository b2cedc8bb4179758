// Package scheduler provides in-process one-shot job scheduling for the duel
// lifecycle. Delivery is at-least-once: handlers must tolerate duplicate and
// stale firings by re-reading current state before acting.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"humbleop/internal/observability"
)

// Job kinds dispatched by the scheduler.
const (
	JobVotingDeadline = "voting_deadline"
	JobOfficialStart  = "official_start"
	JobDuelTimeout    = "duel_timeout"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// Handler processes a fired job for a post.
type Handler func(ctx context.Context, postID string)

// Scheduler arms one-shot jobs. Scheduling the same (job, postID) pair again
// replaces the pending timer; Cancel drops a pending timer if one exists.
type Scheduler interface {
	Schedule(job, postID string, at time.Time)
	Cancel(job, postID string)
}

type timerKey struct {
	job    string
	postID string
}

type firedJob struct {
	job    string
	postID string
}

// TimerScheduler runs jobs off time.AfterFunc timers through a small worker
// pool so slow handlers never block the timer goroutines.
type TimerScheduler struct {
	logger *slog.Logger

	mu       sync.Mutex
	timers   map[timerKey]*time.Timer
	handlers map[string]Handler

	jobs chan firedJob
	wg   sync.WaitGroup

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewTimerScheduler creates a scheduler and starts its workers.
func NewTimerScheduler(logger *slog.Logger) *TimerScheduler {
	s := &TimerScheduler{
		logger:   logger,
		timers:   make(map[timerKey]*time.Timer),
		handlers: make(map[string]Handler),
		jobs:     make(chan firedJob, defaultQueueSize),
		stopCh:   make(chan struct{}),
	}

	for i := 0; i < defaultWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// Register binds a handler to a job kind. Jobs of an unregistered kind are
// dropped with a warning when they fire.
func (s *TimerScheduler) Register(job string, h Handler) {
	s.mu.Lock()
	s.handlers[job] = h
	s.mu.Unlock()
}

// Schedule arms a one-shot timer for (job, postID) at the given time,
// replacing any pending timer for the same pair. Times in the past fire
// immediately.
func (s *TimerScheduler) Schedule(job, postID string, at time.Time) {
	key := timerKey{job: job, postID: postID}
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.fire(key)
	})
	s.mu.Unlock()

	s.logger.Debug("job scheduled", "job", job, "post_id", postID, "at", at)
}

// Cancel stops a pending timer for (job, postID) if one exists. A job that
// already fired is not recalled; handlers absorb stale firings.
func (s *TimerScheduler) Cancel(job, postID string) {
	key := timerKey{job: job, postID: postID}
	s.mu.Lock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()
}

func (s *TimerScheduler) fire(key timerKey) {
	s.mu.Lock()
	delete(s.timers, key)
	s.mu.Unlock()

	select {
	case <-s.stopCh:
	case s.jobs <- firedJob{job: key.job, postID: key.postID}:
	}
}

func (s *TimerScheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case j := <-s.jobs:
			s.run(j)
		}
	}
}

func (s *TimerScheduler) run(j firedJob) {
	s.mu.Lock()
	h := s.handlers[j.job]
	s.mu.Unlock()

	if h == nil {
		s.logger.Warn("no handler registered for job", "job", j.job, "post_id", j.postID)
		return
	}

	observability.RecordJobFire(j.job)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job handler panicked", "job", j.job, "post_id", j.postID, "panic", r)
		}
	}()

	h(context.Background(), j.postID)
}

// Shutdown stops all pending timers and waits for in-flight handlers to
// finish.
func (s *TimerScheduler) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		for key, t := range s.timers {
			t.Stop()
			delete(s.timers, key)
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
}
