package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"humbleop/internal/config"
	"humbleop/internal/models"
	"humbleop/internal/observability"
	"humbleop/internal/repository"
	"humbleop/internal/scheduler"

	"gorm.io/gorm"
)

// DuelNotifier publishes lifecycle events to interested listeners.
type DuelNotifier interface {
	DuelEvent(ctx context.Context, postID, event string, fields map[string]interface{})
}

// FlagResult reports the outcome of a flag submission.
type FlagResult struct {
	Switched  bool    `json:"switched"`
	OldWinner *string `json:"old_winner,omitempty"`
	NewWinner *string `json:"new_winner,omitempty"`
}

// DuelOutcome is the winner/second pair announced when a duel is set up.
type DuelOutcome struct {
	Winner       string  `json:"winner"`
	Second       *string `json:"second,omitempty"`
	InitialVotes int     `json:"initial_votes"`
}

// DuelService owns every legal transition of a post's duel fields. It is the
// only writer of winner, second, initial_votes, started, postponed, the
// deadlines and the completion flags. Scheduler-fired callbacks and
// request-fired operations are serialized per post.
type DuelService struct {
	postRepo     repository.PostRepository
	voteRepo     repository.VoteRepository
	commentRepo  repository.CommentRepository
	reactionRepo repository.ReactionRepository

	rules    config.DuelRules
	sched    scheduler.Scheduler
	notifier DuelNotifier
	logger   *slog.Logger

	// evaluateBadges runs asynchronously; losing an award on crash is
	// acceptable, badges are re-derived from counts on the next trigger.
	evaluateBadges func(username string)

	locks sync.Map // postID -> *sync.Mutex
}

// NewDuelService creates the lifecycle controller.
func NewDuelService(
	postRepo repository.PostRepository,
	voteRepo repository.VoteRepository,
	commentRepo repository.CommentRepository,
	reactionRepo repository.ReactionRepository,
	rules config.DuelRules,
	sched scheduler.Scheduler,
	notifier DuelNotifier,
	logger *slog.Logger,
) *DuelService {
	return &DuelService{
		postRepo:     postRepo,
		voteRepo:     voteRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		rules:        rules,
		sched:        sched,
		notifier:     notifier,
		logger:       logger,
	}
}

// SetBadgeEvaluator wires the fire-and-forget badge trigger.
func (s *DuelService) SetBadgeEvaluator(fn func(username string)) {
	s.evaluateBadges = fn
}

// lockPost serializes all transitions for one post. Scheduler jobs and HTTP
// requests both read-modify-write the same record; without this two
// concurrent transitions can interleave and corrupt winner/second/postponed.
func (s *DuelService) lockPost(postID string) func() {
	v, _ := s.locks.LoadOrStore(postID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// OpenVoting stamps the voting deadline on a fresh post and arms the
// deadline job. Called once at post creation.
func (s *DuelService) OpenVoting(ctx context.Context, post *models.Post) error {
	deadline := time.Now().Add(s.rules.VotingWindow)
	post.VotingDeadline = &deadline
	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.NewInternalError(err)
	}
	s.sched.Schedule(scheduler.JobVotingDeadline, post.ID, deadline)
	return nil
}

// OnVotingDeadline closes the voting window: tally, clamp, announce winner.
// Scheduler-fired, so every failure path is a logged no-op.
func (s *DuelService) OnVotingDeadline(ctx context.Context, postID string) {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		s.logger.Warn("voting deadline fired for missing post", "post_id", postID)
		return
	}
	if post.Completed || post.HasWinner() {
		return
	}

	comments, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		s.logger.Error("voting deadline: comment count failed", "post_id", postID, "error", err)
		return
	}
	counts, err := s.voteRepo.TallyByPost(ctx, postID)
	if err != nil {
		s.logger.Error("voting deadline: tally failed", "post_id", postID, "error", err)
		return
	}
	if comments == 0 || len(counts) == 0 {
		s.logger.Info("voting deadline passed without participation", "post_id", postID)
		return
	}

	result := TallyVotes(counts)
	if result == nil {
		return
	}

	post.Winner = &result.Winner
	post.Second = result.Second
	post.InitialVotes = ClampInitialVotes(result.WinnerVotes, s.rules.MinInitialVotes, s.rules.MaxInitialVotes)
	if err := s.postRepo.Update(ctx, post); err != nil {
		s.logger.Error("voting deadline: save failed", "post_id", postID, "error", err)
		return
	}

	observability.RecordDuelTransition("winner_determined")
	s.notifyDuel(ctx, post, "winner_determined", map[string]interface{}{
		"winner":        result.Winner,
		"initial_votes": post.InitialVotes,
	})
	s.triggerBadges(result.Winner)

	s.logger.Info("winner determined",
		"post_id", postID,
		"winner", result.Winner,
		"initial_votes", post.InitialVotes,
	)
}

/// ForceStart bypasses the voting deadline: tally now, start now. Requires at
// least one comment and one vote.
func (s *DuelService) ForceStart(ctx context.Context, postID string) (*DuelOutcome, error) {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Completed {
		return nil, models.NewConflictError("Duel is already completed")
	}
	if post.Started {
		return nil, models.NewConflictError("Duel has already started")
	}

	comments, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comments == 0 {
		return nil, models.NewPreconditionError("Cannot start a duel with no comments")
	}

	counts, err := s.voteRepo.TallyByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	result := TallyVotes(counts)
	if result == nil {
		return nil, models.NewPreconditionError("Cannot start a duel with no votes")
	}

	now := time.Now()
	post.Winner = &result.Winner
	post.Second = result.Second
	post.InitialVotes = ClampInitialVotes(result.WinnerVotes, s.rules.MinInitialVotes, s.rules.MaxInitialVotes)
	post.Started = true
	post.Postponed = false
	post.DuelStartTime = &now
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.sched.Schedule(scheduler.JobDuelTimeout, postID, now.Add(s.rules.TimeoutInitial))

	observability.RecordDuelTransition("force_started")
	s.notifyDuel(ctx, post, "duel_started", map[string]interface{}{
		"winner": result.Winner,
	})
	s.triggerBadges(result.Winner)

	s.logger.Info("duel force-started",
		"post_id", postID,
		"winner", result.Winner,
		"initial_votes", post.InitialVotes,
	)

	return &DuelOutcome{
		Winner:       result.Winner,
		Second:       result.Second,
		InitialVotes: post.InitialVotes,
	}, nil
}

// ScheduleStart lets a participant pick the official start time.
func (s *DuelService) ScheduleStart(ctx context.Context, postID, actor string, at time.Time) error {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if !post.HasWinner() {
		return models.NewPreconditionError("No winner has been determined yet")
	}
	if post.Completed {
		return models.NewConflictError("Duel is already completed")
	}
	if post.Started {
		return models.NewConflictError("Duel has already started")
	}
	if !post.IsParticipant(actor) {
		return models.NewUnauthorizedError("Only duel participants can schedule the start")
	}
	if !at.After(time.Now()) {
		return models.NewValidationError("Start time must be in the future")
	}

	post.DuelStartTime = &at
	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.NewInternalError(err)
	}

	s.sched.Schedule(scheduler.JobOfficialStart, postID, at)
	s.logger.Info("duel start scheduled", "post_id", postID, "at", at, "by", actor)
	return nil
}

// OnScheduledStart fires at the participant-chosen time. No tally re-run;
// just flips the post into the started state.
func (s *DuelService) OnScheduledStart(ctx context.Context, postID string) {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		s.logger.Warn("scheduled start fired for missing post", "post_id", postID)
		return
	}
	if post.Completed || post.Started || !post.HasWinner() {
		return
	}

	post.Started = true
	post.Postponed = false
	if err := s.postRepo.Update(ctx, post); err != nil {
		s.logger.Error("scheduled start: save failed", "post_id", postID, "error", err)
		return
	}

	observability.RecordDuelTransition("started")
	s.notifyDuel(ctx, post, "duel_started", map[string]interface{}{
		"winner": derefStr(post.Winner),
	})
	s.logger.Info("duel started on schedule", "post_id", postID)
}

// OnDuelTimeout runs the two-stage enforcement cycle against a winner who
// never starts the duel: first a postponement grace period, then escalation
// to the runner-up, repeating indefinitely.
func (s *DuelService) OnDuelTimeout(ctx context.Context, postID string) {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		s.logger.Warn("duel timeout fired for missing post", "post_id", postID)
		return
	}
	if post.Completed || !post.HasWinner() {
		return
	}
	if post.Started {
		// Stale fire, the duel is underway.
		return
	}

	if !post.Postponed {
		post.Postponed = true
		if err := s.postRepo.Update(ctx, post); err != nil {
			s.logger.Error("duel timeout: save failed", "post_id", postID, "error", err)
			return
		}
		s.sched.Schedule(scheduler.JobDuelTimeout, postID, time.Now().Add(s.rules.TimeoutPostpone))

		observability.RecordDuelTransition("postponed")
		s.notifyDuel(ctx, post, "duel_postponed", map[string]interface{}{
			"winner": derefStr(post.Winner),
		})
		s.logger.Info("duel postponed", "post_id", postID, "winner", derefStr(post.Winner))
		return
	}

	if post.Second == nil {
		// Nobody to escalate to. Halt the cycle rather than clearing the
		// winner; a manual or scheduled start can still revive the duel.
		s.logger.Warn("duel timeout escalation halted: no runner-up", "post_id", postID)
		return
	}

	oldWinner := derefStr(post.Winner)
	post.Winner = post.Second
	post.Postponed = false
	post.Started = false
	if err := s.postRepo.Update(ctx, post); err != nil {
		s.logger.Error("duel timeout: escalation save failed", "post_id", postID, "error", err)
		return
	}
	s.sched.Schedule(scheduler.JobDuelTimeout, postID, time.Now().Add(s.rules.TimeoutRetry))

	observability.RecordDuelTransition("escalated")
	s.notifyDuel(ctx, post, "duel_escalated", map[string]interface{}{
		"old_winner": oldWinner,
		"new_winner": derefStr(post.Winner),
	})
	s.logger.Info("duel escalated to runner-up",
		"post_id", postID,
		"old_winner", oldWinner,
		"new_winner", derefStr(post.Winner),
	)
}

// SubmitFlag persists the flag row, then runs arbitration against the
// current counters.
func (s *DuelService) SubmitFlag(ctx context.Context, postID, user string) (*FlagResult, error) {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.HasWinner() {
		return nil, models.NewPreconditionError("No winner to flag yet")
	}
	if post.Completed {
		return nil, models.NewConflictError("Duel is already completed")
	}

	created, err := s.reactionRepo.Flag(ctx, postID, user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !created {
		return nil, models.NewConflictError("You have already flagged this duel")
	}

	likes, err := s.reactionRepo.CountLikes(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	flags, err := s.reactionRepo.CountFlags(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	verdict := Arbitrate(ArbitrationInput{
		InitialVotes: post.InitialVotes,
		Likes:        int(likes),
		Flags:        int(flags),
		HasSecond:    post.Second != nil,
	}, s.rules)

	if !verdict.Swap {
		return &FlagResult{Switched: false}, nil
	}

	oldWinner := derefStr(post.Winner)
	post.Winner = post.Second
	post.Started = false
	post.Postponed = false
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	// Likes and flags were sentiment about the deposed winner.
	if err := s.reactionRepo.ClearForPost(ctx, postID); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.sched.Schedule(scheduler.JobDuelTimeout, postID, time.Now().Add(s.rules.TimeoutInitial))

	observability.RecordDuelTransition("arbitration_swap")
	s.notifyDuel(ctx, post, "winner_swapped", map[string]interface{}{
		"old_winner": oldWinner,
		"new_winner": derefStr(post.Winner),
		"flags":      flags,
	})
	s.logger.Info("arbitration swapped winner",
		"post_id", postID,
		"old_winner", oldWinner,
		"new_winner", derefStr(post.Winner),
		"flag_ratio", verdict.FlagRatio,
		"net_score", verdict.NetScore,
	)

	newWinner := derefStr(post.Winner)
	return &FlagResult{
		Switched:  true,
		OldWinner: &oldWinner,
		NewWinner: &newWinner,
	}, nil
}

// Like records approval of the current outcome.
func (s *DuelService) Like(ctx context.Context, postID, user string) error {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if !post.HasWinner() {
		return models.NewPreconditionError("No winner to like yet")
	}
	if post.Completed {
		return models.NewConflictError("Duel is already completed")
	}

	created, err := s.reactionRepo.Like(ctx, postID, user)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !created {
		return models.NewConflictError("You have already liked this duel")
	}
	return nil
}

// AcknowledgeCompletion records one participant's sign-off. The duel
// completes when both the author and the standing winner have acknowledged.
// Completion is monotonic.
func (s *DuelService) AcknowledgeCompletion(ctx context.Context, postID, actor string) (*models.Post, error) {
	unlock := s.lockPost(postID)
	defer unlock()

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.Started {
		return nil, models.NewPreconditionError("Duel has not started yet")
	}
	if post.Completed {
		return nil, models.NewConflictError("Duel is already completed")
	}

	isAuthor := actor == post.Author
	isWinner := post.Winner != nil && *post.Winner == actor
	if !isAuthor && !isWinner {
		return nil, models.NewUnauthorizedError("Only the author or the winner can complete the duel")
	}

	if isAuthor {
		post.CompletedByAuthor = true
	}
	if isWinner {
		post.CompletedByWinner = true
	}
	if post.CompletedByAuthor && post.CompletedByWinner {
		post.Completed = true
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	if post.Completed {
		// A completed duel has no pending transitions left to fire.
		s.sched.Cancel(scheduler.JobOfficialStart, postID)
		s.sched.Cancel(scheduler.JobDuelTimeout, postID)
		observability.RecordDuelTransition("completed")
		s.notifyDuel(ctx, post, "duel_completed", map[string]interface{}{
			"winner": derefStr(post.Winner),
		})
		s.triggerBadges(derefStr(post.Winner))
		s.triggerBadges(post.Author)
		s.logger.Info("duel completed", "post_id", postID, "winner", derefStr(post.Winner))
	}

	return post, nil
}

// RearmPendingJobs re-schedules jobs for unfinished duels after a restart.
// Past fire times run immediately; callbacks re-validate state so the worst
// case is a harmless no-op.
func (s *DuelService) RearmPendingJobs(ctx context.Context) error {
	posts, err := s.postRepo.ListPendingDuels(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, post := range posts {
		switch {
		case !post.HasWinner() && post.VotingDeadline != nil:
			s.sched.Schedule(scheduler.JobVotingDeadline, post.ID, *post.VotingDeadline)
		case post.HasWinner() && !post.Started:
			if post.DuelStartTime != nil && post.DuelStartTime.After(now) {
				s.sched.Schedule(scheduler.JobOfficialStart, post.ID, *post.DuelStartTime)
			}
			s.sched.Schedule(scheduler.JobDuelTimeout, post.ID, now.Add(s.rules.TimeoutRetry))
		}
	}

	s.logger.Info("re-armed pending duel jobs", "posts", len(posts))
	return nil
}

func (s *DuelService) getPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *DuelService) notifyDuel(ctx context.Context, post *models.Post, event string, fields map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.DuelEvent(ctx, post.ID, event, fields)
}

func (s *DuelService) triggerBadges(username string) {
	if s.evaluateBadges == nil || username == "" {
		return
	}
	go s.evaluateBadges(username)
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
