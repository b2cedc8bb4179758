package service

import (
	"context"
	"log/slog"
	"time"

	"humbleop/internal/models"
	"humbleop/internal/observability"
	"humbleop/internal/repository"
)

// Badge names. Awards are idempotent; evaluation re-derives everything from
// counts, so a missed trigger self-heals on the next one.
const (
	BadgeFirstBlood        = "First blood"
	BadgeFirstResponder    = "First Responder"
	BadgeBaptismOfFire     = "Baptism of Fire"
	BadgePopularDebater    = "Popular Debater"
	BadgeInsightful        = "Insightful"
	BadgeSerialVoter       = "Serial Voter"
	BadgeConsistentDebater = "Consistent Debater"
	BadgeGreatDebater      = "The Great Debater"
)

const (
	popularDebaterVotes = 10
	greatDebaterWins    = 100
)

type BadgeService struct {
	badgeRepo   repository.BadgeRepository
	postRepo    repository.PostRepository
	voteRepo    repository.VoteRepository
	commentRepo repository.CommentRepository

	insightfulThreshold        int
	serialVoterThreshold       int
	consistentDebaterThreshold int

	logger *slog.Logger
}

func NewBadgeService(
	badgeRepo repository.BadgeRepository,
	postRepo repository.PostRepository,
	voteRepo repository.VoteRepository,
	commentRepo repository.CommentRepository,
	insightfulThreshold, serialVoterThreshold, consistentDebaterThreshold int,
	logger *slog.Logger,
) *BadgeService {
	return &BadgeService{
		badgeRepo:                  badgeRepo,
		postRepo:                   postRepo,
		voteRepo:                   voteRepo,
		commentRepo:                commentRepo,
		insightfulThreshold:        insightfulThreshold,
		serialVoterThreshold:       serialVoterThreshold,
		consistentDebaterThreshold: consistentDebaterThreshold,
		logger:                     logger,
	}
}

// Evaluate re-checks every badge rule for the user and awards anything newly
// earned.
func (s *BadgeService) Evaluate(ctx context.Context, username string) error {
	posts, err := s.postRepo.CountByAuthor(ctx, username)
	if err != nil {
		return err
	}
	comments, err := s.commentRepo.CountByCommenter(ctx, username)
	if err != nil {
		return err
	}
	votesCast, err := s.voteRepo.CountByVoter(ctx, username)
	if err != nil {
		return err
	}
	votesReceived, err := s.voteRepo.CountForCandidate(ctx, username)
	if err != nil {
		return err
	}
	singlePostVotes, err := s.voteRepo.MaxVotesOnSinglePost(ctx, username)
	if err != nil {
		return err
	}
	wins, err := s.postRepo.CountCompletedWins(ctx, username)
	if err != nil {
		return err
	}
	participations, err := s.postRepo.CountParticipations(ctx, username)
	if err != nil {
		return err
	}

	checks := []struct {
		badge  string
		earned bool
	}{
		{BadgeFirstBlood, posts >= 1},
		{BadgeFirstResponder, comments >= 1},
		{BadgeBaptismOfFire, wins >= 1},
		{BadgePopularDebater, votesReceived >= popularDebaterVotes},
		{BadgeGreatDebater, wins >= greatDebaterWins},
		{BadgeInsightful, singlePostVotes >= int64(s.insightfulThreshold)},
		{BadgeSerialVoter, votesCast >= int64(s.serialVoterThreshold)},
		{BadgeConsistentDebater, participations >= int64(s.consistentDebaterThreshold)},
	}

	for _, check := range checks {
		if !check.earned {
			continue
		}
		granted, awardErr := s.badgeRepo.Award(ctx, username, check.badge)
		if awardErr != nil {
			return awardErr
		}
		if granted {
			observability.RecordBadgeAwarded(check.badge)
			s.logger.Info("badge awarded", "username", username, "badge", check.badge)
		}
	}

	return nil
}

// EvaluateAsync is the fire-and-forget entry point the lifecycle and content
// services trigger. Failures are logged, never surfaced.
func (s *BadgeService) EvaluateAsync(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Evaluate(ctx, username); err != nil {
		s.logger.Error("badge evaluation failed", "username", username, "error", err)
	}
}

func (s *BadgeService) ListBadges(ctx context.Context, username string) ([]*models.Badge, error) {
	return s.badgeRepo.ListByUser(ctx, username)
}
