package service

import (
	"context"
	"errors"

	"humbleop/internal/models"
	"humbleop/internal/repository"

	"gorm.io/gorm"
)

type VoteService struct {
	voteRepo    repository.VoteRepository
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository

	evaluateBadges func(username string)
}

type CastVoteInput struct {
	PostID    string
	Voter     string
	Candidate string
	CommentID *uint
}

func NewVoteService(
	voteRepo repository.VoteRepository,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *VoteService {
	return &VoteService{
		voteRepo:    voteRepo,
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// SetBadgeEvaluator wires the fire-and-forget badge trigger.
func (s *VoteService) SetBadgeEvaluator(fn func(username string)) {
	s.evaluateBadges = fn
}

// CastVote records a ballot for a candidate who has argued on the post.
// Re-casting replaces the voter's previous ballot.
func (s *VoteService) CastVote(ctx context.Context, in CastVoteInput) (*models.Vote, error) {
	if in.Candidate == "" {
		return nil, models.NewValidationError("Candidate is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}
	if post.HasWinner() {
		return nil, models.NewPreconditionError("Voting has closed for this post")
	}

	hasCommented, err := s.commentRepo.HasCommented(ctx, in.PostID, in.Candidate)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !hasCommented {
		return nil, models.NewValidationError("Candidate has not commented on this post")
	}

	vote := &models.Vote{
		PostID:    in.PostID,
		Voter:     in.Voter,
		Candidate: in.Candidate,
		CommentID: in.CommentID,
	}
	if err := s.voteRepo.Cast(ctx, vote); err != nil {
		return nil, models.NewInternalError(err)
	}

	if s.evaluateBadges != nil {
		go s.evaluateBadges(in.Voter)
	}

	return vote, nil
}

// WithdrawVote removes the voter's ballot so it can be re-cast.
func (s *VoteService) WithdrawVote(ctx context.Context, postID, voter string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	if post.HasWinner() {
		return models.NewPreconditionError("Voting has closed for this post")
	}

	if err := s.voteRepo.Withdraw(ctx, postID, voter); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Vote", voter)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetTally returns current per-candidate vote counts for a post.
func (s *VoteService) GetTally(ctx context.Context, postID string) (map[string]int, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	return s.voteRepo.TallyByPost(ctx, postID)
}
