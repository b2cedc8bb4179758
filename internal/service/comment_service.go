package service

import (
	"context"
	"errors"

	"humbleop/internal/models"
	"humbleop/internal/repository"

	"gorm.io/gorm"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository

	evaluateBadges func(username string)
}

type CreateCommentInput struct {
	PostID    string
	Commenter string
	Text      string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// SetBadgeEvaluator wires the fire-and-forget badge trigger.
func (s *CommentService) SetBadgeEvaluator(fn func(username string)) {
	s.evaluateBadges = fn
}

// CreateComment adds an argument to a debate. Before the duel starts every
// commenter gets exactly one argument; once the duel is underway, only the
// participants may add further remarks, marked is_duel.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const maxCommentLen = 10000

	if in.Text == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}
	if post.Completed {
		return nil, models.NewConflictError("Duel is already completed")
	}

	isDuel := false
	if post.Started {
		if !post.IsParticipant(in.Commenter) {
			return nil, models.NewPreconditionError("Only duel participants can comment after the duel starts")
		}
		isDuel = true
	} else {
		existing, countErr := s.commentRepo.CountNonDuelByCommenter(ctx, in.PostID, in.Commenter)
		if countErr != nil {
			return nil, models.NewInternalError(countErr)
		}
		if existing > 0 {
			return nil, models.NewConflictError("You have already commented on this post")
		}
	}

	comment := &models.Comment{
		PostID:    in.PostID,
		Commenter: in.Commenter,
		Text:      in.Text,
		IsDuel:    isDuel,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	if s.evaluateBadges != nil {
		go s.evaluateBadges(in.Commenter)
	}

	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID string, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	limit = clampLimit(limit)
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}
