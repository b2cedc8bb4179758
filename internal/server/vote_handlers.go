package server

import (
	"humbleop/internal/models"
	"humbleop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CastVote handles POST /api/posts/:id/votes
func (s *Server) CastVote(c *fiber.Ctx) error {
	var req struct {
		Candidate string `json:"candidate"`
		CommentID *uint  `json:"comment_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	vote, err := s.voteService.CastVote(c.Context(), service.CastVoteInput{
		PostID:    c.Params("id"),
		Voter:     currentUsername(c),
		Candidate: req.Candidate,
		CommentID: req.CommentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(vote)
}

// WithdrawVote handles DELETE /api/posts/:id/votes
func (s *Server) WithdrawVote(c *fiber.Ctx) error {
	if err := s.voteService.WithdrawVote(c.Context(), c.Params("id"), currentUsername(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetTally handles GET /api/posts/:id/tally
func (s *Server) GetTally(c *fiber.Ctx) error {
	tally, err := s.voteService.GetTally(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"tally": tally})
}
