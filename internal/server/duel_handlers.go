package server

import (
	"time"

	"humbleop/internal/models"

	"github.com/gofiber/fiber/v2"
)

// StartDuel handles POST /api/posts/:id/duel/start. The author may cut the
// voting window short and begin the duel with the current tally.
func (s *Server) StartDuel(c *fiber.Ctx) error {
	postID := c.Params("id")

	post, err := s.postService.GetPost(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if post.Author != currentUsername(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Only the author can start the duel"))
	}

	outcome, err := s.duelService.ForceStart(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(outcome)
}

// ScheduleDuelStart handles POST /api/posts/:id/duel/schedule
func (s *Server) ScheduleDuelStart(c *fiber.Ctx) error {
	var req struct {
		StartTime time.Time `json:"start_time"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.StartTime.IsZero() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("start_time is required"))
	}

	err := s.duelService.ScheduleStart(c.Context(), c.Params("id"), currentUsername(c), req.StartTime)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Duel start scheduled",
		"start_time": req.StartTime,
	})
}

// LikeDuel handles POST /api/posts/:id/duel/like
func (s *Server) LikeDuel(c *fiber.Ctx) error {
	if err := s.duelService.Like(c.Context(), c.Params("id"), currentUsername(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Outcome liked"})
}

// FlagDuel handles POST /api/posts/:id/duel/flag
func (s *Server) FlagDuel(c *fiber.Ctx) error {
	result, err := s.duelService.SubmitFlag(c.Context(), c.Params("id"), currentUsername(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// CompleteDuel handles POST /api/posts/:id/duel/complete
func (s *Server) CompleteDuel(c *fiber.Ctx) error {
	post, err := s.duelService.AcknowledgeCompletion(c.Context(), c.Params("id"), currentUsername(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}
