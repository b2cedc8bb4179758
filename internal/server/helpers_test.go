package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"humbleop/internal/config"
	"humbleop/internal/models"
	"humbleop/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:      "8361",
		JWTSecret: "test-secret-for-handler-tests-32ch!",
		Env:       "test",

		MinInitialVotes:    50,
		MaxInitialVotes:    500,
		FlagRatioThreshold: 0.60,
		MinFlagsRatio:      0.05,
		NetScoreRatio:      0.40,

		DuelTimeoutInitialHours:  2,
		DuelTimeoutPostponeHours: 6,
		DuelTimeoutRetryHours:    2,
		VotingWindowHours:        24,

		InsightfulThreshold:        20,
		SerialVoterThreshold:       10,
		ConsistentDebaterThreshold: 10,
	}
}

// newTestServer wires a Server against an in-memory database with no Redis.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.OpenTestDB(t)
	s, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)
	t.Cleanup(s.sched.Shutdown)
	return s
}

// asUser injects an authenticated username, standing in for AuthRequired.
func asUser(username string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("username", username)
		return c.Next()
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: models.NewNotFoundError("Post", "x"), status: http.StatusNotFound},
		{name: "validation", err: models.NewValidationError("bad"), status: http.StatusBadRequest},
		{name: "precondition", err: models.NewPreconditionError("not yet"), status: http.StatusBadRequest},
		{name: "conflict", err: models.NewConflictError("again"), status: http.StatusConflict},
		{name: "unauthorized", err: models.NewUnauthorizedError("no"), status: http.StatusForbidden},
		{name: "internal", err: models.NewInternalError(errors.New("boom")), status: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusForError(tt.err))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		name string
		url  string
		want Pagination
	}{
		{name: "defaults", url: "/", want: Pagination{Limit: 20, Offset: 0}},
		{name: "explicit", url: "/?limit=5&offset=10", want: Pagination{Limit: 5, Offset: 10}},
		{name: "clamped", url: "/?limit=5000&offset=-2", want: Pagination{Limit: 100, Offset: 0}},
		{name: "zero limit", url: "/?limit=0", want: Pagination{Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.want, got)
		})
	}
}
