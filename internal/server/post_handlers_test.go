package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestCreatePost(t *testing.T) {
	s := newTestServer(t)

	app := fiber.New()
	app.Use(asUser("alice"))
	app.Post("/posts", s.CreatePost)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"body": "resolved: #testing matters"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing body",
			body:           map[string]string{"body": "   "},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/posts", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCreatePost_OpensVotingWindow(t *testing.T) {
	s := newTestServer(t)

	app := fiber.New()
	app.Use(asUser("alice"))
	app.Post("/posts", s.CreatePost)
	app.Get("/posts/:id", s.GetPost)

	resp := postJSON(t, app, "/posts", map[string]string{"body": "resolved: ship it"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)
	require.NotEmpty(t, created.ID)

	getResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/"+created.ID, nil), -1)
	require.NoError(t, err)

	var post struct {
		Author         string  `json:"author"`
		VotingDeadline *string `json:"voting_deadline"`
	}
	decodeJSON(t, getResp, &post)
	assert.Equal(t, "alice", post.Author)
	assert.NotNil(t, post.VotingDeadline)
}

func TestGetPost_NotFound(t *testing.T) {
	s := newTestServer(t)

	app := fiber.New()
	app.Get("/posts/:id", s.GetPost)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/missing", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletePost_AuthorOnly(t *testing.T) {
	s := newTestServer(t)

	authorApp := fiber.New()
	authorApp.Use(asUser("alice"))
	authorApp.Post("/posts", s.CreatePost)
	authorApp.Delete("/posts/:id", s.DeletePost)

	resp := postJSON(t, authorApp, "/posts", map[string]string{"body": "to be deleted"})
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &created)

	strangerApp := fiber.New()
	strangerApp.Use(asUser("mallory"))
	strangerApp.Delete("/posts/:id", s.DeletePost)

	delResp, err := strangerApp.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+created.ID, nil), -1)
	require.NoError(t, err)
	defer func() { _ = delResp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, delResp.StatusCode)

	delResp2, err := authorApp.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+created.ID, nil), -1)
	require.NoError(t, err)
	defer func() { _ = delResp2.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, delResp2.StatusCode)
}
