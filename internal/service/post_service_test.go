package service

import (
	"context"
	"strings"
	"testing"

	"humbleop/internal/repository"
	"humbleop/internal/scheduler"
	"humbleop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostFixture(t *testing.T) (*PostService, *duelFixture) {
	t.Helper()
	f := newDuelFixture(t)
	return NewPostService(f.posts, f.svc), f
}

func TestPostService_CreatePostOpensVoting(t *testing.T) {
	svc, f := newPostFixture(t)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		Author: "author",
		Body:   "resolved: #golang beats #rust https://example.com/proof.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)

	saved := f.reload(t, post.ID)
	require.NotNil(t, saved.VotingDeadline)
	assert.Equal(t, []string{"https://example.com/proof.png"}, saved.MediaURLs)

	call := f.sched.last()
	require.NotNil(t, call)
	assert.Equal(t, scheduler.JobVotingDeadline, call.Job)
	assert.Equal(t, post.ID, call.PostID)
}

func TestPostService_CreatePostValidation(t *testing.T) {
	svc, _ := newPostFixture(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{Body: "no author"})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.CreatePost(ctx, CreatePostInput{Author: "author", Body: "   "})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.CreatePost(ctx, CreatePostInput{Author: "author", Body: strings.Repeat("x", 20001)})
	requireAppError(t, err, "VALIDATION_ERROR")
}

func TestPostService_ListPostsByTag(t *testing.T) {
	svc, _ := newPostFixture(t)
	ctx := context.Background()

	tagged, err := svc.CreatePost(ctx, CreatePostInput{Author: "author", Body: "about #Golang today"})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, CreatePostInput{Author: "author", Body: "nothing to see"})
	require.NoError(t, err)

	// Tag lookup is case-insensitive; tags are stored lowercased.
	posts, err := svc.ListPostsByTag(ctx, "GOLANG", 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, tagged.ID, posts[0].ID)
}

func TestPostService_GetPostNotFound(t *testing.T) {
	svc, _ := newPostFixture(t)
	_, err := svc.GetPost(context.Background(), "missing")
	requireAppError(t, err, "NOT_FOUND")
}

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "none", body: "plain text", want: nil},
		{name: "basic", body: "a #tag in text", want: []string{"tag"}},
		{name: "lowercased and deduped", body: "#Go #go #GO #rust", want: []string{"go", "rust"}},
		{name: "too short", body: "#a is ignored", want: nil},
		{name: "order of first appearance", body: "#beta #alpha #beta", want: []string{"beta", "alpha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTags(tt.body))
		})
	}
}

func TestExtractMediaURLs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "no links", body: "no links here", want: nil},
		{
			name: "image by extension",
			body: "see https://a.example/x.png and https://a.example/X.JPG",
			want: []string{"https://a.example/x.png", "https://a.example/X.JPG"},
		},
		{
			name: "video hosts",
			body: "watch https://youtube.com/watch?v=abc or https://youtu.be/abc or https://vimeo.com/123",
			want: []string{"https://youtube.com/watch?v=abc", "https://youtu.be/abc", "https://vimeo.com/123"},
		},
		{
			name: "direct video files are not embeddable",
			body: "raw file http://b.example/y.mp4 is skipped",
			want: nil,
		},
		{
			name: "plain pages are skipped",
			body: "source https://c.example/page",
			want: nil,
		},
		{
			name: "deduped in order",
			body: "https://a.example/x.png then https://youtu.be/abc then https://a.example/x.png",
			want: []string{"https://a.example/x.png", "https://youtu.be/abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMediaURLs(tt.body))
		})
	}
}

func TestPostService_GetPostRepoFailure(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db), nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// A broken connection is an internal failure, not a missing post.
	_, err = svc.GetPost(context.Background(), "p1")
	requireAppError(t, err, "INTERNAL_ERROR")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0))
	assert.Equal(t, 20, clampLimit(-5))
	assert.Equal(t, 35, clampLimit(35))
	assert.Equal(t, 100, clampLimit(1000))
}
