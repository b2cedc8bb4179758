package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"humbleop/internal/models"
	"humbleop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	urlPattern = regexp.MustCompile(`https?://\S+`)
	tagPattern = regexp.MustCompile(`#(\w{2,30})\b`)

	imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	videoHosts      = []string{"youtube.com", "youtu.be", "vimeo.com"}
)

type PostService struct {
	postRepo repository.PostRepository
	duel     *DuelService

	// evaluateBadges runs asynchronously, same contract as in DuelService.
	evaluateBadges func(username string)
}

type CreatePostInput struct {
	ID     string
	Author string
	Body   string
}

func NewPostService(postRepo repository.PostRepository, duel *DuelService) *PostService {
	return &PostService{postRepo: postRepo, duel: duel}
}

// SetBadgeEvaluator wires the fire-and-forget badge trigger.
func (s *PostService) SetBadgeEvaluator(fn func(username string)) {
	s.evaluateBadges = fn
}

// CreatePost persists a new debate post, extracts media references and tags
// from the body, and opens its voting window.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxBodyLen = 20000

	if in.Author == "" {
		return nil, models.NewValidationError("Author is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 20000 characters)")
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	post := &models.Post{
		ID:        id,
		Author:    in.Author,
		Body:      in.Body,
		MediaURLs: ExtractMediaURLs(in.Body),
		Tags:      extractTagModels(in.Body),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.duel.OpenVoting(ctx, post); err != nil {
		return nil, err
	}

	if s.evaluateBadges != nil {
		go s.evaluateBadges(in.Author)
	}

	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	limit = clampLimit(limit)
	return s.postRepo.List(ctx, limit, offset)
}

func (s *PostService) ListPostsByAuthor(ctx context.Context, author string, limit, offset int) ([]*models.Post, error) {
	limit = clampLimit(limit)
	return s.postRepo.ListByAuthor(ctx, author, limit, offset)
}

func (s *PostService) ListPostsByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Post, error) {
	limit = clampLimit(limit)
	return s.postRepo.ListByTag(ctx, strings.ToLower(tag), limit, offset)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// ExtractMediaURLs pulls embeddable links out of a post body: direct image
// links by extension, plus links to known video hosts.
func ExtractMediaURLs(body string) []string {
	matches := urlPattern.FindAllString(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var urls []string
	for _, m := range matches {
		if !isMediaURL(m) {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}
	return urls
}

func isMediaURL(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, host := range videoHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// ExtractTags pulls #tags (2-30 word characters, lowercased) out of a post
// body, deduplicated in order of first appearance.
func ExtractTags(body string) []string {
	matches := tagPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags
}

func extractTagModels(body string) []models.Tag {
	names := ExtractTags(body)
	if len(names) == 0 {
		return nil
	}
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, models.Tag{Name: name})
	}
	return tags
}
