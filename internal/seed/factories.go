// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"humbleop/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions control factory behavior.
type SeedOptions struct {
	// DryRun skips all DB writes and assigns synthetic IDs instead.
	DryRun bool
	// SkipBcrypt stores a plaintext marker password instead of hashing.
	// Much faster when seeding thousands of users.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over the last N days.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999))
	user := &models.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		Bio:       gofakeit.Sentence(10),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.PasswordHash = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.PasswordHash = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a debate post struct but does not persist it.
// Useful for batching and for DryRun inspection.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	topic := debateTopics[rand.Intn(len(debateTopics))]
	body := fmt.Sprintf("Resolved: %s #%s", gofakeit.HipsterSentence(8), topic)

	post := &models.Post{
		ID:     uuid.NewString(),
		Author: author.Username,
		Body:   body,
		Tags:   []models.Tag{{Name: topic}},
	}

	// occasional media attachment
	if rand.Float32() < 0.3 {
		post.MediaURLs = []string{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		}
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := rand.Intn(maxDays)
	hoursBack := rand.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	deadline := post.CreatedAt.Add(24 * time.Hour)
	post.VotingDeadline = &deadline

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a debate post for the given author.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)

	if f.opts.DryRun {
		log.Printf("[dry-run] CreatePost: author=%s id=%s", post.Author, post.ID)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists an argument on the provided post by the provided
// commenter. Pass isDuel=true for in-duel remarks by participants.
func (f *Factory) CreateComment(commenter *models.User, post *models.Post, isDuel bool, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		Commenter: commenter.Username,
		Text:      gofakeit.Sentence(12),
		IsDuel:    isDuel,
		CreatedAt: post.CreatedAt.Add(time.Duration(rand.Intn(120)) * time.Minute),
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		log.Printf("[dry-run] CreateComment: post=%s commenter=%s", comment.PostID, comment.Commenter)
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateVote persists a ballot from voter for candidate on post.
func (f *Factory) CreateVote(voter *models.User, post *models.Post, candidate string) (*models.Vote, error) {
	vote := &models.Vote{
		PostID:    post.ID,
		Voter:     voter.Username,
		Candidate: candidate,
	}

	if f.opts.DryRun {
		f.nextID++
		vote.ID = f.nextID
		return vote, nil
	}

	if err := f.db.Create(vote).Error; err != nil {
		return nil, err
	}
	return vote, nil
}

// CreateLike persists approval of the announced outcome on post.
func (f *Factory) CreateLike(liker *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{
		PostID: post.ID,
		Liker:  liker.Username,
	}
	return f.db.Create(like).Error
}

// CreateFlag persists a protest against the announced outcome on post.
func (f *Factory) CreateFlag(flagger *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	flag := &models.Flag{
		PostID:  post.ID,
		Flagger: flagger.Username,
	}
	return f.db.Create(flag).Error
}

// CreateBadge persists a badge award for the given user.
func (f *Factory) CreateBadge(user *models.User, name string) error {
	if f.opts.DryRun {
		return nil
	}
	badge := &models.Badge{
		Username: user.Username,
		Name:     name,
	}
	return f.db.Create(badge).Error
}
