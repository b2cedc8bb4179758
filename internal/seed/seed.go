package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"humbleop/internal/models"

	"gorm.io/gorm"
)

var debateTopics = []string{
	"golang", "rust", "python", "typescript", "databases", "kubernetes",
	"monoliths", "microservices", "tabs", "spaces", "vim", "emacs",
	"remote", "office", "agile", "waterfall", "ai", "crypto",
	"movies", "music", "gaming", "fitness", "food", "travel",
	"philosophy", "history", "science", "economics",
}

// Tags ensures the built-in debate topics exist so an empty instance still
// has something to browse.
func Tags(db *gorm.DB) error {
	for _, topic := range debateTopics {
		tag := models.Tag{Name: topic}
		if err := db.Where(models.Tag{Name: topic}).FirstOrCreate(&tag).Error; err != nil {
			return fmt.Errorf("failed to ensure built-in tag %s: %w", topic, err)
		}
	}
	return nil
}

// PhaseDistribution describes what fraction of seeded debates land in each
// lifecycle phase, in tenths (the four values must sum to 10).
type PhaseDistribution struct {
	Voting    int // voting window still open
	Scheduled int // winner determined, start scheduled
	Live      int // duel started, audience reacting
	Done      int // both parties acknowledged completion
}

var defaultDistribution = PhaseDistribution{Voting: 5, Scheduled: 2, Live: 2, Done: 1}

// PresetDistributions are named phase mixes selectable from the seeder CLI.
var PresetDistributions = map[string]PhaseDistribution{
	"fresh":   {Voting: 8, Scheduled: 2, Live: 0, Done: 0},
	"arena":   {Voting: 2, Scheduled: 2, Live: 5, Done: 1},
	"archive": {Voting: 1, Scheduled: 1, Live: 2, Done: 6},
}

// computeCounts splits total posts across the four lifecycle phases.
// Rounding leftovers go to the voting bucket.
func computeCounts(total int, d PhaseDistribution) (voting, scheduled, live, done int) {
	scheduled = total * d.Scheduled / 10
	live = total * d.Live / 10
	done = total * d.Done / 10
	voting = total - scheduled - live - done
	return voting, scheduled, live, done
}

// Seeder populates the database with realistic debate data.
type Seeder struct {
	db *gorm.DB
	f  *Factory
}

// NewSeeder creates a Seeder with default factory options.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, f: NewFactory(db, SeedOptions{MaxDays: 90})}
}

// ClearAll removes all seeded data. PostgreSQL only.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE badges, flags, likes, votes, comments, post_tags, posts, tags, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedDebaters creates count users with hashed demo passwords. A few
// well-known usernames are always included so the demo login works.
func (s *Seeder) SeedDebaters(count int) ([]*models.User, error) {
	log.Printf("🌱 Creating %d debaters...", count)
	users := make([]*models.User, 0, count)

	for _, name := range []string{"alice", "bob", "demo"} {
		if len(users) >= count {
			break
		}
		u, err := s.f.CreateUser(func(u *models.User) {
			u.Username = name
			u.Email = fmt.Sprintf("%s@example.com", name)
			u.Bio = "One of the OGs."
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create built-in user %s: %w", name, err)
		}
		users = append(users, u)
	}

	for i := len(users); i < count; i++ {
		u, err := s.f.CreateUser()
		if err != nil {
			log.Printf("failed to create user: %v", err)
			continue
		}
		users = append(users, u)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	log.Printf("✓ %d debaters created", len(users))
	return users, nil
}

// SeedDebates creates count posts spread across lifecycle phases per the
// given distribution, with arguments, ballots and audience reactions to
// match each phase.
func (s *Seeder) SeedDebates(users []*models.User, count int, d PhaseDistribution) error {
	if len(users) < 5 {
		return fmt.Errorf("need at least 5 users to seed debates, have %d", len(users))
	}

	voting, scheduled, live, done := computeCounts(count, d)
	log.Printf("🌱 Creating %d debates (voting=%d scheduled=%d live=%d done=%d)...",
		count, voting, scheduled, live, done)

	phases := make([]string, 0, count)
	for i := 0; i < voting; i++ {
		phases = append(phases, "voting")
	}
	for i := 0; i < scheduled; i++ {
		phases = append(phases, "scheduled")
	}
	for i := 0; i < live; i++ {
		phases = append(phases, "live")
	}
	for i := 0; i < done; i++ {
		phases = append(phases, "done")
	}

	for i, phase := range phases {
		if err := s.seedDebate(users, phase); err != nil {
			return fmt.Errorf("failed to seed debate %d (%s): %w", i, phase, err)
		}
		if i > 0 && i%100 == 0 {
			log.Printf("Created %d debates...", i)
		}
	}

	log.Printf("✓ %d debates created", len(phases))
	return nil
}

func (s *Seeder) seedDebate(users []*models.User, phase string) error {
	author := users[rand.Intn(len(users))]

	post, err := s.f.CreatePost(author)
	if err != nil {
		return err
	}

	// Pick 2-4 distinct commenters who are not the author.
	commenters := pickDistinct(users, 2+rand.Intn(3), author.Username)
	for _, c := range commenters {
		if _, err := s.f.CreateComment(c, post, false); err != nil {
			return err
		}
	}

	// Voters favor the first commenter so the winner is deterministic.
	voters := pickDistinct(users, 3+rand.Intn(5), author.Username)
	for i, v := range voters {
		candidate := commenters[0].Username
		if i%3 == 2 {
			candidate = commenters[1].Username
		}
		if _, err := s.f.CreateVote(v, post, candidate); err != nil {
			return err
		}
	}

	if phase == "voting" {
		return nil
	}

	// Winner determined: clamp initial votes into the duel range.
	winner := commenters[0].Username
	second := commenters[1].Username
	updates := map[string]any{
		"winner":        winner,
		"second":        second,
		"initial_votes": 50 + rand.Intn(100),
	}

	switch phase {
	case "scheduled":
		updates["duel_start_time"] = time.Now().Add(time.Duration(1+rand.Intn(48)) * time.Hour)
	case "live", "done":
		updates["started"] = true
		// in-duel remarks by the participants
		for _, c := range commenters[:2] {
			if _, err := s.f.CreateComment(c, post, true); err != nil {
				return err
			}
		}
		// audience reactions to the announced outcome
		audience := pickDistinct(users, 2+rand.Intn(4), author.Username)
		for _, a := range audience {
			if rand.Float32() < 0.8 {
				if err := s.f.CreateLike(a, post); err != nil {
					return err
				}
			} else if err := s.f.CreateFlag(a, post); err != nil {
				return err
			}
		}
	}

	if phase == "done" {
		updates["completed"] = true
		updates["completed_by_author"] = true
		updates["completed_by_winner"] = true
	}

	return s.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error
}

// pickDistinct returns n distinct users, excluding the given username.
func pickDistinct(users []*models.User, n int, exclude string) []*models.User {
	perm := rand.Perm(len(users))
	picked := make([]*models.User, 0, n)
	for _, idx := range perm {
		if users[idx].Username == exclude {
			continue
		}
		picked = append(picked, users[idx])
		if len(picked) == n {
			break
		}
	}
	return picked
}
