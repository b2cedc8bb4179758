// Command main runs the database seeder.
package main

import (
	"flag"
	"log"

	"humbleop/internal/config"
	"humbleop/internal/database"
	"humbleop/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of debates to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Lifecycle phase mix: fresh, arena or archive")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d debates, clean=%v preset=%q\n",
		*numUsers, *numPosts, *shouldClean, *preset)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run seeder
	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	distribution, ok := seed.PresetDistributions[*preset]
	if !ok {
		if *preset != "" {
			log.Fatalf("❌ Unknown preset %q", *preset)
		}
		distribution = seed.PresetDistributions["fresh"]
	}

	users, err := s.SeedDebaters(*numUsers)
	if err != nil {
		log.Fatalf("❌ User seeding failed: %v", err)
	}

	if err := s.SeedDebates(users, *numPosts, distribution); err != nil {
		log.Fatalf("❌ Debate seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: password123")
}
