// Command seed fills the database with demo content.
package main

import (
	"context"
	"flag"
	"log"

	"askmate/internal/config"
	"askmate/internal/database"
	"askmate/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	numQuestions := flag.Int("questions", defaults.Questions, "Number of questions to create")
	shouldClean := flag.Bool("clean", false, "Delete existing forum content first")
	presetFile := flag.String("presets", "seed_presets.yml", "YAML file with named presets")
	preset := flag.String("preset", "", "Apply a named preset from the presets file")
	flag.Parse()

	opts := defaults
	opts.Users = *numUsers
	opts.Questions = *numQuestions
	if *preset != "" {
		loaded, err := seed.LoadPreset(*presetFile, *preset)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		opts = loaded
		log.Printf("Applying preset %q from %s", *preset, *presetFile)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, opts)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %s", res)
	log.Printf("All generated users have the password: %s", seed.DemoPassword)
}
