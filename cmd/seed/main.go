// Command main runs the database seeder for Socialcore.
package main

import (
	"context"
	"flag"
	"log"

	"socialcore/internal/config"
	"socialcore/internal/credential"
	"socialcore/internal/database"
	"socialcore/internal/seed"
)

func main() {
	// Parse command line flags
	numProfiles := flag.Int("profiles", 50, "Number of profiles to create")
	followsPer := flag.Int("follows", 10, "Follow edges per profile")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 for random)")
	password := flag.String("password", seed.DefaultPassword, "Password for every seeded profile")
	flag.Parse()

	log.Printf("Target: %d profiles, %d follows each, clean=%v", *numProfiles, *followsPer, *shouldClean)

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

	hasher := credential.NewStore(credential.Params{
		Time:        cfg.HashTime,
		Memory:      cfg.HashMemoryKB,
		Threads:     cfg.HashThreads,
		Concurrency: cfg.HashConcurrency,
	})

	result, err := seed.Seed(context.Background(), db, hasher, seed.Options{
		Profiles:          *numProfiles,
		FollowsPerProfile: *followsPer,
		Clean:             *shouldClean,
		Seed:              *seedValue,
		Password:          *password,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d profiles and %d follows", len(result.Profiles), result.Follows)
	log.Printf("All seeded profiles have the password: %s", *password)
}
