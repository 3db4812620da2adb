// Command main runs the demo data seeder for Recipebox.
package main

import (
	"context"
	"flag"
	"log"

	"recipebox/internal/bootstrap"
	"recipebox/internal/config"
	"recipebox/internal/seed"
)

func main() {
	numUsers := flag.Int("users", seed.DefaultOptions.NumUsers, "Number of users to create")
	recipesPerUser := flag.Int("recipes", seed.DefaultOptions.RecipesPerUser, "Recipes created per user")
	booksPerUser := flag.Int("books", seed.DefaultOptions.BooksPerUser, "Recipe books created per user")
	forkRatio := flag.Float64("forks", seed.DefaultOptions.ForkRatio, "Share of recipes forked by another user")
	password := flag.String("password", "password123", "Password shared by every seeded user")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 picks one from the clock")
	shouldClean := flag.Bool("clean", false, "Remove existing data before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d recipes each, clean=%v\n", *numUsers, *recipesPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if err := rt.Close(ctx); err != nil {
			log.Printf("Runtime shutdown error: %v", err)
		}
	}()

	s := seed.NewSeeder(rt.DB, rt.Services)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Printf("❌ Cleanup failed: %v", err)
			return
		}
	}

	summary, err := s.Run(ctx, seed.Options{
		NumUsers:       *numUsers,
		RecipesPerUser: *recipesPerUser,
		BooksPerUser:   *booksPerUser,
		ForkRatio:      *forkRatio,
		Password:       *password,
		RandSeed:       *randSeed,
	})
	if err != nil {
		log.Printf("❌ Seeding failed: %v", err)
		return
	}

	log.Printf("✨ Created %d users, %d recipes, %d forks, %d books (tags seeded: %v)",
		summary.Users, summary.Recipes, summary.Forks, summary.Books, summary.TagsSeeded)
	log.Printf("📧 All seeded users have the password: %s", *password)
}
