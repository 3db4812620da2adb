package seed

import (
	"context"
	"fmt"
	"log/slog"

	"recipebox/internal/cache"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/service"

	"gorm.io/gorm"
)

// Options configure a demo data run.
type Options struct {
	NumUsers       int
	RecipesPerUser int
	BooksPerUser   int
	// ForkRatio is the share of recipes that get forked by another user.
	ForkRatio float64
	Password  string
	RandSeed  int64
}

// DefaultOptions is a small but varied data set.
var DefaultOptions = Options{
	NumUsers:       10,
	RecipesPerUser: 5,
	BooksPerUser:   1,
	ForkRatio:      0.2,
}

// Summary counts what a run created.
type Summary struct {
	TagsSeeded bool
	Users      int
	Recipes    int
	Forks      int
	Books      int
}

// Seeder populates a database through the domain services.
type Seeder struct {
	db  *gorm.DB
	svc *service.Services
}

func NewSeeder(db *gorm.DB, svc *service.Services) *Seeder {
	return &Seeder{db: db, svc: svc}
}

// ClearAll removes every row the application owns, link tables first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	var recipeIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Pluck("id", &recipeIDs).Error; err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}

	if s.db.Dialector.Name() == "postgres" {
		err := s.db.WithContext(ctx).Exec(`TRUNCATE TABLE recipe_book_recipes, recipe_tags, recipe_books, recipes, tags, users RESTART IDENTITY CASCADE`).Error
		if err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	} else {
		for _, table := range []string{"recipe_book_recipes", "recipe_tags", "recipe_books", "recipes", "tags", "users"} {
			if err := s.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
	}

	for _, id := range recipeIDs {
		cache.InvalidateRecipe(ctx, id)
	}
	cache.InvalidateTags(ctx)
	middleware.Logger.InfoContext(ctx, "cleared seed data", slog.Int("recipes", len(recipeIDs)))
	return nil
}

// Run seeds the tag vocabulary, then users with recipes, forks and books.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.NumUsers <= 0 {
		return nil, fmt.Errorf("NumUsers must be positive, got %d", opts.NumUsers)
	}
	summary := &Summary{}

	seeded, err := s.svc.Tags.SeedPredefined(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed tags: %w", err)
	}
	summary.TagsSeeded = seeded

	vocabulary, err := Vocabulary()
	if err != nil {
		return nil, err
	}
	factory := NewFactory(s.svc, TagNames(vocabulary), opts.Password, opts.RandSeed)

	// Continue numbering after existing accounts so reruns never collide.
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	factory.seq = int(existing)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)

	var recipes []models.Recipe
	for _, user := range users {
		for j := 0; j < opts.RecipesPerUser; j++ {
			recipe, err := factory.CreateRecipe(ctx, user)
			if err != nil {
				return nil, fmt.Errorf("create recipe: %w", err)
			}
			recipes = append(recipes, *recipe)
		}
	}
	summary.Recipes = len(recipes)

	if len(users) > 1 {
		forks := int(float64(len(recipes)) * opts.ForkRatio)
		if forks > len(recipes) {
			forks = len(recipes)
		}
		for i := 0; i < forks; i++ {
			source := recipes[i]
			owner := users[(i+1)%len(users)]
			if owner.ID == source.AuthorID {
				owner = users[(i+2)%len(users)]
			}
			fork, err := factory.ForkRecipe(ctx, &source, owner)
			if err != nil {
				return nil, fmt.Errorf("fork recipe %d: %w", source.ID, err)
			}
			recipes = append(recipes, *fork)
			summary.Forks++
		}
	}

	for _, user := range users {
		for j := 0; j < opts.BooksPerUser; j++ {
			if _, err := factory.CreateBook(ctx, user, recipes, 4); err != nil {
				return nil, fmt.Errorf("create book: %w", err)
			}
			summary.Books++
		}
	}

	middleware.Logger.InfoContext(ctx, "seed completed",
		slog.Int("users", summary.Users),
		slog.Int("recipes", summary.Recipes),
		slog.Int("forks", summary.Forks),
		slog.Int("books", summary.Books),
	)
	return summary, nil
}
