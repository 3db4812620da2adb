package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
	"recipebox/internal/storage"
)

// Search result shapes.
const (
	SearchShapeAll           = "all"
	SearchShapeFiltered      = "filtered"
	SearchShapeAuthorProfile = "author_profile"
)

// ForkTitleSuffix is appended to the source title when a fork gives none.
const ForkTitleSuffix = " (Forked)"

type RecipeService struct {
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
	bookRepo   repository.RecipeBookRepository
	store      storage.ObjectStore
}

type CreateRecipeInput struct {
	AuthorID     uint
	Title        string
	Description  string
	Ingredients  []models.Ingredient
	Instructions []string
	ImageKey     *string
	IsPublic     bool
	Cooked       bool
	Favourite    bool
	Tags         []string
}

// UpdateRecipeInput is a partial update. Nil fields are unchanged. An
// ImageKey pointing at "" clears the image; a non-nil Tags replaces the
// whole tag set.
type UpdateRecipeInput struct {
	Title        *string
	Description  *string
	Ingredients  []models.Ingredient
	Instructions []string
	ImageKey     *string
	IsPublic     *bool
	Cooked       *bool
	Favourite    *bool
	Tags         []string
}

// ForkRecipeInput names the new owner and optional overrides of the copied
// fields. Tags are copied only with IncludeTags.
type ForkRecipeInput struct {
	AuthorID     uint
	Title        *string
	Description  *string
	Ingredients  []models.Ingredient
	Instructions []string
	ImageKey     *string
	IsPublic     *bool
	IncludeTags  bool
}

// AuthorProfile is the search result when only an author is named.
type AuthorProfile struct {
	Author           *models.User        `json:"author,omitempty"`
	Recipes          []models.Recipe     `json:"recipes"`
	RecipeBooks      []models.RecipeBook `json:"recipe_books"`
	TotalRecipes     int                 `json:"total_recipes"`
	TotalRecipeBooks int                 `json:"total_recipe_books"`
}

// SearchResult carries either a flat recipe list or an author profile,
// as told by Shape.
type SearchResult struct {
	Shape   string
	Recipes []models.Recipe
	Profile *AuthorProfile
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	bookRepo repository.RecipeBookRepository,
	store storage.ObjectStore,
) *RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		userRepo:   userRepo,
		bookRepo:   bookRepo,
		store:      store,
	}
}

func (s *RecipeService) Create(ctx context.Context, in CreateRecipeInput) (*models.Recipe, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if _, err := s.userRepo.GetActiveByID(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	imageKey, err := normalizeImageKey(in.ImageKey)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:        title,
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		ImageKey:     imageKey,
		IsPublic:     in.IsPublic,
		Cooked:       in.Cooked,
		Favourite:    in.Favourite,
		AuthorID:     in.AuthorID,
	}
	if err := s.recipeRepo.Create(ctx, recipe, in.Tags); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Get returns (nil, nil) when the recipe does not exist.
func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if models.IsNotFound(err) {
		return nil, nil
	}
	return recipe, err
}

func (s *RecipeService) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(ctx, id)
}

func (s *RecipeService) List(ctx context.Context) ([]models.Recipe, error) {
	return s.recipeRepo.List(ctx)
}

func (s *RecipeService) ListPublic(ctx context.Context) ([]models.Recipe, error) {
	return s.recipeRepo.ListPublic(ctx)
}

func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uint, flags repository.RecipeFlags) ([]models.Recipe, error) {
	return s.recipeRepo.ListByAuthor(ctx, authorID, flags)
}

// Search evaluates filter in storage. With no criteria every recipe is
// returned; naming only an author yields that author's profile instead of a
// flat list.
func (s *RecipeService) Search(ctx context.Context, filter repository.RecipeFilter) (*SearchResult, error) {
	switch {
	case filter.IsEmpty():
		recipes, err := s.recipeRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		observability.RecipeSearches.WithLabelValues(SearchShapeAll).Inc()
		return &SearchResult{Shape: SearchShapeAll, Recipes: recipes}, nil

	case filter.IsAuthorOnly():
		profile, err := s.authorProfile(ctx, filter)
		if err != nil {
			return nil, err
		}
		observability.RecipeSearches.WithLabelValues(SearchShapeAuthorProfile).Inc()
		return &SearchResult{Shape: SearchShapeAuthorProfile, Profile: profile}, nil
	}

	observability.SearchCriteria.Observe(float64(filter.Criteria()))
	recipes, err := s.recipeRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	observability.RecipeSearches.WithLabelValues(SearchShapeFiltered).Inc()
	return &SearchResult{Shape: SearchShapeFiltered, Recipes: recipes}, nil
}

// SearchInMemory loads every recipe and evaluates filter locally. Results
// match Search's filtered shape.
func (s *RecipeService) SearchInMemory(ctx context.Context, filter repository.RecipeFilter) ([]models.Recipe, error) {
	all, err := s.recipeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return repository.FilterRecipes(all, filter), nil
}

// authorProfile resolves the author named by filter. An unknown author is an
// empty profile, not an error.
func (s *RecipeService) authorProfile(ctx context.Context, filter repository.RecipeFilter) (*AuthorProfile, error) {
	profile := &AuthorProfile{Recipes: []models.Recipe{}, RecipeBooks: []models.RecipeBook{}}

	var author *models.User
	var err error
	if filter.AuthorID != nil {
		author, err = s.userRepo.GetActiveByID(ctx, *filter.AuthorID)
		if models.IsNotFound(err) {
			return profile, nil
		}
	} else {
		author, err = s.userRepo.GetByUsername(ctx, *filter.AuthorName)
	}
	if err != nil {
		return nil, err
	}
	if author == nil {
		return profile, nil
	}

	recipes, err := s.recipeRepo.ListByAuthor(ctx, author.ID, repository.FlagsAll)
	if err != nil {
		return nil, err
	}
	books, err := s.bookRepo.ListByUser(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	profile.Author = author
	profile.Recipes = recipes
	profile.RecipeBooks = books
	profile.TotalRecipes = len(recipes)
	profile.TotalRecipeBooks = len(books)
	return profile, nil
}

// Fork copies a recipe to a new owner. The source is never modified. Flags
// and likes start fresh; visibility follows the override or the source.
func (s *RecipeService) Fork(ctx context.Context, sourceID uint, in ForkRecipeInput) (*models.Recipe, error) {
	source, err := s.recipeRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetActiveByID(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	fork := &models.Recipe{
		Title:            source.Title + ForkTitleSuffix,
		Description:      source.Description,
		Ingredients:      append([]models.Ingredient(nil), source.Ingredients...),
		Instructions:     append([]string(nil), source.Instructions...),
		ImageKey:         source.ImageKey,
		IsPublic:         source.IsPublic,
		AuthorID:         in.AuthorID,
		OriginalRecipeID: &source.ID,
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		fork.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		fork.Description = *in.Description
	}
	if in.Ingredients != nil {
		fork.Ingredients = in.Ingredients
	}
	if in.Instructions != nil {
		fork.Instructions = in.Instructions
	}
	if in.ImageKey != nil {
		if fork.ImageKey, err = normalizeImageKey(in.ImageKey); err != nil {
			return nil, err
		}
	}
	if in.IsPublic != nil {
		fork.IsPublic = *in.IsPublic
	}
	var tagNames []string
	if in.IncludeTags {
		tagNames = source.TagNames()
	}

	if err := s.recipeRepo.Create(ctx, fork, tagNames); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "recipe forked",
		slog.Uint64("source_id", uint64(source.ID)),
		slog.Uint64("recipe_id", uint64(fork.ID)),
	)
	return fork, nil
}

func (s *RecipeService) Update(ctx context.Context, id uint, in UpdateRecipeInput) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be blank")
		}
		recipe.Title = title
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}
	if in.Ingredients != nil {
		recipe.Ingredients = in.Ingredients
	}
	if in.Instructions != nil {
		recipe.Instructions = in.Instructions
	}
	if in.ImageKey != nil {
		if recipe.ImageKey, err = normalizeImageKey(in.ImageKey); err != nil {
			return nil, err
		}
	}
	if in.IsPublic != nil {
		recipe.IsPublic = *in.IsPublic
	}
	if in.Cooked != nil {
		recipe.Cooked = *in.Cooked
	}
	if in.Favourite != nil {
		recipe.Favourite = *in.Favourite
	}

	if err := s.recipeRepo.Update(ctx, recipe, in.Tags); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Delete removes the recipe, then its stored image when storage is
// configured and no other recipe, such as a fork, still uses it. Image
// cleanup failures are logged only.
func (s *RecipeService) Delete(ctx context.Context, id uint) error {
	released, err := s.recipeRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if released != nil && s.store != nil {
		err := s.store.Delete(ctx, *released)
		observability.ImageOperations.WithLabelValues("delete", observability.Outcome(err)).Inc()
		if err != nil {
			middleware.Logger.WarnContext(ctx, "recipe image cleanup failed",
				slog.Uint64("recipe_id", uint64(id)),
				slog.String("key", *released),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *RecipeService) UpdateLikeCount(ctx context.Context, id uint, count int) (*models.Recipe, error) {
	if count < 0 {
		return nil, models.NewValidationError("Like count cannot be negative")
	}
	if err := s.recipeRepo.UpdateLikeCount(ctx, id, count); err != nil {
		return nil, err
	}
	return s.recipeRepo.GetByID(ctx, id)
}

// Stats summarizes an active author's recipes.
func (s *RecipeService) Stats(ctx context.Context, authorID uint) (*repository.RecipeStats, error) {
	if _, err := s.userRepo.GetActiveByID(ctx, authorID); err != nil {
		return nil, err
	}
	stats, err := s.recipeRepo.Stats(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("recipe stats for author %d: %w", authorID, err)
	}
	return stats, nil
}

// normalizeImageKey maps an empty key to nil so it is stored as NULL. Other
// keys must have the shape the image service issues.
func normalizeImageKey(key *string) (*string, error) {
	if key == nil || strings.TrimSpace(*key) == "" {
		return nil, nil
	}
	normalized, err := storage.NormalizeKey(*key)
	if err != nil {
		return nil, models.NewValidationError("Invalid image key")
	}
	return &normalized, nil
}
