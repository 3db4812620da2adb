package repository

import (
	"context"
	"errors"
	"fmt"

	"recipebox/internal/cache"
	"recipebox/internal/models"
	"recipebox/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFlags selects which of an author's recipes to list.
type RecipeFlags string

const (
	FlagsAll       RecipeFlags = "all"
	FlagsPublic    RecipeFlags = "public"
	FlagsCooked    RecipeFlags = "cooked"
	FlagsFavourite RecipeFlags = "favourite"
)

// ParseRecipeFlags maps a query value to RecipeFlags. Empty means all.
func ParseRecipeFlags(s string) (RecipeFlags, bool) {
	switch RecipeFlags(s) {
	case "", FlagsAll:
		return FlagsAll, true
	case FlagsPublic, FlagsCooked, FlagsFavourite:
		return RecipeFlags(s), true
	}
	return "", false
}

// RecipeStats summarizes one author's recipes.
type RecipeStats struct {
	Total     int64 `gorm:"column:total_count" json:"total"`
	Public    int64 `gorm:"column:public_count" json:"public"`
	Cooked    int64 `gorm:"column:cooked_count" json:"cooked"`
	Favourite int64 `gorm:"column:favourite_count" json:"favourite"`
}

// RecipeRepository defines persistence operations for recipes. Tag
// membership is written in the same transaction as the recipe row, with
// missing tags created on the way.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe, tagNames []string) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	List(ctx context.Context) ([]models.Recipe, error)
	ListPublic(ctx context.Context) ([]models.Recipe, error)
	ListByAuthor(ctx context.Context, authorID uint, flags RecipeFlags) ([]models.Recipe, error)
	Search(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe, tagNames []string) error
	UpdateLikeCount(ctx context.Context, id uint, count int) error
	Delete(ctx context.Context, id uint) (releasedImageKey *string, err error)
	Stats(ctx context.Context, authorID uint) (*RecipeStats, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts recipe tagged with tagNames. On success recipe.Tags holds
// the resolved tags.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, tagNames []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, _, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := recipeTagsTable.replace(tx, recipe.ID, tagIDs(tags)); err != nil {
			return err
		}
		recipe.Tags = tags
		return nil
	})
	if err != nil {
		return models.NewInternalError(fmt.Errorf("create recipe: %w", err))
	}
	cache.InvalidateTags(ctx)
	return nil
}

// GetByID returns the recipe with its tags. Author is not loaded.
func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := cache.Aside(ctx, "recipe", cache.RecipeKey(id), &recipe, cache.RecipeTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Tags", orderTags).
			First(&recipe, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context) ([]models.Recipe, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

func (r *recipeRepository) ListPublic(ctx context.Context) ([]models.Recipe, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("recipes.is_public = ?", true))
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, flags RecipeFlags) ([]models.Recipe, error) {
	q := r.db.WithContext(ctx).Where("recipes.author_id = ?", authorID)
	switch flags {
	case FlagsPublic:
		q = q.Where("recipes.is_public = ?", true)
	case FlagsCooked:
		q = q.Where("recipes.cooked = ?", true)
	case FlagsFavourite:
		q = q.Where("recipes.favourite = ?", true)
	}
	return r.find(ctx, q)
}

// Search returns recipes satisfying every criterion in filter, by ascending id.
func (r *recipeRepository) Search(ctx context.Context, filter RecipeFilter) (recipes []models.Recipe, err error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Search", "recipes")
	span.SetAttributes(attribute.Int("search.criteria", filter.Criteria()))
	defer func() { observability.EndSpan(span, err) }()

	recipes, err = r.find(ctx, r.db.WithContext(ctx).Scopes(filter.Scopes()...))
	if err == nil {
		span.SetAttributes(attribute.Int("search.results", len(recipes)))
	}
	return recipes, err
}

func (r *recipeRepository) find(ctx context.Context, q *gorm.DB) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := q.Model(&models.Recipe{}).
		Preload("Tags", orderTags).
		Preload("Author").
		Order("recipes.id ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// Update saves the scalar fields. A nil tagNames keeps the tag set; any
// other value, empty included, replaces it. Both writes share one
// transaction.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, tagNames []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		if tagNames == nil {
			return nil
		}
		tags, _, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}
		if err := recipeTagsTable.replace(tx, recipe.ID, tagIDs(tags)); err != nil {
			return err
		}
		recipe.Tags = tags
		return nil
	})
	if err != nil {
		return models.NewInternalError(fmt.Errorf("update recipe %d: %w", recipe.ID, err))
	}
	cache.InvalidateRecipe(ctx, recipe.ID)
	if tagNames != nil {
		cache.InvalidateTags(ctx)
	}
	return nil
}

func (r *recipeRepository) UpdateLikeCount(ctx context.Context, id uint, count int) error {
	res := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Update("like_count", count)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Recipe", id)
	}
	cache.InvalidateRecipe(ctx, id)
	return nil
}

// Delete removes the recipe together with its tag links and book
// memberships. It returns the recipe's image key when no remaining recipe
// references it; forks share their source's key.
func (r *recipeRepository) Delete(ctx context.Context, id uint) (*string, error) {
	var released *string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id", "image_key").First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Recipe", id)
			}
			return err
		}
		if err := recipeTagsTable.clearOwner(tx, id); err != nil {
			return err
		}
		if err := bookRecipeTable.clearMember(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return err
		}
		if recipe.ImageKey == nil {
			return nil
		}
		var sharing int64
		if err := tx.Model(&models.Recipe{}).
			Where("image_key = ?", *recipe.ImageKey).
			Count(&sharing).Error; err != nil {
			return err
		}
		if sharing == 0 {
			released = recipe.ImageKey
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	cache.InvalidateRecipe(ctx, id)
	cache.InvalidateTags(ctx)
	return released, nil
}

func (r *recipeRepository) Stats(ctx context.Context, authorID uint) (*RecipeStats, error) {
	var stats RecipeStats
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select(
			"COUNT(*) AS total_count, "+
				"COALESCE(SUM(CASE WHEN is_public = ? THEN 1 ELSE 0 END), 0) AS public_count, "+
				"COALESCE(SUM(CASE WHEN cooked = ? THEN 1 ELSE 0 END), 0) AS cooked_count, "+
				"COALESCE(SUM(CASE WHEN favourite = ? THEN 1 ELSE 0 END), 0) AS favourite_count",
			true, true, true,
		).
		Where("author_id = ?", authorID).
		Scan(&stats).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}

func orderTags(db *gorm.DB) *gorm.DB {
	return db.Order("tags.id ASC")
}

func tagIDs(tags []models.Tag) []uint {
	ids := make([]uint, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
