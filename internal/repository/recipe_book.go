package repository

import (
	"context"
	"errors"

	"recipebox/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeBookRepository defines persistence operations for recipe books.
type RecipeBookRepository interface {
	Create(ctx context.Context, book *models.RecipeBook, recipeIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.RecipeBook, error)
	ListPublic(ctx context.Context) ([]models.RecipeBook, error)
	ListByUser(ctx context.Context, userID uint) ([]models.RecipeBook, error)
	Update(ctx context.Context, book *models.RecipeBook, recipeIDs []uint) error
	AddRecipe(ctx context.Context, bookID, recipeID uint) error
	RemoveRecipe(ctx context.Context, bookID, recipeID uint) error
	Delete(ctx context.Context, id uint) error
}

type recipeBookRepository struct {
	db *gorm.DB
}

// NewRecipeBookRepository returns a new RecipeBookRepository implementation.
func NewRecipeBookRepository(db *gorm.DB) RecipeBookRepository {
	return &recipeBookRepository{db: db}
}

// Create inserts book and its memberships in one transaction. Any unknown
// recipe id aborts the whole create with NOT_FOUND.
func (r *recipeBookRepository) Create(ctx context.Context, book *models.RecipeBook, recipeIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRecipes(tx, recipeIDs); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(book).Error; err != nil {
			return err
		}
		return bookRecipeTable.add(tx, book.ID, recipeIDs)
	})
	return asAppError(err)
}

func (r *recipeBookRepository) GetByID(ctx context.Context, id uint) (*models.RecipeBook, error) {
	var book models.RecipeBook
	err := r.preloaded(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("RecipeBook", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &book, nil
}

func (r *recipeBookRepository) ListPublic(ctx context.Context) ([]models.RecipeBook, error) {
	return r.find(r.preloaded(ctx).Where("recipe_books.is_public = ?", true))
}

// ListByUser includes the user's private books.
func (r *recipeBookRepository) ListByUser(ctx context.Context, userID uint) ([]models.RecipeBook, error) {
	return r.find(r.preloaded(ctx).Where("recipe_books.user_id = ?", userID))
}

func (r *recipeBookRepository) find(q *gorm.DB) ([]models.RecipeBook, error) {
	var books []models.RecipeBook
	if err := q.Order("recipe_books.id ASC").Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return books, nil
}

func (r *recipeBookRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Recipes", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipes.id ASC")
		}).
		Preload("Recipes.Tags", orderTags)
}

// Update saves the book's fields. A non-nil recipeIDs becomes the complete
// membership, written in the same transaction; an unknown recipe id leaves
// the book untouched with NOT_FOUND.
func (r *recipeBookRepository) Update(ctx context.Context, book *models.RecipeBook, recipeIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if recipeIDs != nil {
			if err := requireRecipes(tx, recipeIDs); err != nil {
				return err
			}
			if err := bookRecipeTable.replace(tx, book.ID, recipeIDs); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(book).Error
	})
	return asAppError(err)
}

// AddRecipe is idempotent: adding a member twice keeps one link.
func (r *recipeBookRepository) AddRecipe(ctx context.Context, bookID, recipeID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRecipes(tx, []uint{recipeID}); err != nil {
			return err
		}
		var count int64
		if err := tx.Table(bookRecipeTable.name).
			Where("recipe_book_id = ? AND recipe_id = ?", bookID, recipeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return bookRecipeTable.add(tx, bookID, []uint{recipeID})
	})
	return asAppError(err)
}

// RemoveRecipe returns NOT_FOUND when the recipe is not a member.
func (r *recipeBookRepository) RemoveRecipe(ctx context.Context, bookID, recipeID uint) error {
	affected, err := bookRecipeTable.remove(r.db.WithContext(ctx), bookID, recipeID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if affected == 0 {
		return models.NewNotFoundError("Recipe in book", recipeID)
	}
	return nil
}

func (r *recipeBookRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bookRecipeTable.clearOwner(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&models.RecipeBook{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("RecipeBook", id)
		}
		return nil
	})
	return asAppError(err)
}

// requireRecipes fails with NOT_FOUND naming the first id with no recipe row.
func requireRecipes(tx *gorm.DB, ids []uint) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := tx.Model(&models.Recipe{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return models.NewNotFoundError("Recipe", id)
		}
	}
	return nil
}
