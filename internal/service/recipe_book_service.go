package service

import (
	"context"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/repository"
)

type RecipeBookService struct {
	bookRepo repository.RecipeBookRepository
	userRepo repository.UserRepository
}

type CreateRecipeBookInput struct {
	UserID      uint
	Name        string
	Description string
	IsPublic    bool
	RecipeIDs   []uint
}

// UpdateRecipeBookInput is a partial update; a non-nil RecipeIDs replaces
// the whole membership.
type UpdateRecipeBookInput struct {
	Name        *string
	Description *string
	IsPublic    *bool
	RecipeIDs   []uint
}

func NewRecipeBookService(bookRepo repository.RecipeBookRepository, userRepo repository.UserRepository) *RecipeBookService {
	return &RecipeBookService{bookRepo: bookRepo, userRepo: userRepo}
}

func (s *RecipeBookService) Create(ctx context.Context, in CreateRecipeBookInput) (*models.RecipeBook, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if _, err := s.userRepo.GetActiveByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	book := &models.RecipeBook{
		Name:        name,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		UserID:      in.UserID,
	}
	if err := s.bookRepo.Create(ctx, book, in.RecipeIDs); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(ctx, book.ID)
}

func (s *RecipeBookService) GetByID(ctx context.Context, id uint) (*models.RecipeBook, error) {
	return s.bookRepo.GetByID(ctx, id)
}

// GetPublicByID hides private books behind NOT_FOUND.
func (s *RecipeBookService) GetPublicByID(ctx context.Context, id uint) (*models.RecipeBook, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !book.IsPublic {
		return nil, models.NewNotFoundError("RecipeBook", id)
	}
	return book, nil
}

func (s *RecipeBookService) ListPublic(ctx context.Context) ([]models.RecipeBook, error) {
	return s.bookRepo.ListPublic(ctx)
}

// ListByUser includes private books.
func (s *RecipeBookService) ListByUser(ctx context.Context, userID uint) ([]models.RecipeBook, error) {
	return s.bookRepo.ListByUser(ctx, userID)
}

func (s *RecipeBookService) Update(ctx context.Context, id uint, in UpdateRecipeBookInput) (*models.RecipeBook, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("Name cannot be blank")
		}
		book.Name = name
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.IsPublic != nil {
		book.IsPublic = *in.IsPublic
	}

	if err := s.bookRepo.Update(ctx, book, in.RecipeIDs); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(ctx, book.ID)
}

func (s *RecipeBookService) Delete(ctx context.Context, id uint) error {
	return s.bookRepo.Delete(ctx, id)
}

func (s *RecipeBookService) AddRecipe(ctx context.Context, bookID, recipeID uint) (*models.RecipeBook, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	if err := s.bookRepo.AddRecipe(ctx, bookID, recipeID); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(ctx, bookID)
}

func (s *RecipeBookService) RemoveRecipe(ctx context.Context, bookID, recipeID uint) (*models.RecipeBook, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	if err := s.bookRepo.RemoveRecipe(ctx, bookID, recipeID); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(ctx, bookID)
}
