package server

import (
	"recipebox/internal/models"
	"recipebox/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createRecipeBookRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	RecipeIDs   []uint `json:"recipe_ids"`
}

type updateRecipeBookRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
	RecipeIDs   []uint  `json:"recipe_ids,omitempty"`
}

func nonNilBooks(books []models.RecipeBook) []models.RecipeBook {
	if books == nil {
		return []models.RecipeBook{}
	}
	return books
}

// CreateRecipeBook handles POST /api/recipebooks
// @Summary Create a recipe book
// @Tags recipebooks
// @Accept json
// @Produce json
// @Param request body createRecipeBookRequest true "Book"
// @Success 201 {object} models.RecipeBook
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipebooks [post]
func (s *Server) CreateRecipeBook(c *fiber.Ctx) error {
	var req createRecipeBookRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	book, err := s.books.Create(c.UserContext(), service.CreateRecipeBookInput{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		RecipeIDs:   req.RecipeIDs,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

// ListPublicRecipeBooks handles GET /api/recipebooks/public
// @Summary List public recipe books
// @Tags recipebooks
// @Produce json
// @Success 200 {array} models.RecipeBook
// @Router /recipebooks/public [get]
func (s *Server) ListPublicRecipeBooks(c *fiber.Ctx) error {
	books, err := s.books.ListPublic(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(nonNilBooks(books))
}

// GetPublicRecipeBook handles GET /api/recipebooks/public/:id
// @Summary Get a public recipe book
// @Description Private books are reported as not found
// @Tags recipebooks
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} models.RecipeBook
// @Failure 404 {object} models.ErrorResponse
// @Router /recipebooks/public/{id} [get]
func (s *Server) GetPublicRecipeBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.books.GetPublicByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(book)
}

// ListUserRecipeBooks handles GET /api/recipebooks/user/:userId
// @Summary List a user's recipe books
// @Tags recipebooks
// @Produce json
// @Param userId path int true "Owner ID"
// @Success 200 {array} models.RecipeBook
// @Router /recipebooks/user/{userId} [get]
func (s *Server) ListUserRecipeBooks(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	books, err := s.books.ListByUser(c.UserContext(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(nonNilBooks(books))
}

// GetRecipeBook handles GET /api/recipebooks/:id
// @Summary Get a recipe book
// @Tags recipebooks
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} models.RecipeBook
// @Failure 404 {object} models.ErrorResponse
// @Router /recipebooks/{id} [get]
func (s *Server) GetRecipeBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	book, err := s.books.GetByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(book)
}

// UpdateRecipeBook handles PUT /api/recipebooks/:id
// @Summary Update a recipe book
// @Description recipe_ids, when given, replaces the membership
// @Tags recipebooks
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param request body updateRecipeBookRequest true "Changes"
// @Success 200 {object} models.RecipeBook
// @Router /recipebooks/{id} [put]
func (s *Server) UpdateRecipeBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateRecipeBookRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	book, err := s.books.Update(c.UserContext(), id, service.UpdateRecipeBookInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		RecipeIDs:   req.RecipeIDs,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(book)
}

// DeleteRecipeBook handles DELETE /api/recipebooks/:id
// @Summary Delete a recipe book
// @Description Member recipes are not deleted
// @Tags recipebooks
// @Param id path int true "Book ID"
// @Success 204
// @Router /recipebooks/{id} [delete]
func (s *Server) DeleteRecipeBook(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.books.Delete(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddRecipeToBook handles POST /api/recipebooks/:id/recipes/:recipeId
// @Summary Add a recipe to a book
// @Tags recipebooks
// @Produce json
// @Param id path int true "Book ID"
// @Param recipeId path int true "Recipe ID"
// @Success 200 {object} models.RecipeBook
// @Router /recipebooks/{id}/recipes/{recipeId} [post]
func (s *Server) AddRecipeToBook(c *fiber.Ctx) error {
	bookID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	recipeID, err := s.parseID(c, "recipeId")
	if err != nil {
		return nil
	}

	book, err := s.books.AddRecipe(c.UserContext(), bookID, recipeID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(book)
}

// RemoveRecipeFromBook handles DELETE /api/recipebooks/:id/recipes/:recipeId
// @Summary Remove a recipe from a book
// @Tags recipebooks
// @Produce json
// @Param id path int true "Book ID"
// @Param recipeId path int true "Recipe ID"
// @Success 200 {object} models.RecipeBook
// @Router /recipebooks/{id}/recipes/{recipeId} [delete]
func (s *Server) RemoveRecipeFromBook(c *fiber.Ctx) error {
	bookID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	recipeID, err := s.parseID(c, "recipeId")
	if err != nil {
		return nil
	}

	book, err := s.books.RemoveRecipe(c.UserContext(), bookID, recipeID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(book)
}
