package server

import (
	"strconv"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/repository"
	"recipebox/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ingredientRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Unit     string `json:"unit,omitempty" validate:"max=50"`
	Quantity string `json:"quantity,omitempty" validate:"max=50"`
}

func toIngredients(in []ingredientRequest) []models.Ingredient {
	if in == nil {
		return nil
	}
	out := make([]models.Ingredient, 0, len(in))
	for _, i := range in {
		out = append(out, models.Ingredient{Name: i.Name, Unit: i.Unit, Quantity: i.Quantity})
	}
	return out
}

type createRecipeRequest struct {
	AuthorID     uint                `json:"author_id" validate:"required"`
	Title        string              `json:"title" validate:"required,max=200"`
	Description  string              `json:"description"`
	Ingredients  []ingredientRequest `json:"ingredients" validate:"dive"`
	Instructions []string            `json:"instructions"`
	ImageKey     *string             `json:"image_key,omitempty"`
	IsPublic     bool                `json:"is_public"`
	Cooked       bool                `json:"cooked"`
	Favourite    bool                `json:"favourite"`
	Tags         []string            `json:"tags" validate:"dive,max=100"`
}

type updateRecipeRequest struct {
	Title        *string             `json:"title,omitempty" validate:"omitempty,max=200"`
	Description  *string             `json:"description,omitempty"`
	Ingredients  []ingredientRequest `json:"ingredients,omitempty" validate:"omitempty,dive"`
	Instructions []string            `json:"instructions,omitempty"`
	ImageKey     *string             `json:"image_key,omitempty"`
	IsPublic     *bool               `json:"is_public,omitempty"`
	Cooked       *bool               `json:"cooked,omitempty"`
	Favourite    *bool               `json:"favourite,omitempty"`
	Tags         []string            `json:"tags,omitempty" validate:"omitempty,dive,max=100"`
}

type forkRecipeRequest struct {
	AuthorID     uint                `json:"author_id" validate:"required"`
	Title        *string             `json:"title,omitempty" validate:"omitempty,max=200"`
	Description  *string             `json:"description,omitempty"`
	Ingredients  []ingredientRequest `json:"ingredients,omitempty" validate:"omitempty,dive"`
	Instructions []string            `json:"instructions,omitempty"`
	ImageKey     *string             `json:"image_key,omitempty"`
	IsPublic     *bool               `json:"is_public,omitempty"`
	IncludeTags  bool                `json:"include_tags"`
}

type likesRequest struct {
	LikeCount *int `json:"like_count" validate:"required,gte=0"`
}

// searchResponse is the body of GET /api/recipes/search. Exactly one of
// Recipes and Profile is set, as told by Shape.
type searchResponse struct {
	Shape   string                 `json:"shape"`
	Count   int                    `json:"count"`
	Recipes []models.Recipe        `json:"recipes,omitempty"`
	Profile *service.AuthorProfile `json:"profile,omitempty"`
}

// CreateRecipe handles POST /api/recipes
// @Summary Create a recipe
// @Description Tags are matched by name case-insensitively and created on first use
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body createRecipeRequest true "Recipe"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var req createRecipeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	recipe, err := s.recipes.Create(c.UserContext(), service.CreateRecipeInput{
		AuthorID:     req.AuthorID,
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  toIngredients(req.Ingredients),
		Instructions: req.Instructions,
		ImageKey:     req.ImageKey,
		IsPublic:     req.IsPublic,
		Cooked:       req.Cooked,
		Favourite:    req.Favourite,
		Tags:         req.Tags,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// ListRecipes handles GET /api/recipes
// @Summary List all recipes
// @Tags recipes
// @Produce json
// @Success 200 {array} models.Recipe
// @Router /recipes [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	recipes, err := s.recipes.List(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(recipes)
}

// ListPublicRecipes handles GET /api/recipes/public
// @Summary List public recipes
// @Tags recipes
// @Produce json
// @Success 200 {array} models.Recipe
// @Router /recipes/public [get]
func (s *Server) ListPublicRecipes(c *fiber.Ctx) error {
	recipes, err := s.recipes.ListPublic(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(recipes)
}

// SearchRecipes handles GET /api/recipes/search
// @Summary Search recipes
// @Description Criteria are ANDed. No criteria returns every recipe; an author alone returns that author's profile.
// @Tags recipes
// @Produce json
// @Param title query string false "Title contains (case-insensitive)"
// @Param ingredientName query string false "Ingredient name contains"
// @Param authorId query int false "Author ID"
// @Param authorName query string false "Author username (case-insensitive)"
// @Param isPublic query bool false "Visibility"
// @Param cooked query bool false "Cooked flag"
// @Param favourite query bool false "Favourite flag"
// @Param tag query string false "Single tag"
// @Param anyTags query []string false "At least one of these tags" collectionFormat(csv)
// @Param allTags query []string false "Every one of these tags" collectionFormat(csv)
// @Param mode query string false "memory evaluates the filter in process"
// @Success 200 {object} searchResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes/search [get]
func (s *Server) SearchRecipes(c *fiber.Ctx) error {
	filter, err := parseRecipeFilter(c)
	if err != nil {
		return mapServiceError(c, err)
	}

	if c.Query("mode") == "memory" {
		recipes, err := s.recipes.SearchInMemory(c.UserContext(), filter)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(searchResponse{
			Shape:   service.SearchShapeFiltered,
			Count:   len(recipes),
			Recipes: nonNilRecipes(recipes),
		})
	}

	result, err := s.recipes.Search(c.UserContext(), filter)
	if err != nil {
		return mapServiceError(c, err)
	}
	resp := searchResponse{Shape: result.Shape, Profile: result.Profile}
	if result.Profile != nil {
		resp.Count = result.Profile.TotalRecipes
	} else {
		resp.Recipes = nonNilRecipes(result.Recipes)
		resp.Count = len(result.Recipes)
	}
	return c.JSON(resp)
}

// parseRecipeFilter builds a filter from query parameters. Blank text values
// count as absent; "tags" is accepted as a synonym of anyTags.
func parseRecipeFilter(c *fiber.Ctx) (repository.RecipeFilter, error) {
	var f repository.RecipeFilter

	text := func(key string) *string {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			return &v
		}
		return nil
	}
	f.Title = text("title")
	f.IngredientName = text("ingredientName")
	f.AuthorName = text("authorName")
	f.Tag = text("tag")

	if raw := strings.TrimSpace(c.Query("authorId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return f, models.NewValidationError("Invalid author ID")
		}
		authorID := uint(id)
		f.AuthorID = &authorID
	}

	var err error
	if f.IsPublic, err = queryBool(c, "isPublic"); err != nil {
		return f, err
	}
	if f.Cooked, err = queryBool(c, "cooked"); err != nil {
		return f, err
	}
	if f.Favourite, err = queryBool(c, "favourite"); err != nil {
		return f, err
	}

	f.AnyTags = append(queryList(c, "anyTags"), queryList(c, "tags")...)
	f.AllTags = queryList(c, "allTags")
	return f, nil
}

func nonNilRecipes(recipes []models.Recipe) []models.Recipe {
	if recipes == nil {
		return []models.Recipe{}
	}
	return recipes
}

// ListAuthorRecipes handles GET /api/recipes/user/:userId
// @Summary List an author's recipes
// @Tags recipes
// @Produce json
// @Param userId path int true "Author ID"
// @Param filter query string false "all, public, cooked or favourite"
// @Success 200 {array} models.Recipe
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes/user/{userId} [get]
func (s *Server) ListAuthorRecipes(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	flags, ok := repository.ParseRecipeFlags(c.Query("filter"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("filter must be one of: all, public, cooked, favourite"))
	}

	recipes, err := s.recipes.ListByAuthor(c.UserContext(), userID, flags)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(nonNilRecipes(recipes))
}

// GetAuthorStats handles GET /api/recipes/user/:userId/stats
// @Summary Recipe counts for an author
// @Tags recipes
// @Produce json
// @Param userId path int true "Author ID"
// @Success 200 {object} repository.RecipeStats
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/user/{userId}/stats [get]
func (s *Server) GetAuthorStats(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	stats, err := s.recipes.Stats(c.UserContext(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(stats)
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Recipe
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, err := s.recipes.GetByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(recipe)
}

// UpdateRecipe handles PUT /api/recipes/:id
// @Summary Update a recipe
// @Description Omitted fields are unchanged; tags, when given, replace the whole set
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body updateRecipeRequest true "Changes"
// @Success 200 {object} models.Recipe
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [put]
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateRecipeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	recipe, err := s.recipes.Update(c.UserContext(), id, service.UpdateRecipeInput{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  toIngredients(req.Ingredients),
		Instructions: req.Instructions,
		ImageKey:     req.ImageKey,
		IsPublic:     req.IsPublic,
		Cooked:       req.Cooked,
		Favourite:    req.Favourite,
		Tags:         req.Tags,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(recipe)
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Description Forks of the recipe are kept; book memberships are dropped
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [delete]
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.recipes.Delete(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ForkRecipe handles POST /api/recipes/:id/fork
// @Summary Fork a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Source recipe ID"
// @Param request body forkRecipeRequest true "New owner and overrides"
// @Success 201 {object} models.Recipe
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/fork [post]
func (s *Server) ForkRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req forkRecipeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	fork, err := s.recipes.Fork(c.UserContext(), id, service.ForkRecipeInput{
		AuthorID:     req.AuthorID,
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  toIngredients(req.Ingredients),
		Instructions: req.Instructions,
		ImageKey:     req.ImageKey,
		IsPublic:     req.IsPublic,
		IncludeTags:  req.IncludeTags,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fork)
}

// UpdateRecipeLikes handles PUT /api/recipes/:id/likes
// @Summary Set a recipe's like count
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body likesRequest true "Like count"
// @Success 200 {object} models.Recipe
// @Router /recipes/{id}/likes [put]
func (s *Server) UpdateRecipeLikes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req likesRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	recipe, err := s.recipes.UpdateLikeCount(c.UserContext(), id, *req.LikeCount)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(recipe)
}
