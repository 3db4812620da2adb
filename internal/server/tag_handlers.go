package server

import (
	"recipebox/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultPopularTagLimit = 10

type renameTagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ListTags handles GET /api/tags
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.tags.List(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return c.JSON(tags)
}

// ListTagCounts handles GET /api/tags/counts
// @Summary Tags with recipe counts
// @Tags tags
// @Produce json
// @Success 200 {array} models.TagCount
// @Router /tags/counts [get]
func (s *Server) ListTagCounts(c *fiber.Ctx) error {
	counts, err := s.tags.ListWithCounts(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	if counts == nil {
		counts = []models.TagCount{}
	}
	return c.JSON(counts)
}

// PopularTags handles GET /api/tags/popular
// @Summary Most used tags
// @Tags tags
// @Produce json
// @Param limit query int false "Number of tags (default 10)"
// @Success 200 {array} models.TagCount
// @Failure 400 {object} models.ErrorResponse
// @Router /tags/popular [get]
func (s *Server) PopularTags(c *fiber.Ctx) error {
	limit := defaultPopularTagLimit
	if raw := c.Query("limit"); raw != "" {
		limit = c.QueryInt("limit", 0)
	}

	counts, err := s.tags.Popular(c.UserContext(), limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(counts)
}

// ListTagCategories handles GET /api/tags/categories
// @Summary Curated tag categories
// @Tags tags
// @Produce json
// @Success 200 {array} string
// @Router /tags/categories [get]
func (s *Server) ListTagCategories(c *fiber.Ctx) error {
	return c.JSON(s.tags.Categories())
}

// GetTagCategory handles GET /api/tags/categories/:category
// @Summary Tags of a category with usage
// @Tags tags
// @Produce json
// @Param category path string true "Category name"
// @Success 200 {array} models.CategoryTag
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/categories/{category} [get]
func (s *Server) GetTagCategory(c *fiber.Ctx) error {
	tags, err := s.tags.Category(c.UserContext(), pathParam(c, "category"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(tags)
}

// GetTag handles GET /api/tags/:name
// @Summary Get a tag by name
// @Description Names match case-insensitively
// @Tags tags
// @Produce json
// @Param name path string true "Tag name"
// @Success 200 {object} models.Tag
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{name} [get]
func (s *Server) GetTag(c *fiber.Ctx) error {
	tag, err := s.tags.GetByName(c.UserContext(), pathParam(c, "name"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(tag)
}

// SeedTags handles POST /api/tags/seed
// @Summary Seed the curated vocabulary
// @Description A no-op when any tag exists
// @Tags tags
// @Produce json
// @Success 200 {object} object{seeded=bool}
// @Router /tags/seed [post]
func (s *Server) SeedTags(c *fiber.Ctx) error {
	seeded, err := s.tags.SeedPredefined(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"seeded": seeded})
}

// RenameTag handles PUT /api/tags/:id
// @Summary Rename a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param request body renameTagRequest true "New name"
// @Success 200 {object} models.Tag
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /tags/{id} [put]
func (s *Server) RenameTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req renameTagRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	tag, err := s.tags.Rename(c.UserContext(), id, req.Name)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(tag)
}
