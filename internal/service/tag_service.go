package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/repository"
)

// TagCategory is a curated group of tag names, e.g. cuisine or diet.
type TagCategory struct {
	Name string
	Tags []string
}

type TagService struct {
	tagRepo    repository.TagRepository
	vocabulary []TagCategory
}

func NewTagService(tagRepo repository.TagRepository, vocabulary []TagCategory) *TagService {
	return &TagService{tagRepo: tagRepo, vocabulary: vocabulary}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *TagService) ListWithCounts(ctx context.Context) ([]models.TagCount, error) {
	return s.tagRepo.ListWithCounts(ctx)
}

func (s *TagService) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "Tag '" + name + "' not found"}
	}
	return tag, nil
}

// SeedPredefined inserts the whole vocabulary in one transaction unless any
// tag exists already. It reports whether anything was inserted.
func (s *TagService) SeedPredefined(ctx context.Context) (bool, error) {
	count, err := s.tagRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	names := make([]string, 0, 128)
	for _, c := range s.vocabulary {
		names = append(names, c.Tags...)
	}
	if err := s.tagRepo.CreateBatch(ctx, names); err != nil {
		// Lost a race with a concurrent seed; the other run inserted them.
		if models.IsDuplicate(err) {
			return false, nil
		}
		return false, err
	}

	middleware.Logger.InfoContext(ctx, "seeded predefined tags", slog.Int("count", len(names)))
	return true, nil
}

// Popular returns the limit most used tags. Equal counts keep id order.
func (s *TagService) Popular(ctx context.Context, limit int) ([]models.TagCount, error) {
	if limit <= 0 {
		return nil, models.NewValidationError("limit must be positive")
	}
	counts, err := s.tagRepo.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	sorted := append([]models.TagCount(nil), counts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecipeCount > sorted[j].RecipeCount
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// Categories lists the vocabulary's category names in declaration order.
func (s *TagService) Categories() []string {
	names := make([]string, 0, len(s.vocabulary))
	for _, c := range s.vocabulary {
		names = append(names, c.Name)
	}
	return names
}

// Category returns the curated tags of a category with their usage. Names
// that have no tag row yet are reported with a nil id and zero count.
func (s *TagService) Category(ctx context.Context, name string) ([]models.CategoryTag, error) {
	var category *TagCategory
	for i := range s.vocabulary {
		if strings.EqualFold(s.vocabulary[i].Name, strings.TrimSpace(name)) {
			category = &s.vocabulary[i]
			break
		}
	}
	if category == nil {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "Tag category '" + name + "' not found"}
	}

	counts, err := s.tagRepo.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.TagCount, len(counts))
	for _, c := range counts {
		byName[strings.ToLower(c.Name)] = c
	}

	out := make([]models.CategoryTag, 0, len(category.Tags))
	for _, tagName := range category.Tags {
		entry := models.CategoryTag{Name: tagName}
		if c, ok := byName[strings.ToLower(tagName)]; ok {
			id := c.ID
			entry.ID = &id
			entry.Name = c.Name
			entry.RecipeCount = c.RecipeCount
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *TagService) Rename(ctx context.Context, id uint, name string) (*models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.NewValidationError("Tag name is required")
	}
	return s.tagRepo.Rename(ctx, id, name)
}
