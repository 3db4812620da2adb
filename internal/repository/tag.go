package repository

import (
	"context"
	"errors"
	"strings"

	"recipebox/internal/cache"
	"recipebox/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines persistence operations for tags. Names are matched
// case-insensitively and stored with the casing of first use.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	ListWithCounts(ctx context.Context) ([]models.TagCount, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByNames(ctx context.Context, names []string) ([]models.Tag, error)
	FindOrCreate(ctx context.Context, names []string) ([]models.Tag, error)
	CreateBatch(ctx context.Context, names []string) error
	Count(ctx context.Context) (int64, error)
	Rename(ctx context.Context, id uint, name string) (*models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// ListWithCounts returns every tag, including unused ones, with the number
// of recipes carrying it, ordered by id.
func (r *tagRepository) ListWithCounts(ctx context.Context) ([]models.TagCount, error) {
	var counts []models.TagCount
	err := cache.Aside(ctx, "tag_counts", cache.TagCountsKey(), &counts, cache.TagCountsTTL, func() error {
		return r.db.WithContext(ctx).
			Table("tags").
			Select("tags.id, tags.name, COUNT(recipe_tags.recipe_id) AS recipe_count").
			Joins("LEFT JOIN recipe_tags ON recipe_tags.tag_id = tags.id").
			Group("tags.id, tags.name").
			Order("tags.id ASC").
			Scan(&counts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return counts, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// GetByName returns (nil, nil) when absent.
func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// GetByNames returns the existing tags among names. Missing names are skipped.
func (r *tagRepository) GetByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	lowered := uniqueStrings(names)
	if len(lowered) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("LOWER(name) IN ?", lowered).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// FindOrCreate resolves names to tags, creating the ones that do not exist
// yet. The result follows the order of first occurrence in names; blank and
// repeated names collapse.
func (r *tagRepository) FindOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	var result []models.Tag
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, created, err = resolveTags(tx, names)
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if created {
		cache.InvalidateTags(ctx)
	}
	return result, nil
}

// resolveTags is FindOrCreate inside the caller's transaction. It reports
// whether any tag row was inserted.
func resolveTags(tx *gorm.DB, names []string) ([]models.Tag, bool, error) {
	wanted := distinctNames(names)
	if len(wanted) == 0 {
		return []models.Tag{}, false, nil
	}

	byName, err := loadByLowerName(tx, wanted)
	if err != nil {
		return nil, false, err
	}

	var missing []models.Tag
	for _, n := range wanted {
		if _, ok := byName[strings.ToLower(n)]; !ok {
			missing = append(missing, models.Tag{Name: n})
		}
	}
	created := false
	if len(missing) > 0 {
		// A concurrent writer may insert the same name; the unique index
		// keeps one row and the reload below picks it up.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing).Error; err != nil {
			return nil, false, err
		}
		created = true
		if byName, err = loadByLowerName(tx, wanted); err != nil {
			return nil, false, err
		}
	}

	result := make([]models.Tag, 0, len(wanted))
	for _, n := range wanted {
		if t, ok := byName[strings.ToLower(n)]; ok {
			result = append(result, t)
		}
	}
	return result, created, nil
}

// CreateBatch inserts every name in one transaction.
func (r *tagRepository) CreateBatch(ctx context.Context, names []string) error {
	wanted := distinctNames(names)
	if len(wanted) == 0 {
		return nil
	}
	tags := make([]models.Tag, 0, len(wanted))
	for _, n := range wanted {
		tags = append(tags, models.Tag{Name: n})
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&tags, 100).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateError("Tag already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTags(ctx)
	return nil
}

func (r *tagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Rename changes a tag's name. Another tag already holding the name, in any
// casing, is a duplicate.
func (r *tagRepository) Rename(ctx context.Context, id uint, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	var tag models.Tag
	var owners []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Tag", id)
			}
			return err
		}
		var clash int64
		if err := tx.Model(&models.Tag{}).
			Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), id).
			Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return models.NewDuplicateError("Tag '" + name + "' already exists")
		}
		tag.Name = name
		if err := tx.Save(&tag).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewDuplicateError("Tag '" + name + "' already exists")
			}
			return err
		}
		var err error
		owners, err = recipeTagsTable.ownersOf(tx, id)
		return err
	})
	if err != nil {
		return nil, asAppError(err)
	}

	cache.InvalidateTags(ctx)
	for _, recipeID := range owners {
		cache.Invalidate(ctx, cache.RecipeKey(recipeID))
	}
	return &tag, nil
}

func loadByLowerName(tx *gorm.DB, names []string) (map[string]models.Tag, error) {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(n))
	}
	var tags []models.Tag
	if err := tx.Where("LOWER(name) IN ?", lowered).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]models.Tag, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = t
		}
	}
	return byName, nil
}

// distinctNames trims names and drops blanks and case-insensitive repeats,
// keeping the casing of first occurrence.
func distinctNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
