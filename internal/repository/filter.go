package repository

import (
	"encoding/json"
	"strings"

	"recipebox/internal/models"

	"gorm.io/gorm"
)

// RecipeFilter holds independently optional search criteria. A nil pointer
// or empty slice leaves that criterion out; present criteria are ANDed.
type RecipeFilter struct {
	Title          *string
	IngredientName *string
	AuthorID       *uint
	AuthorName     *string
	IsPublic       *bool
	Cooked         *bool
	Favourite      *bool
	Tag            *string
	AnyTags        []string
	AllTags        []string
}

// Criteria returns the number of criteria present.
func (f RecipeFilter) Criteria() int {
	n := 0
	for _, present := range []bool{
		f.Title != nil,
		f.IngredientName != nil,
		f.AuthorID != nil,
		f.AuthorName != nil,
		f.IsPublic != nil,
		f.Cooked != nil,
		f.Favourite != nil,
		f.Tag != nil,
		len(uniqueStrings(f.AnyTags)) > 0,
		len(uniqueStrings(f.AllTags)) > 0,
	} {
		if present {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no criterion is present.
func (f RecipeFilter) IsEmpty() bool {
	return f.Criteria() == 0
}

// IsAuthorOnly reports whether the filter names an author (by id or name)
// and nothing else.
func (f RecipeFilter) IsAuthorOnly() bool {
	return f.Criteria() == 1 && (f.AuthorID != nil || f.AuthorName != nil)
}

// Scopes returns one gorm scope per present criterion. Applied together
// they restrict a query on recipes to the AND of all criteria; with no
// criteria the query is unrestricted.
func (f RecipeFilter) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0, 10)

	if f.Title != nil {
		scopes = append(scopes, containsFold("recipes.title", *f.Title))
	}
	if f.IngredientName != nil {
		scopes = append(scopes, containsFold("recipes.ingredients", *f.IngredientName))
	}
	if f.AuthorID != nil {
		scopes = append(scopes, equals("recipes.author_id", *f.AuthorID))
	}
	if f.AuthorName != nil {
		scopes = append(scopes, authorNamed(*f.AuthorName))
	}
	if f.IsPublic != nil {
		scopes = append(scopes, equals("recipes.is_public", *f.IsPublic))
	}
	if f.Cooked != nil {
		scopes = append(scopes, equals("recipes.cooked", *f.Cooked))
	}
	if f.Favourite != nil {
		scopes = append(scopes, equals("recipes.favourite", *f.Favourite))
	}
	if f.Tag != nil {
		scopes = append(scopes, hasAnyTag([]string{*f.Tag}))
	}
	if names := uniqueStrings(f.AnyTags); len(names) > 0 {
		scopes = append(scopes, hasAnyTag(names))
	}
	if names := uniqueStrings(f.AllTags); len(names) > 0 {
		scopes = append(scopes, hasAllTags(names))
	}

	return scopes
}

func containsFold(column, value string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(strings.ToLower(value)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
	}
}

func equals(column string, value interface{}) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", value)
	}
}

func authorNamed(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"recipes.author_id IN (SELECT u.id FROM users u WHERE LOWER(u.username) = ? AND u.deleted = ?)",
			strings.ToLower(name), false,
		)
	}
}

func hasAnyTag(names []string) func(*gorm.DB) *gorm.DB {
	lowered := uniqueStrings(names)
	return func(db *gorm.DB) *gorm.DB {
		if len(lowered) == 0 {
			// A blank single tag can match nothing.
			return db.Where("1 = 0")
		}
		return db.Where(
			"EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = recipes.id AND LOWER(t.name) IN ?)",
			lowered,
		)
	}
}

// hasAllTags counts distinct matching names per recipe so a tag attached
// twice cannot stand in for a missing one.
func hasAllTags(lowered []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"recipes.id IN (SELECT rt.recipe_id FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE LOWER(t.name) IN ? GROUP BY rt.recipe_id HAVING COUNT(DISTINCT LOWER(t.name)) = ?)",
			lowered, len(lowered),
		)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Match evaluates the filter against an already loaded recipe. Author name
// criteria need r.Author; tag criteria need r.Tags.
func (f RecipeFilter) Match(r *models.Recipe) bool {
	if f.Title != nil && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(*f.Title)) {
		return false
	}
	if f.IngredientName != nil {
		blob, err := json.Marshal(r.Ingredients)
		if err != nil || !strings.Contains(strings.ToLower(string(blob)), strings.ToLower(*f.IngredientName)) {
			return false
		}
	}
	if f.AuthorID != nil && r.AuthorID != *f.AuthorID {
		return false
	}
	if f.AuthorName != nil {
		if r.Author == nil || r.Author.Deleted || !strings.EqualFold(r.Author.Username, *f.AuthorName) {
			return false
		}
	}
	if f.IsPublic != nil && r.IsPublic != *f.IsPublic {
		return false
	}
	if f.Cooked != nil && r.Cooked != *f.Cooked {
		return false
	}
	if f.Favourite != nil && r.Favourite != *f.Favourite {
		return false
	}

	have := make(map[string]struct{}, len(r.Tags))
	for _, t := range r.Tags {
		have[strings.ToLower(t.Name)] = struct{}{}
	}
	if f.Tag != nil {
		if _, ok := have[strings.ToLower(strings.TrimSpace(*f.Tag))]; !ok {
			return false
		}
	}
	if names := uniqueStrings(f.AnyTags); len(names) > 0 {
		found := false
		for _, n := range names {
			if _, ok := have[n]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, n := range uniqueStrings(f.AllTags) {
		if _, ok := have[n]; !ok {
			return false
		}
	}
	return true
}

// FilterRecipes returns the recipes matching f, in input order.
func FilterRecipes(recipes []models.Recipe, f RecipeFilter) []models.Recipe {
	out := make([]models.Recipe, 0, len(recipes))
	for i := range recipes {
		if f.Match(&recipes[i]) {
			out = append(out, recipes[i])
		}
	}
	return out
}
