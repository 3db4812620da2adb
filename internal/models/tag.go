package models

// Tag is a label attachable to many recipes.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// TagCount pairs a tag with the number of recipes carrying it.
type TagCount struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	RecipeCount int64  `json:"recipe_count"`
}

// CategoryTag is a curated tag name within a category. ID is nil when the tag
// has not been created yet.
type CategoryTag struct {
	ID          *uint  `json:"id"`
	Name        string `json:"name"`
	RecipeCount int64  `json:"recipe_count"`
}
