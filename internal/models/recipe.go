package models

import "time"

// Ingredient is a value owned by its Recipe. Ingredients are persisted as one
// serialized column, never as rows of their own.
type Ingredient struct {
	Name     string `json:"name"`
	Unit     string `json:"unit,omitempty"`
	Quantity string `json:"quantity,omitempty"`
}

// Recipe represents a recipe authored by a user.
type Recipe struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Title        string       `gorm:"not null;index" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Ingredients  []Ingredient `gorm:"type:text;serializer:json" json:"ingredients"`
	Instructions []string     `gorm:"type:text;serializer:json" json:"instructions"`
	ImageKey     *string      `json:"image_key,omitempty"`
	IsPublic     bool         `gorm:"not null;default:false;index" json:"is_public"`
	Cooked       bool         `gorm:"not null;default:false" json:"cooked"`
	Favourite    bool         `gorm:"not null;default:false" json:"favourite"`
	LikeCount    int          `gorm:"not null;default:0" json:"like_count"`
	AuthorID     uint         `gorm:"not null;index" json:"author_id"`
	Author       *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	// OriginalRecipeID is the fork source. It is a plain id with no constraint
	// so the source can be deleted independently.
	OriginalRecipeID *uint     `gorm:"index" json:"original_recipe_id,omitempty"`
	Tags             []Tag     `gorm:"many2many:recipe_tags;" json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TagNames returns the names of the recipe's tags in their loaded order.
func (r *Recipe) TagNames() []string {
	names := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		names = append(names, t.Name)
	}
	return names
}
