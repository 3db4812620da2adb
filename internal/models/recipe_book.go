package models

import "time"

// RecipeBook is a named collection of recipes owned by a user. Membership is
// not tied to recipe authorship.
type RecipeBook struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `gorm:"not null;default:false;index" json:"is_public"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Recipes     []Recipe  `gorm:"many2many:recipe_book_recipes;" json:"recipes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecipeIDs returns the ids of the member recipes.
func (b *RecipeBook) RecipeIDs() []uint {
	ids := make([]uint, 0, len(b.Recipes))
	for _, r := range b.Recipes {
		ids = append(ids, r.ID)
	}
	return ids
}
