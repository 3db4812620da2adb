package database

import "recipebox/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Join tables are created through the many2many associations.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Recipe{},
		&models.RecipeBook{},
	}
}
