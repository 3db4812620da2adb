package database

import (
	"testing"

	modelspkg "recipebox/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesRecipeAggregate(t *testing.T) {
	var foundRecipe, foundBook, foundTag bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.Recipe:
			foundRecipe = true
		case *modelspkg.RecipeBook:
			foundBook = true
		case *modelspkg.Tag:
			foundTag = true
		}
	}
	require.True(t, foundRecipe, "PersistentModels should include Recipe")
	require.True(t, foundBook, "PersistentModels should include RecipeBook")
	require.True(t, foundTag, "PersistentModels should include Tag")
}
