package repository

import (
	"context"
	"testing"

	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeBookRepository_CreateIsAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeBookRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	recipe := createTestRecipe(t, db, &models.Recipe{Title: "Pie", AuthorID: chef.ID})

	book := &models.RecipeBook{Name: "Baking", UserID: chef.ID}
	err := repo.Create(ctx, book, []uint{recipe.ID, 404})
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Contains(t, err.Error(), "404")

	var count int64
	require.NoError(t, db.Model(&models.RecipeBook{}).Where("user_id = ?", chef.ID).Count(&count).Error)
	assert.Zero(t, count, "nothing written when a recipe id is unknown")

	book = &models.RecipeBook{Name: "Baking", UserID: chef.ID}
	require.NoError(t, repo.Create(ctx, book, []uint{recipe.ID, recipe.ID}))

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{recipe.ID}, got.RecipeIDs())
}

func TestRecipeBookRepository_Listing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeBookRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	other := createTestUser(t, db, "other")

	require.NoError(t, repo.Create(ctx, &models.RecipeBook{Name: "Open", UserID: chef.ID, IsPublic: true}, nil))
	require.NoError(t, repo.Create(ctx, &models.RecipeBook{Name: "Secret", UserID: chef.ID}, nil))
	require.NoError(t, repo.Create(ctx, &models.RecipeBook{Name: "Theirs", UserID: other.ID, IsPublic: true}, nil))

	public, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 2)

	mine, err := repo.ListByUser(ctx, chef.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Open", mine[0].Name)
	assert.Equal(t, "Secret", mine[1].Name)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestRecipeBookRepository_Membership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeBookRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	a := createTestRecipe(t, db, &models.Recipe{Title: "a", AuthorID: chef.ID}, "Quick")
	b := createTestRecipe(t, db, &models.Recipe{Title: "b", AuthorID: chef.ID})
	c := createTestRecipe(t, db, &models.Recipe{Title: "c", AuthorID: chef.ID})

	book := &models.RecipeBook{Name: "Weeknight", UserID: chef.ID}
	require.NoError(t, repo.Create(ctx, book, []uint{a.ID, b.ID}))

	require.NoError(t, repo.Update(ctx, book, []uint{c.ID, b.ID}))
	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, got.RecipeIDs())

	book.Name = "Never saved"
	assert.True(t, models.IsNotFound(repo.Update(ctx, book, []uint{404})))
	got, err = repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weeknight", got.Name)
	assert.Equal(t, []uint{b.ID, c.ID}, got.RecipeIDs(), "failed replace keeps membership")

	require.NoError(t, repo.AddRecipe(ctx, book.ID, a.ID))
	require.NoError(t, repo.AddRecipe(ctx, book.ID, a.ID))
	got, err = repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID, c.ID}, got.RecipeIDs())
	assert.Equal(t, []string{"Quick"}, got.Recipes[0].TagNames())

	require.NoError(t, repo.RemoveRecipe(ctx, book.ID, b.ID))
	assert.True(t, models.IsNotFound(repo.RemoveRecipe(ctx, book.ID, b.ID)))

	book.Name = "Weekend"
	book.IsPublic = true
	require.NoError(t, repo.Update(ctx, book, nil))
	got, err = repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekend", got.Name)
	assert.True(t, got.IsPublic)
	assert.Equal(t, []uint{a.ID, c.ID}, got.RecipeIDs())

	require.NoError(t, repo.Delete(ctx, book.ID))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, book.ID)))

	var links int64
	require.NoError(t, db.Table("recipe_book_recipes").Where("recipe_book_id = ?", book.ID).Count(&links).Error)
	assert.Zero(t, links)
}

func TestRecipeBookRepository_UpdateRollsBackMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeBookRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	first := createTestRecipe(t, db, &models.Recipe{Title: "first", AuthorID: chef.ID})
	second := createTestRecipe(t, db, &models.Recipe{Title: "second", AuthorID: chef.ID})

	book := &models.RecipeBook{Name: "Sunday", UserID: chef.ID}
	require.NoError(t, repo.Create(ctx, book, []uint{first.ID}))

	require.NoError(t, db.Exec(`CREATE TRIGGER recipe_books_frozen BEFORE UPDATE ON recipe_books
		BEGIN SELECT RAISE(ABORT, 'recipe books are frozen'); END`).Error)

	book.Name = "Renamed"
	require.Error(t, repo.Update(ctx, book, []uint{second.ID}))

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunday", got.Name)
	assert.Equal(t, []uint{first.ID}, got.RecipeIDs())
}
