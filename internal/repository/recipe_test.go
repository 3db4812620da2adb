package repository

import (
	"context"
	"testing"

	"recipebox/internal/cache"
	"recipebox/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")

	recipe := createTestRecipe(t, db, &models.Recipe{
		Title:        "Pasta",
		Ingredients:  []models.Ingredient{{Name: "Spaghetti", Quantity: "200", Unit: "g"}},
		Instructions: []string{"Boil water", "Cook pasta"},
		AuthorID:     chef.ID,
	}, "Italian", "Dinner")
	require.NotZero(t, recipe.ID)

	got, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pasta", got.Title)
	assert.Equal(t, []string{"Boil water", "Cook pasta"}, got.Instructions)
	assert.Equal(t, "Spaghetti", got.Ingredients[0].Name)
	assert.Equal(t, []string{"Italian", "Dinner"}, got.TagNames())
	assert.Nil(t, got.OriginalRecipeID)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestRecipeRepository_ListByAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	other := createTestUser(t, db, "other")

	createTestRecipe(t, db, &models.Recipe{Title: "a", AuthorID: chef.ID, IsPublic: true})
	createTestRecipe(t, db, &models.Recipe{Title: "b", AuthorID: chef.ID, Cooked: true})
	createTestRecipe(t, db, &models.Recipe{Title: "c", AuthorID: chef.ID, Favourite: true})
	createTestRecipe(t, db, &models.Recipe{Title: "d", AuthorID: other.ID, IsPublic: true})

	tests := []struct {
		flags RecipeFlags
		want  []string
	}{
		{FlagsAll, []string{"a", "b", "c"}},
		{FlagsPublic, []string{"a"}},
		{FlagsCooked, []string{"b"}},
		{FlagsFavourite, []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.flags), func(t *testing.T) {
			recipes, err := repo.ListByAuthor(ctx, chef.ID, tt.flags)
			require.NoError(t, err)
			titles := make([]string, 0, len(recipes))
			for _, r := range recipes {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	public, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 2)

	stats, err := repo.Stats(ctx, chef.ID)
	require.NoError(t, err)
	assert.Equal(t, RecipeStats{Total: 3, Public: 1, Cooked: 1, Favourite: 1}, *stats)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestParseRecipeFlags(t *testing.T) {
	f, ok := ParseRecipeFlags("")
	assert.True(t, ok)
	assert.Equal(t, FlagsAll, f)

	f, ok = ParseRecipeFlags("favourite")
	assert.True(t, ok)
	assert.Equal(t, FlagsFavourite, f)

	_, ok = ParseRecipeFlags("archived")
	assert.False(t, ok)
}

func TestRecipeRepository_UpdateClearsImage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")

	recipe := createTestRecipe(t, db, &models.Recipe{
		Title:    "Toast",
		AuthorID: chef.ID,
		ImageKey: strPtr("recipes/0f8fad5b-d9cb-469f-a165-70867728950e.png"),
	}, "Breakfast")

	recipe.ImageKey = nil
	recipe.Title = "Better Toast"
	require.NoError(t, repo.Update(ctx, recipe, nil))

	got, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ImageKey)
	assert.Equal(t, "Better Toast", got.Title)
	assert.Equal(t, []string{"Breakfast"}, got.TagNames(), "update leaves tags alone")
}

func TestRecipeRepository_UpdateTagsAndLikes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	recipe := createTestRecipe(t, db, &models.Recipe{Title: "Soup", AuthorID: chef.ID}, "Winter", "Easy")

	require.NoError(t, repo.Update(ctx, recipe, []string{"easy", "Vegan"}))
	assert.Equal(t, []string{"Easy", "Vegan"}, recipe.TagNames(), "existing tags keep their casing")

	got, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Easy", "Vegan"}, got.TagNames())

	require.NoError(t, repo.Update(ctx, recipe, []string{}))
	got, err = repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags, "an empty tag list clears the set")

	require.NoError(t, repo.UpdateLikeCount(ctx, recipe.ID, 42))
	got, err = repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, got.LikeCount)

	assert.True(t, models.IsNotFound(repo.UpdateLikeCount(ctx, 999, 1)))
}

func TestRecipeRepository_DeleteClearsLinks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	books := NewRecipeBookRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	recipe := createTestRecipe(t, db, &models.Recipe{Title: "Stew", AuthorID: chef.ID}, "Winter")

	book := &models.RecipeBook{Name: "Favourites", UserID: chef.ID}
	require.NoError(t, books.Create(ctx, book, []uint{recipe.ID}))

	released, err := repo.Delete(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, released)
	_, err = repo.Delete(ctx, recipe.ID)
	assert.True(t, models.IsNotFound(err))

	var tagLinks, bookLinks int64
	require.NoError(t, db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Count(&tagLinks).Error)
	require.NoError(t, db.Table("recipe_book_recipes").Where("recipe_id = ?", recipe.ID).Count(&bookLinks).Error)
	assert.Zero(t, tagLinks)
	assert.Zero(t, bookLinks)

	got, err := books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Recipes)
}

func TestRecipeRepository_DeleteReleasesImageOnlyWhenUnshared(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	key := "recipes/0f8fad5b-d9cb-469f-a165-70867728950e.jpg"

	source := createTestRecipe(t, db, &models.Recipe{Title: "Tart", AuthorID: chef.ID, ImageKey: strPtr(key)})
	fork := createTestRecipe(t, db, &models.Recipe{
		Title:            "Tart (Forked)",
		AuthorID:         chef.ID,
		ImageKey:         strPtr(key),
		OriginalRecipeID: &source.ID,
	})

	released, err := repo.Delete(ctx, fork.ID)
	require.NoError(t, err)
	assert.Nil(t, released, "the source still shows the image")

	released, err = repo.Delete(ctx, source.ID)
	require.NoError(t, err)
	require.NotNil(t, released)
	assert.Equal(t, key, *released)
}

func TestRecipeRepository_UpdateRollsBackOnTagFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	recipe := createTestRecipe(t, db, &models.Recipe{Title: "Chili", AuthorID: chef.ID}, "Spicy")

	require.NoError(t, db.Exec(`CREATE TRIGGER tags_read_only BEFORE INSERT ON tags
		BEGIN SELECT RAISE(ABORT, 'tags are read only'); END`).Error)

	recipe.Title = "Mild Chili"
	recipe.Cooked = true
	err := repo.Update(ctx, recipe, []string{"Spicy", "Smoky"})
	require.Error(t, err)

	got, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chili", got.Title)
	assert.False(t, got.Cooked)
	assert.Equal(t, []string{"Spicy"}, got.TagNames())
}

func TestRecipeRepository_GetByIDCacheInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()
	chef := createTestUser(t, db, "chef")
	recipe := createTestRecipe(t, db, &models.Recipe{Title: "Cached", AuthorID: chef.ID})

	_, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.RecipeKey(recipe.ID)))

	// A write behind the repository's back is hidden by the cache.
	require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Update("title", "Changed").Error)
	got, err := repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Title)

	require.NoError(t, repo.UpdateLikeCount(ctx, recipe.ID, 3))
	assert.False(t, mr.Exists(cache.RecipeKey(recipe.ID)))

	got, err = repo.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.Title)
	assert.Equal(t, 3, got.LikeCount)
}
