package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{ID: 7, Name: "Pasta"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "recipe", RecipeKey(7), &first, RecipeTTL, fetch(&first)))
	assert.Equal(t, "Pasta", first.Name)
	assert.True(t, mr.Exists("recipe:7"))
	assert.Equal(t, RecipeTTL, mr.TTL("recipe:7"))

	var second cachedThing
	require.NoError(t, Aside(ctx, "recipe", RecipeKey(7), &second, RecipeTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second read should be served from cache")
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	var dest cachedThing
	err := Aside(context.Background(), "recipe", RecipeKey(9), &dest, RecipeTTL, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("recipe:9"))
}

func TestAside_NoClientFallsThrough(t *testing.T) {
	SetClient(nil)
	var dest cachedThing
	err := Aside(context.Background(), "tags", TagCountsKey(), &dest, TagCountsTTL, func() error {
		dest.Name = "fresh"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", dest.Name)
}

func TestAside_CorruptEntryRefetches(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set("recipe:3", "{not json"))

	var dest cachedThing
	err := Aside(context.Background(), "recipe", RecipeKey(3), &dest, RecipeTTL, func() error {
		dest = cachedThing{ID: 3, Name: "Soup"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Soup", dest.Name)

	got, err := mr.Get("recipe:3")
	require.NoError(t, err)
	assert.Contains(t, got, "Soup")
}

func TestInvalidateRecipe(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set(RecipeKey(1), "{}"))
	require.NoError(t, mr.Set(TagCountsKey(), "[]"))
	require.NoError(t, mr.Set(RecipeKey(2), "{}"))

	InvalidateRecipe(context.Background(), 1)

	assert.False(t, mr.Exists(RecipeKey(1)))
	assert.False(t, mr.Exists(TagCountsKey()))
	assert.True(t, mr.Exists(RecipeKey(2)))
}

func TestInitRedis_Unreachable(t *testing.T) {
	InitRedis("127.0.0.1:1")
	assert.Nil(t, GetClient())

	InitRedis("redis://%%bad")
	assert.Nil(t, GetClient())
}

func TestInitRedis_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	t.Cleanup(func() { _ = Close() })
	require.NotNil(t, GetClient())
	assert.NoError(t, GetClient().Ping(context.Background()).Err())
}
