package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"recipebox/internal/middleware"
)

const (
	recipeKeyFormat = "recipe:%d"
	tagCountsKey    = "tags:counts"
)

// TTLs per key family.
const (
	RecipeTTL    = 10 * time.Minute
	TagCountsTTL = 5 * time.Minute
)

// RecipeKey is the cache key of a single recipe with its tags.
func RecipeKey(recipeID uint) string {
	return fmt.Sprintf(recipeKeyFormat, recipeID)
}

// TagCountsKey is the cache key of the tag list with recipe counts.
func TagCountsKey() string {
	return tagCountsKey
}

// Invalidate deletes keys, logging (not returning) failures.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()),
		)
	}
}

// InvalidateRecipe drops a recipe and the tag counts it contributes to.
func InvalidateRecipe(ctx context.Context, recipeID uint) {
	Invalidate(ctx, RecipeKey(recipeID), TagCountsKey())
}

// InvalidateTags drops the cached tag counts.
func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagCountsKey())
}
