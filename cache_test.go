package recipehub_test

import (
	"context"
	"testing"
	"time"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
	"github.com/DavidDuveau/RecipeHub-sub000/cache/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "recipe_42", recipehub.Key("recipe", 42))
	assert.Equal(t, "search_pasta_10", recipehub.Key("search", "pasta", 10))
	assert.Equal(t, "categories", recipehub.Key("categories"))

	// Equivalent logical queries normalize to the same key.
	assert.Equal(t,
		recipehub.Key("search", "pasta", 10),
		recipehub.Key("search", "  Pasta ", 10),
	)
	assert.NotEqual(t,
		recipehub.Key("search", "pasta", 10),
		recipehub.Key("search", "pasta", 20),
	)
}

func TestCachedAsStoreAsRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := memory.New(time.Minute)
	t.Cleanup(c.Close)

	in := recipehub.Recipe{
		ID:       42,
		Name:     "Spaghetti Carbonara",
		Cuisine:  "Italian",
		Provider: "themealdb",
		Ingredients: []recipehub.Ingredient{
			{Name: "Spaghetti", Measure: "400g"},
			{Name: "Eggs", Measure: "4"},
		},
	}
	recipehub.StoreAs(ctx, c, "recipe_42", in, time.Minute)

	out, ok := recipehub.CachedAs[recipehub.Recipe](ctx, c, "recipe_42")
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestCachedAs_MissConditions(t *testing.T) {
	ctx := context.Background()
	c := memory.New(time.Minute)
	t.Cleanup(c.Close)

	// Nil cache and empty key read as misses.
	_, ok := recipehub.CachedAs[int](ctx, nil, "k")
	assert.False(t, ok)
	_, ok = recipehub.CachedAs[int](ctx, c, "")
	assert.False(t, ok)
	_, ok = recipehub.CachedAs[int](ctx, c, "absent")
	assert.False(t, ok)

	// A decode mismatch reads as a miss, not an error.
	require.NoError(t, c.Set(ctx, "str", []byte(`"hello"`), time.Minute))
	_, ok = recipehub.CachedAs[int](ctx, c, "str")
	assert.False(t, ok)
}

func TestStoreAs_SkipsNullAndZeroTTL(t *testing.T) {
	ctx := context.Background()
	c := memory.New(time.Minute)
	t.Cleanup(c.Close)

	// A nil pointer marshals to null and must not be cached: it would
	// mask a later successful fetch.
	var nilRecipe *recipehub.Recipe
	recipehub.StoreAs(ctx, c, "nil_recipe", nilRecipe, time.Minute)
	exists, err := c.Exists(ctx, "nil_recipe")
	require.NoError(t, err)
	assert.False(t, exists)

	// Zero TTL disables storage.
	recipehub.StoreAs(ctx, c, "no_ttl", 42, 0)
	exists, err = c.Exists(ctx, "no_ttl")
	require.NoError(t, err)
	assert.False(t, exists)

	// An empty slice is valid cached content: "no results" is an
	// answer.
	recipehub.StoreAs(ctx, c, "empty_list", []recipehub.Recipe{}, time.Minute)
	out, ok := recipehub.CachedAs[[]recipehub.Recipe](ctx, c, "empty_list")
	assert.True(t, ok)
	assert.Empty(t, out)
}
