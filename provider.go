package recipehub

import "context"

// Provider is the interface recipe source adapters must implement.
// Implementations own their wire formats and translate into the shared
// Recipe/Category model. Network calls are expected to go through the
// Optimizer, which remains the call-accounting authority; a provider's
// own quota check is only an early-exit optimization.
type Provider interface {
	// Name returns the provider identifier (e.g. "themealdb").
	Name() string

	// DailyQuota returns the provider's daily call budget.
	DailyQuota() int

	// RemainingCalls returns how many calls are left today.
	RemainingCalls(ctx context.Context) (int, error)

	// GetByID returns the recipe with the given id, or nil if the
	// provider does not know it.
	GetByID(ctx context.Context, id int) (*Recipe, error)

	// SearchByName returns up to limit recipes matching name.
	SearchByName(ctx context.Context, name string, limit int) ([]Recipe, error)

	// GetRandom returns up to count random recipes.
	GetRandom(ctx context.Context, count int) ([]Recipe, error)

	// Categories returns the provider's category taxonomy.
	Categories(ctx context.Context) ([]Category, error)

	// ByCategory returns up to limit recipes in a category.
	ByCategory(ctx context.Context, category string, limit int) ([]Recipe, error)

	// Cuisines returns the provider's cuisine names.
	Cuisines(ctx context.Context) ([]string, error)

	// ByCuisine returns up to limit recipes of a cuisine.
	ByCuisine(ctx context.Context, cuisine string, limit int) ([]Recipe, error)

	// Ingredients returns the provider's known ingredient names.
	Ingredients(ctx context.Context) ([]string, error)

	// ByIngredient returns up to limit recipes using an ingredient.
	ByIngredient(ctx context.Context, ingredient string, limit int) ([]Recipe, error)

	// IncrementUsage records count calls against the provider's quota.
	IncrementUsage(count int)

	// ResetDailyCounter clears today's usage.
	ResetDailyCounter()
}
