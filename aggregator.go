package recipehub

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Aggregator unifies every registered provider behind one API. Logical
// queries fan out to all providers concurrently, results are
// deduplicated by recipe id in priority order, and consolidated answers
// are cached. A provider that fails or is out of quota contributes
// nothing; an empty result is a valid, non-error outcome.
type Aggregator struct {
	optimizer  *Optimizer
	cache      Cache
	byName     map[string]Provider
	registered []string // registration order

	mu       sync.RWMutex
	priority []string
}

// NewAggregator creates an Aggregator over the given providers. The
// default priority order is registration order.
func NewAggregator(providers []Provider, optimizer *Optimizer, cache Cache) (*Aggregator, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: at least one provider is required", ErrInvalidArgument)
	}

	a := &Aggregator{
		optimizer: optimizer,
		cache:     cache,
		byName:    make(map[string]Provider, len(providers)),
	}
	for _, p := range providers {
		if _, dup := a.byName[p.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate provider %q", ErrInvalidArgument, p.Name())
		}
		a.byName[p.Name()] = p
		a.registered = append(a.registered, p.Name())
	}
	a.priority = append([]string(nil), a.registered...)
	return a, nil
}

// Priority returns the current provider priority order.
func (a *Aggregator) Priority() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.priority...)
}

// SetPriority reorders providers. The order may be partial: omitted
// providers are appended in registration order. Names that don't match
// a registered provider are rejected.
func (a *Aggregator) SetPriority(order []string) error {
	seen := make(map[string]bool, len(order))
	next := make([]string, 0, len(a.registered))
	for _, name := range order {
		if _, ok := a.byName[name]; !ok {
			return fmt.Errorf("%w: unknown provider %q in priority order", ErrInvalidArgument, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate provider %q in priority order", ErrInvalidArgument, name)
		}
		seen[name] = true
		next = append(next, name)
	}
	for _, name := range a.registered {
		if !seen[name] {
			next = append(next, name)
		}
	}

	a.mu.Lock()
	a.priority = next
	a.mu.Unlock()
	return nil
}

// GetByID looks a recipe up by id, trying preferredProvider first when
// given and registered. The result cache is keyed by id alone, shared
// across providers. Quota refusals and fallback signals from one
// provider mean "try the next"; a nil recipe with nil error means no
// provider had it.
func (a *Aggregator) GetByID(ctx context.Context, id int, preferredProvider string) (*Recipe, error) {
	key := Key("recipe", id)
	if r, ok := CachedAs[*Recipe](ctx, a.cache, key); ok {
		return r, nil
	}

	if p, ok := a.byName[preferredProvider]; ok {
		if r := a.lookupByID(ctx, p, id); r != nil {
			StoreAs(ctx, a.cache, key, r, TTLRecipe)
			return r, nil
		}
	}
	for _, name := range a.Priority() {
		if name == preferredProvider {
			continue
		}
		if r := a.lookupByID(ctx, a.byName[name], id); r != nil {
			StoreAs(ctx, a.cache, key, r, TTLRecipe)
			return r, nil
		}
	}
	return nil, nil
}

// lookupByID tries one provider through the optimizer, swallowing
// quota refusals, fallback signals and lookup failures alike.
func (a *Aggregator) lookupByID(ctx context.Context, p Provider, id int) *Recipe {
	r, err := Execute(ctx, a.optimizer, Call{Provider: p.Name()}, func(ctx context.Context) (*Recipe, error) {
		return p.GetByID(ctx, id)
	})
	if err != nil {
		return nil
	}
	return r
}

// SearchByName returns the consolidated, priority-deduplicated results
// of a name search across all providers.
func (a *Aggregator) SearchByName(ctx context.Context, name string, limit int) ([]Recipe, error) {
	return a.searchConsolidated(ctx, Key("search", name, limit), func(ctx context.Context, p Provider) ([]Recipe, error) {
		return p.SearchByName(ctx, name, limit)
	})
}

// GetByCategory returns all providers' recipes in a category,
// deduplicated in priority order.
func (a *Aggregator) GetByCategory(ctx context.Context, category string, limit int) ([]Recipe, error) {
	return a.searchConsolidated(ctx, Key("category", category, limit), func(ctx context.Context, p Provider) ([]Recipe, error) {
		return p.ByCategory(ctx, category, limit)
	})
}

// GetByCuisine returns all providers' recipes of a cuisine,
// deduplicated in priority order.
func (a *Aggregator) GetByCuisine(ctx context.Context, cuisine string, limit int) ([]Recipe, error) {
	return a.searchConsolidated(ctx, Key("cuisine", cuisine, limit), func(ctx context.Context, p Provider) ([]Recipe, error) {
		return p.ByCuisine(ctx, cuisine, limit)
	})
}

// GetByIngredient returns all providers' recipes using an ingredient,
// deduplicated in priority order.
func (a *Aggregator) GetByIngredient(ctx context.Context, ingredient string, limit int) ([]Recipe, error) {
	return a.searchConsolidated(ctx, Key("ingredient", ingredient, limit), func(ctx context.Context, p Provider) ([]Recipe, error) {
		return p.ByIngredient(ctx, ingredient, limit)
	})
}

// searchConsolidated is the shared body of the fan-out query
// operations: consolidated cache check, concurrent per-provider query,
// priority-ordered merge, cache store.
func (a *Aggregator) searchConsolidated(ctx context.Context, key string, query func(context.Context, Provider) ([]Recipe, error)) ([]Recipe, error) {
	if r, ok := CachedAs[[]Recipe](ctx, a.cache, key); ok {
		return r, nil
	}
	merged := a.mergeByPriority(a.fanOut(ctx, query))
	StoreAs(ctx, a.cache, key, merged, TTLRecipeList)
	return merged, nil
}

// fanOut runs query against every provider concurrently. Each task
// goes through the optimizer so quota accounting and rate limiting
// still apply. Individual provider failures are discarded without
// aborting the siblings.
func (a *Aggregator) fanOut(ctx context.Context, query func(context.Context, Provider) ([]Recipe, error)) map[string][]Recipe {
	var mu sync.Mutex
	results := make(map[string][]Recipe, len(a.byName))

	g := new(errgroup.Group)
	for _, name := range a.Priority() {
		p := a.byName[name]
		g.Go(func() error {
			recipes, err := Execute(ctx, a.optimizer, Call{Provider: p.Name()}, func(ctx context.Context) ([]Recipe, error) {
				return query(ctx, p)
			})
			if err != nil || len(recipes) == 0 {
				return nil
			}
			mu.Lock()
			results[p.Name()] = recipes
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// mergeByPriority flattens per-provider results in priority order,
// keeping the first recipe seen for each id: a higher-priority
// provider's copy of an id always wins.
func (a *Aggregator) mergeByPriority(results map[string][]Recipe) []Recipe {
	seen := make(map[int]bool)
	var merged []Recipe
	for _, name := range a.Priority() {
		for _, r := range results[name] {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			merged = append(merged, r)
		}
	}
	return merged
}

// GetRandom returns up to count random recipes, splitting the request
// as evenly as possible across providers (remainder to the first
// providers in priority order). The output is truncated to exactly
// count; it may be shorter if providers under-deliver. Never cached:
// variety is the point.
func (a *Aggregator) GetRandom(ctx context.Context, count int) ([]Recipe, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidArgument, count)
	}

	order := a.Priority()
	base, extra := count/len(order), count%len(order)

	var mu sync.Mutex
	results := make(map[string][]Recipe, len(order))

	g := new(errgroup.Group)
	for i, name := range order {
		n := base
		if i < extra {
			n++
		}
		if n == 0 {
			continue
		}
		p := a.byName[name]
		g.Go(func() error {
			recipes, err := Execute(ctx, a.optimizer, Call{Provider: p.Name()}, func(ctx context.Context) ([]Recipe, error) {
				return p.GetRandom(ctx, n)
			})
			if err != nil {
				return nil
			}
			mu.Lock()
			results[p.Name()] = recipes
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var out []Recipe
	for _, name := range order {
		out = append(out, results[name]...)
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

// Categories returns the union of every provider's category taxonomy,
// deduplicated by name case-insensitively and sorted.
func (a *Aggregator) Categories(ctx context.Context) ([]Category, error) {
	key := Key("categories")
	if c, ok := CachedAs[[]Category](ctx, a.cache, key); ok {
		return c, nil
	}

	var mu sync.Mutex
	byName := make(map[string]Category)

	g := new(errgroup.Group)
	for _, name := range a.registered {
		p := a.byName[name]
		g.Go(func() error {
			cats, err := Execute(ctx, a.optimizer, Call{Provider: p.Name()}, func(ctx context.Context) ([]Category, error) {
				return p.Categories(ctx)
			})
			if err != nil {
				return nil
			}
			mu.Lock()
			for _, c := range cats {
				k := strings.ToLower(strings.TrimSpace(c.Name))
				if k == "" {
					continue
				}
				if _, ok := byName[k]; !ok {
					byName[k] = c
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Category, 0, len(byName))
	for _, c := range byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	StoreAs(ctx, a.cache, key, out, TTLTaxonomy)
	return out, nil
}

// Cuisines returns the union of every provider's cuisine names.
func (a *Aggregator) Cuisines(ctx context.Context) ([]string, error) {
	return a.unionNames(ctx, Key("cuisines"), func(ctx context.Context, p Provider) ([]string, error) {
		return p.Cuisines(ctx)
	})
}

// Ingredients returns the union of every provider's ingredient names.
func (a *Aggregator) Ingredients(ctx context.Context) ([]string, error) {
	return a.unionNames(ctx, Key("ingredients"), func(ctx context.Context, p Provider) ([]string, error) {
		return p.Ingredients(ctx)
	})
}

// unionNames queries every provider concurrently and unions the
// returned names case-insensitively, keeping the first spelling seen.
func (a *Aggregator) unionNames(ctx context.Context, key string, query func(context.Context, Provider) ([]string, error)) ([]string, error) {
	if names, ok := CachedAs[[]string](ctx, a.cache, key); ok {
		return names, nil
	}

	var mu sync.Mutex
	set := make(map[string]string)

	g := new(errgroup.Group)
	for _, name := range a.registered {
		p := a.byName[name]
		g.Go(func() error {
			vals, err := Execute(ctx, a.optimizer, Call{Provider: p.Name()}, func(ctx context.Context) ([]string, error) {
				return query(ctx, p)
			})
			if err != nil {
				return nil
			}
			mu.Lock()
			for _, v := range vals {
				v = strings.TrimSpace(v)
				if v == "" {
					continue
				}
				k := strings.ToLower(v)
				if _, ok := set[k]; !ok {
					set[k] = v
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(set))
	for _, v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	StoreAs(ctx, a.cache, key, out, TTLTaxonomy)
	return out, nil
}

// UsageStatistics reports used/total daily calls per provider,
// queried concurrently. Short TTL: this backs dashboards, not content.
func (a *Aggregator) UsageStatistics(ctx context.Context) (map[string]UsageStat, error) {
	key := Key("usage_statistics")
	if s, ok := CachedAs[map[string]UsageStat](ctx, a.cache, key); ok {
		return s, nil
	}

	var mu sync.Mutex
	stats := make(map[string]UsageStat, len(a.byName))

	g := new(errgroup.Group)
	for _, name := range a.registered {
		p := a.byName[name]
		g.Go(func() error {
			remaining, err := p.RemainingCalls(ctx)
			if err != nil {
				return nil
			}
			total := p.DailyQuota()
			mu.Lock()
			stats[p.Name()] = UsageStat{Used: total - remaining, Total: total}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	StoreAs(ctx, a.cache, key, stats, TTLUsageStats)
	return stats, nil
}
