// Package mock provides a configurable recipe provider for testing.
package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

// Provider is a mock recipe provider.
type Provider struct {
	name        string
	quota       int
	recipes     []recipehub.Recipe
	categories  []recipehub.Category
	cuisines    []string
	ingredients []string
	latency     time.Duration
	staticErr   error
	ledger      *recipehub.Ledger

	callCount atomic.Int64
	used      atomic.Int64

	mu          sync.Mutex
	randomAsked []int // count requested by each GetRandom call
}

var _ recipehub.Provider = (*Provider)(nil)

// Option configures a mock Provider.
type Option func(*Provider)

// WithName sets the provider name.
func WithName(name string) Option {
	return func(p *Provider) { p.name = name }
}

// WithQuota sets the daily quota.
func WithQuota(n int) Option {
	return func(p *Provider) { p.quota = n }
}

// WithRecipes sets the canned recipe set served by every lookup.
func WithRecipes(recipes ...recipehub.Recipe) Option {
	return func(p *Provider) { p.recipes = recipes }
}

// WithCategories sets the canned category taxonomy.
func WithCategories(categories ...recipehub.Category) Option {
	return func(p *Provider) { p.categories = categories }
}

// WithCuisines sets the canned cuisine names.
func WithCuisines(cuisines ...string) Option {
	return func(p *Provider) { p.cuisines = cuisines }
}

// WithIngredients sets the canned ingredient names.
func WithIngredients(ingredients ...string) Option {
	return func(p *Provider) { p.ingredients = ingredients }
}

// WithLatency adds simulated latency to each call.
func WithLatency(d time.Duration) Option {
	return func(p *Provider) { p.latency = d }
}

// WithError makes every call return this error.
func WithError(err error) Option {
	return func(p *Provider) { p.staticErr = err }
}

// WithLedger delegates the usage hooks to a shared ledger instead of
// the internal counter.
func WithLedger(l *recipehub.Ledger) Option {
	return func(p *Provider) { p.ledger = l }
}

// New creates a mock provider with the given options.
func New(opts ...Option) *Provider {
	p := &Provider{
		name:  "mock",
		quota: 100,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string    { return p.name }
func (p *Provider) DailyQuota() int { return p.quota }

func (p *Provider) RemainingCalls(context.Context) (int, error) {
	if p.ledger != nil {
		return p.ledger.RemainingCalls(p.name), nil
	}
	r := p.quota - int(p.used.Load())
	if r < 0 {
		r = 0
	}
	return r, nil
}

func (p *Provider) IncrementUsage(count int) {
	if p.ledger != nil {
		p.ledger.IncrementUsage(p.name, count)
		return
	}
	p.used.Add(int64(count))
}

func (p *Provider) ResetDailyCounter() {
	if p.ledger != nil {
		p.ledger.ResetCounter(p.name)
		return
	}
	p.used.Store(0)
}

// CallCount returns the number of data calls made to the provider.
func (p *Provider) CallCount() int64 { return p.callCount.Load() }

// RandomRequests returns the counts requested by each GetRandom call,
// in order.
func (p *Provider) RandomRequests() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.randomAsked...)
}

// enter simulates one call: latency, call counting, forced errors.
func (p *Provider) enter(ctx context.Context) error {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.callCount.Add(1)
	return p.staticErr
}

func (p *Provider) GetByID(ctx context.Context, id int) (*recipehub.Recipe, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	for _, r := range p.recipes {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (p *Provider) SearchByName(ctx context.Context, name string, limit int) ([]recipehub.Recipe, error) {
	return p.filter(ctx, limit, func(r recipehub.Recipe) bool {
		return strings.Contains(strings.ToLower(r.Name), strings.ToLower(strings.TrimSpace(name)))
	})
}

func (p *Provider) GetRandom(ctx context.Context, count int) ([]recipehub.Recipe, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.randomAsked = append(p.randomAsked, count)
	p.mu.Unlock()

	if count > len(p.recipes) {
		count = len(p.recipes)
	}
	return append([]recipehub.Recipe(nil), p.recipes[:count]...), nil
}

func (p *Provider) Categories(ctx context.Context) ([]recipehub.Category, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	return append([]recipehub.Category(nil), p.categories...), nil
}

func (p *Provider) ByCategory(ctx context.Context, category string, limit int) ([]recipehub.Recipe, error) {
	return p.filter(ctx, limit, func(r recipehub.Recipe) bool {
		return strings.EqualFold(r.Category, strings.TrimSpace(category))
	})
}

func (p *Provider) Cuisines(ctx context.Context) ([]string, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), p.cuisines...), nil
}

func (p *Provider) ByCuisine(ctx context.Context, cuisine string, limit int) ([]recipehub.Recipe, error) {
	return p.filter(ctx, limit, func(r recipehub.Recipe) bool {
		return strings.EqualFold(r.Cuisine, strings.TrimSpace(cuisine))
	})
}

func (p *Provider) Ingredients(ctx context.Context) ([]string, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), p.ingredients...), nil
}

func (p *Provider) ByIngredient(ctx context.Context, ingredient string, limit int) ([]recipehub.Recipe, error) {
	return p.filter(ctx, limit, func(r recipehub.Recipe) bool {
		for _, ing := range r.Ingredients {
			if strings.EqualFold(ing.Name, strings.TrimSpace(ingredient)) {
				return true
			}
		}
		return false
	})
}

func (p *Provider) filter(ctx context.Context, limit int, keep func(recipehub.Recipe) bool) ([]recipehub.Recipe, error) {
	if err := p.enter(ctx); err != nil {
		return nil, err
	}
	var out []recipehub.Recipe
	for _, r := range p.recipes {
		if !keep(r) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
