// Package themealdb implements the TheMealDB recipe provider.
//
// TheMealDB is the free, low-detail source: generous quota, no payment,
// but sparse recipe metadata. "Cuisine" maps to the API's "area"
// concept. The test key "1" works for development.
package themealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

const (
	// Name is the provider identifier.
	Name = "themealdb"

	// DefaultDailyQuota is the default self-imposed daily budget.
	DefaultDailyQuota = 1000

	defaultBaseURL = "https://www.themealdb.com/api/json/v1"
)

// ingredientSlots is the number of numbered ingredient/measure field
// pairs in the meal wire format (strIngredient1..20).
const ingredientSlots = 20

// Provider is the TheMealDB adapter.
type Provider struct {
	apiKey     string
	baseURL    string
	quota      int
	httpClient *http.Client
	ledger     *recipehub.Ledger
}

var _ recipehub.Provider = (*Provider)(nil)

// Option configures the provider.
type Option func(*Provider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithBaseURL overrides the API base URL (mainly for tests).
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithDailyQuota overrides the default daily budget.
func WithDailyQuota(n int) Option {
	return func(p *Provider) { p.quota = n }
}

// New creates a TheMealDB provider. The ledger is shared with the rest
// of the aggregation core and backs the usage hooks.
func New(apiKey string, ledger *recipehub.Ledger, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		quota:      DefaultDailyQuota,
		httpClient: http.DefaultClient,
		ledger:     ledger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string    { return Name }
func (p *Provider) DailyQuota() int { return p.quota }

func (p *Provider) RemainingCalls(context.Context) (int, error) {
	return p.ledger.RemainingCalls(Name), nil
}

func (p *Provider) IncrementUsage(count int) {
	p.ledger.IncrementUsage(Name, count)
}

func (p *Provider) ResetDailyCounter() {
	p.ledger.ResetCounter(Name)
}

// mealsResponse is the envelope every meal endpoint returns. meals is
// null (not empty) when there is no match.
type mealsResponse struct {
	Meals []mealPayload `json:"meals"`
}

// mealPayload is one meal object. Every field in this API is a string
// or null, including the numbered strIngredientN/strMeasureN pairs, so
// a string map covers the whole shape.
type mealPayload map[string]*string

func (m mealPayload) str(key string) string {
	if v := m[key]; v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// recipe translates a meal payload into the shared model. Filter
// endpoints return partial payloads (id, name, thumbnail only); the
// missing fields simply come out empty.
func (m mealPayload) recipe() (recipehub.Recipe, error) {
	id, err := strconv.Atoi(m.str("idMeal"))
	if err != nil {
		return recipehub.Recipe{}, fmt.Errorf("themealdb: bad meal id %q", m.str("idMeal"))
	}

	r := recipehub.Recipe{
		ID:           id,
		Name:         m.str("strMeal"),
		Category:     m.str("strCategory"),
		Cuisine:      m.str("strArea"),
		Instructions: m.str("strInstructions"),
		Thumbnail:    m.str("strMealThumb"),
		VideoURL:     m.str("strYoutube"),
		SourceURL:    m.str("strSource"),
		Provider:     Name,
	}
	if tags := m.str("strTags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				r.Tags = append(r.Tags, t)
			}
		}
	}
	for i := 1; i <= ingredientSlots; i++ {
		name := m.str("strIngredient" + strconv.Itoa(i))
		if name == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, recipehub.Ingredient{
			Name:    name,
			Measure: m.str("strMeasure" + strconv.Itoa(i)),
		})
	}
	return r, nil
}

func (p *Provider) get(ctx context.Context, path string, params url.Values, out any) error {
	u := fmt.Sprintf("%s/%s/%s", p.baseURL, p.apiKey, path)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("themealdb: build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("themealdb: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("themealdb: %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("themealdb: %s: decode: %w", path, err)
	}
	return nil
}

// meals fetches a meal endpoint and converts the payloads, applying
// limit when positive. Malformed entries are skipped, not fatal.
func (p *Provider) meals(ctx context.Context, path string, params url.Values, limit int) ([]recipehub.Recipe, error) {
	var mr mealsResponse
	if err := p.get(ctx, path, params, &mr); err != nil {
		return nil, err
	}

	var out []recipehub.Recipe
	for _, m := range mr.Meals {
		r, err := m.recipe()
		if err != nil {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// GetByID returns the meal with the given id, or nil when unknown.
func (p *Provider) GetByID(ctx context.Context, id int) (*recipehub.Recipe, error) {
	recipes, err := p.meals(ctx, "lookup.php", url.Values{"i": {strconv.Itoa(id)}}, 1)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, nil
	}
	return &recipes[0], nil
}

// SearchByName searches meals by name.
func (p *Provider) SearchByName(ctx context.Context, name string, limit int) ([]recipehub.Recipe, error) {
	return p.meals(ctx, "search.php", url.Values{"s": {name}}, limit)
}

// GetRandom returns up to count random meals. The API serves one random
// meal per request; duplicates across requests are dropped, so fewer
// than count may come back.
func (p *Provider) GetRandom(ctx context.Context, count int) ([]recipehub.Recipe, error) {
	seen := make(map[int]bool, count)
	var out []recipehub.Recipe
	for i := 0; i < count; i++ {
		recipes, err := p.meals(ctx, "random.php", nil, 1)
		if err != nil {
			return out, err
		}
		if len(recipes) == 0 || seen[recipes[0].ID] {
			continue
		}
		seen[recipes[0].ID] = true
		out = append(out, recipes[0])
	}
	return out, nil
}

// categoriesResponse is the envelope of categories.php.
type categoriesResponse struct {
	Categories []struct {
		Name        string `json:"strCategory"`
		Thumbnail   string `json:"strCategoryThumb"`
		Description string `json:"strCategoryDescription"`
	} `json:"categories"`
}

// Categories returns the full category taxonomy with descriptions.
func (p *Provider) Categories(ctx context.Context) ([]recipehub.Category, error) {
	var cr categoriesResponse
	if err := p.get(ctx, "categories.php", nil, &cr); err != nil {
		return nil, err
	}

	out := make([]recipehub.Category, 0, len(cr.Categories))
	for _, c := range cr.Categories {
		out = append(out, recipehub.Category{
			Name:        c.Name,
			Description: c.Description,
			Thumbnail:   c.Thumbnail,
		})
	}
	return out, nil
}

// ByCategory returns meals filtered by category.
func (p *Provider) ByCategory(ctx context.Context, category string, limit int) ([]recipehub.Recipe, error) {
	return p.meals(ctx, "filter.php", url.Values{"c": {category}}, limit)
}

// Cuisines returns the list of areas.
func (p *Provider) Cuisines(ctx context.Context) ([]string, error) {
	return p.names(ctx, url.Values{"a": {"list"}}, "strArea")
}

// ByCuisine returns meals filtered by area.
func (p *Provider) ByCuisine(ctx context.Context, cuisine string, limit int) ([]recipehub.Recipe, error) {
	return p.meals(ctx, "filter.php", url.Values{"a": {cuisine}}, limit)
}

// Ingredients returns the list of known ingredient names.
func (p *Provider) Ingredients(ctx context.Context) ([]string, error) {
	return p.names(ctx, url.Values{"i": {"list"}}, "strIngredient")
}

// ByIngredient returns meals filtered by main ingredient.
func (p *Provider) ByIngredient(ctx context.Context, ingredient string, limit int) ([]recipehub.Recipe, error) {
	return p.meals(ctx, "filter.php", url.Values{"i": {ingredient}}, limit)
}

// names fetches a list.php enumeration and extracts one field of each
// entry.
func (p *Provider) names(ctx context.Context, params url.Values, field string) ([]string, error) {
	var mr mealsResponse
	if err := p.get(ctx, "list.php", params, &mr); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(mr.Meals))
	for _, m := range mr.Meals {
		if v := m.str(field); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
