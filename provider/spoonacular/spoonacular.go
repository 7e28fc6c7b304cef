// Package spoonacular implements the Spoonacular recipe provider.
//
// Spoonacular is the paid, rich source: small daily point budget but
// complete recipe metadata (cuisines, dish types, measured
// ingredients, source links). Category maps to the API's "type"
// (meal type) concept.
package spoonacular

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
	Name = "spoonacular"

	// DefaultDailyQuota matches the free-plan daily point budget.
	DefaultDailyQuota = 150

	defaultBaseURL = "https://api.spoonacular.com"
)

// mealTypes is the documented set of values for the complexSearch
// "type" parameter. The API has no enumeration endpoint for these.
var mealTypes = []string{
	"main course", "side dish", "dessert", "appetizer", "salad",
	"bread", "breakfast", "soup", "beverage", "sauce", "marinade",
	"fingerfood", "snack", "drink",
}

// cuisines is the documented set of values for the complexSearch
// "cuisine" parameter.
var cuisines = []string{
	"African", "American", "Asian", "British", "Cajun", "Caribbean",
	"Chinese", "Eastern European", "European", "French", "German",
	"Greek", "Indian", "Irish", "Italian", "Japanese", "Jewish",
	"Korean", "Latin American", "Mediterranean", "Mexican",
	"Middle Eastern", "Nordic", "Southern", "Spanish", "Thai",
	"Vietnamese",
}

// Provider is the Spoonacular adapter.
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

// New creates a Spoonacular provider. The ledger is shared with the
// rest of the aggregation core and backs the usage hooks.
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

// recipePayload is the recipe object shape shared by the information,
// random and complexSearch (with addRecipeInformation) endpoints.
type recipePayload struct {
	ID                  int      `json:"id"`
	Title               string   `json:"title"`
	Image               string   `json:"image"`
	SourceURL           string   `json:"sourceUrl"`
	Instructions        string   `json:"instructions"`
	Cuisines            []string `json:"cuisines"`
	DishTypes           []string `json:"dishTypes"`
	ExtendedIngredients []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	} `json:"extendedIngredients"`
}

func (rp recipePayload) recipe() recipehub.Recipe {
	r := recipehub.Recipe{
		ID:           rp.ID,
		Name:         rp.Title,
		Instructions: rp.Instructions,
		Thumbnail:    rp.Image,
		SourceURL:    rp.SourceURL,
		Provider:     Name,
	}
	if len(rp.DishTypes) > 0 {
		r.Category = rp.DishTypes[0]
	}
	if len(rp.Cuisines) > 0 {
		r.Cuisine = rp.Cuisines[0]
	}
	for _, ing := range rp.ExtendedIngredients {
		if ing.Name == "" {
			continue
		}
		measure := strings.TrimSpace(fmt.Sprintf("%g %s", ing.Amount, ing.Unit))
		r.Ingredients = append(r.Ingredients, recipehub.Ingredient{Name: ing.Name, Measure: measure})
	}
	return r
}

func (p *Provider) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", p.apiKey)
	u := p.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("spoonacular: build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("spoonacular: %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errNotFound
	case http.StatusPaymentRequired, http.StatusTooManyRequests:
		// The API signals a spent point budget with 402/429.
		return fmt.Errorf("%w: %s", recipehub.ErrQuotaExceeded, Name)
	default:
		return fmt.Errorf("spoonacular: %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spoonacular: %s: decode: %w", path, err)
	}
	return nil
}

// errNotFound is internal: GetByID maps it to a nil recipe.
var errNotFound = fmt.Errorf("spoonacular: not found")

// GetByID returns the recipe with the given id, or nil when unknown.
func (p *Provider) GetByID(ctx context.Context, id int) (*recipehub.Recipe, error) {
	var rp recipePayload
	err := p.get(ctx, "/recipes/"+strconv.Itoa(id)+"/information",
		url.Values{"includeNutrition": {"false"}}, &rp)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r := rp.recipe()
	return &r, nil
}

// searchResponse is the complexSearch envelope.
type searchResponse struct {
	Results []recipePayload `json:"results"`
}

// search runs a complexSearch with full recipe information attached.
func (p *Provider) search(ctx context.Context, params url.Values, limit int) ([]recipehub.Recipe, error) {
	if limit <= 0 {
		limit = 10
	}
	params.Set("number", strconv.Itoa(limit))
	params.Set("addRecipeInformation", "true")

	var sr searchResponse
	if err := p.get(ctx, "/recipes/complexSearch", params, &sr); err != nil {
		return nil, err
	}

	out := make([]recipehub.Recipe, 0, len(sr.Results))
	for _, rp := range sr.Results {
		out = append(out, rp.recipe())
	}
	return out, nil
}

// SearchByName searches recipes by free-text query.
func (p *Provider) SearchByName(ctx context.Context, name string, limit int) ([]recipehub.Recipe, error) {
	return p.search(ctx, url.Values{"query": {name}}, limit)
}

// randomResponse is the random endpoint envelope.
type randomResponse struct {
	Recipes []recipePayload `json:"recipes"`
}

// GetRandom returns up to count random recipes in a single call.
func (p *Provider) GetRandom(ctx context.Context, count int) ([]recipehub.Recipe, error) {
	var rr randomResponse
	if err := p.get(ctx, "/recipes/random", url.Values{"number": {strconv.Itoa(count)}}, &rr); err != nil {
		return nil, err
	}

	out := make([]recipehub.Recipe, 0, len(rr.Recipes))
	for _, rp := range rr.Recipes {
		out = append(out, rp.recipe())
	}
	return out, nil
}

// Categories returns the documented meal types. No network call: the
// API publishes these as constants, not as an endpoint.
func (p *Provider) Categories(context.Context) ([]recipehub.Category, error) {
	out := make([]recipehub.Category, 0, len(mealTypes))
	for _, t := range mealTypes {
		out = append(out, recipehub.Category{Name: t})
	}
	return out, nil
}

// ByCategory returns recipes of a meal type.
func (p *Provider) ByCategory(ctx context.Context, category string, limit int) ([]recipehub.Recipe, error) {
	return p.search(ctx, url.Values{"type": {strings.ToLower(category)}}, limit)
}

// Cuisines returns the documented cuisine names. No network call.
func (p *Provider) Cuisines(context.Context) ([]string, error) {
	return append([]string(nil), cuisines...), nil
}

// ByCuisine returns recipes of a cuisine.
func (p *Provider) ByCuisine(ctx context.Context, cuisine string, limit int) ([]recipehub.Recipe, error) {
	return p.search(ctx, url.Values{"cuisine": {cuisine}}, limit)
}

// ingredientSearchResponse is the ingredient search envelope.
type ingredientSearchResponse struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

// Ingredients returns nothing: the API has no endpoint that enumerates
// all ingredient names, only query-driven search. The aggregator's
// union handles providers that contribute nothing.
func (p *Provider) Ingredients(context.Context) ([]string, error) {
	return nil, nil
}

// SearchIngredients looks ingredient names up by query. Not part of
// the Provider interface; exposed for callers that want Spoonacular's
// richer ingredient database.
func (p *Provider) SearchIngredients(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	var ir ingredientSearchResponse
	err := p.get(ctx, "/food/ingredients/search",
		url.Values{"query": {query}, "number": {strconv.Itoa(limit)}}, &ir)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ir.Results))
	for _, r := range ir.Results {
		out = append(out, r.Name)
	}
	return out, nil
}

// ByIngredient returns recipes that use an ingredient.
func (p *Provider) ByIngredient(ctx context.Context, ingredient string, limit int) ([]recipehub.Recipe, error) {
	return p.search(ctx, url.Values{"includeIngredients": {ingredient}}, limit)
}
