package spoonacular

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const informationBody = `{
	"id": 716429,
	"title": "Pasta with Garlic",
	"image": "https://example.test/716429.jpg",
	"sourceUrl": "https://blog.test/pasta",
	"instructions": "Boil the pasta.",
	"cuisines": ["Mediterranean", "Italian"],
	"dishTypes": ["lunch", "main course"],
	"extendedIngredients": [
		{"name": "pasta", "amount": 200, "unit": "g"},
		{"name": "garlic", "amount": 2, "unit": "cloves"},
		{"name": "", "amount": 1, "unit": ""}
	]
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *recipehub.Ledger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ledger := recipehub.NewLedger(nil)
	require.NoError(t, ledger.Register(Name, DefaultDailyQuota))
	return New("sk-test", ledger, WithBaseURL(srv.URL)), ledger
}

func TestGetByID(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/716429/information", r.URL.Path)
		assert.Equal(t, "sk-test", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "false", r.URL.Query().Get("includeNutrition"))
		fmt.Fprint(w, informationBody)
	})

	r, err := p.GetByID(context.Background(), 716429)
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, 716429, r.ID)
	assert.Equal(t, "Pasta with Garlic", r.Name)
	assert.Equal(t, "lunch", r.Category)
	assert.Equal(t, "Mediterranean", r.Cuisine)
	assert.Equal(t, "Boil the pasta.", r.Instructions)
	assert.Equal(t, "https://example.test/716429.jpg", r.Thumbnail)
	assert.Equal(t, "https://blog.test/pasta", r.SourceURL)
	assert.Equal(t, Name, r.Provider)

	// Nameless ingredient entries are dropped; measures join amount
	// and unit.
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, recipehub.Ingredient{Name: "pasta", Measure: "200 g"}, r.Ingredients[0])
	assert.Equal(t, recipehub.Ingredient{Name: "garlic", Measure: "2 cloves"}, r.Ingredients[1])
}

func TestGetByID_NotFound(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	r, err := p.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestQuotaExhaustionStatusMapping(t *testing.T) {
	for _, status := range []int{http.StatusPaymentRequired, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "budget spent", status)
			})

			_, err := p.SearchByName(context.Background(), "pasta", 5)
			assert.ErrorIs(t, err, recipehub.ErrQuotaExceeded)
		})
	}
}

func TestSearchByName(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/complexSearch", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "pasta", q.Get("query"))
		assert.Equal(t, "5", q.Get("number"))
		assert.Equal(t, "true", q.Get("addRecipeInformation"))
		fmt.Fprint(w, `{"results":[
			{"id":1,"title":"Pasta One","cuisines":["Italian"]},
			{"id":2,"title":"Pasta Two","dishTypes":["dessert"]}
		]}`)
	})

	got, err := p.SearchByName(context.Background(), "pasta", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Italian", got[0].Cuisine)
	assert.Equal(t, "dessert", got[1].Category)
}

func TestSearchDefaultLimit(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("number"))
		fmt.Fprint(w, `{"results":[]}`)
	})

	_, err := p.SearchByName(context.Background(), "x", 0)
	require.NoError(t, err)
}

func TestByCategoryAndByCuisineParams(t *testing.T) {
	var gotType, gotCuisine string
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.URL.Query().Get("type")
		gotCuisine = r.URL.Query().Get("cuisine")
		fmt.Fprint(w, `{"results":[]}`)
	})

	_, err := p.ByCategory(context.Background(), "Dessert", 5)
	require.NoError(t, err)
	assert.Equal(t, "dessert", gotType)

	_, err = p.ByCuisine(context.Background(), "Italian", 5)
	require.NoError(t, err)
	assert.Equal(t, "Italian", gotCuisine)
}

func TestGetRandom(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/random", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("number"))
		fmt.Fprint(w, `{"recipes":[
			{"id":1,"title":"A"},{"id":2,"title":"B"},{"id":3,"title":"C"}
		]}`)
	})

	got, err := p.GetRandom(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStaticTaxonomies(t *testing.T) {
	// Categories and Cuisines are documented constants, not endpoints:
	// no server is needed at all.
	p := New("sk-test", recipehub.NewLedger(nil))

	cats, err := p.Categories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, cats)
	assert.Equal(t, "main course", cats[0].Name)

	cuisines, err := p.Cuisines(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cuisines, "Italian")

	ingredients, err := p.Ingredients(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ingredients)
}

func TestSearchIngredients(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/food/ingredients/search", r.URL.Path)
		assert.Equal(t, "garl", r.URL.Query().Get("query"))
		fmt.Fprint(w, `{"results":[{"name":"garlic"},{"name":"garlic powder"}]}`)
	})

	got, err := p.SearchIngredients(context.Background(), "garl", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"garlic", "garlic powder"}, got)
}

func TestByIngredientParams(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "garlic", r.URL.Query().Get("includeIngredients"))
		fmt.Fprint(w, `{"results":[]}`)
	})

	_, err := p.ByIngredient(context.Background(), "garlic", 5)
	require.NoError(t, err)
}
