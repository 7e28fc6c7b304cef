package recipehub

// Recipe is the shared recipe model. Every provider translates its own
// wire format into this shape. The ID is stable within a provider's
// namespace but not guaranteed unique across providers; the aggregator
// deduplicates by identifier value only.
type Recipe struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category,omitempty"`
	Cuisine      string       `json:"cuisine,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
	Thumbnail    string       `json:"thumbnail,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	VideoURL     string       `json:"video_url,omitempty"`
	SourceURL    string       `json:"source_url,omitempty"`
	Ingredients  []Ingredient `json:"ingredients,omitempty"`
	Provider     string       `json:"provider,omitempty"`
}

// Ingredient is one (name, measure) pair of a recipe.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure,omitempty"`
}

// Category describes one entry of a provider's category taxonomy.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// UsageStat reports a provider's daily consumption for dashboards.
type UsageStat struct {
	Used  int `json:"used"`
	Total int `json:"total"`
}
