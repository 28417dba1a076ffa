package models

// StructuredIntent is the normalized search request produced from a chat
// message, either by the LLM or by the deterministic fallback. It lives for
// one turn and is never persisted.
type StructuredIntent struct {
	HierarchicalCategories []string         `json:"hierarchical_categories"`
	PrimaryCategories      []string         `json:"primary_categories"`
	Attributes             IntentAttributes `json:"attributes"`
	Reasoning              string           `json:"reasoning"`
}

// IntentAttributes is the attribute bag inside a StructuredIntent. PriceLevel
// is left loosely typed because the model returns it as a number, a numeric
// string, or null.
type IntentAttributes struct {
	CuisineType      string      `json:"cuisine_type"`
	PriceLevel       interface{} `json:"price_level"`
	Occasion         string      `json:"occasion"`
	AmbianceKeywords []string    `json:"ambiance_keywords"`
	SpecialFeatures  []string    `json:"special_features"`
}

// Recommendation is one formatted business result, embedded in assistant
// messages. Distance is in miles, rounded to 2 decimals.
type Recommendation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Price       string   `json:"price"`
	Categories  []string `json:"categories"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	ImageURL    string   `json:"image_url"`
	URL         string   `json:"url"`
	Distance    float64  `json:"distance"`
	IsClosed    bool     `json:"is_closed"`
}
