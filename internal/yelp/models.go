package yelp

// Provider wire models

type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

type BusinessLocation struct {
	Address1       string   `json:"address1"`
	Address2       string   `json:"address2"`
	Address3       string   `json:"address3"`
	City           string   `json:"city"`
	ZipCode        string   `json:"zip_code"`
	Country        string   `json:"country"`
	State          string   `json:"state"`
	DisplayAddress []string `json:"display_address"`
}

type Business struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Rating       float64          `json:"rating"`
	ReviewCount  int              `json:"review_count"`
	Price        string           `json:"price"`
	Categories   []Category       `json:"categories"`
	Location     BusinessLocation `json:"location"`
	DisplayPhone string           `json:"display_phone"`
	ImageURL     string           `json:"image_url"`
	URL          string           `json:"url"`
	Distance     float64          `json:"distance"`
	IsClosed     bool             `json:"is_closed"`
}

// SearchResponse is what Search always returns: on provider failure Error is
// set and Businesses is empty, never a Go error.
type SearchResponse struct {
	Error      string      `json:"error,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	Businesses []Business  `json:"businesses"`
	Total      int         `json:"total"`
}

// SearchParams is a normalized provider query.
type SearchParams struct {
	Location    string   `json:"location"`
	Categories  []string `json:"categories,omitempty"`
	PriceLevels []int    `json:"price_levels,omitempty"`
	Term        string   `json:"term,omitempty"`
	Attributes  []string `json:"attributes,omitempty"`
	Limit       int      `json:"limit"`
	Offset      int      `json:"offset"`
	SortBy      string   `json:"sort_by"`
}
