package yelp

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kindalike/backend/internal/models"
)

const metersPerMile = 0.000621371

// priceRangeMap maps saved preference tiers to provider price levels.
var priceRangeMap = map[string]int{
	"$":    1,
	"$$":   2,
	"$$$":  3,
	"$$$$": 4,
}

// featureMap maps the known special-feature phrases to provider attribute
// codes. Lookup is case-insensitive; unrecognized features are dropped.
var featureMap = map[string]string{
	"reservations":          "reservation",
	"outdoor seating":       "outdoor_seating",
	"takeout":               "restaurant_takeout",
	"delivery":              "restaurant_delivery",
	"wheelchair accessible": "wheelchair_accessible",
	"good for groups":       "good_for_groups",
	"hot and new":           "hot_and_new",
}

// DeriveSearchParams turns a structured intent plus saved preferences into a
// provider query. Price resolution order: explicit intent price level (only
// if 1-4), then the saved price-range tier, then no filter.
func DeriveSearchParams(intent models.StructuredIntent, prefs *models.UserPreferences, location string, limit int) SearchParams {
	params := SearchParams{
		Location:   location,
		Categories: intent.PrimaryCategories,
		Limit:      limit,
		SortBy:     "best_match",
	}

	if level, ok := coercePriceLevel(intent.Attributes.PriceLevel); ok {
		params.PriceLevels = []int{level}
	} else if prefs != nil && prefs.PriceRange != nil && *prefs.PriceRange != "" {
		if level, ok := priceRangeMap[*prefs.PriceRange]; ok {
			params.PriceLevels = []int{level}
		} else {
			params.PriceLevels = []int{2}
		}
	}

	var termParts []string
	if intent.Attributes.CuisineType != "" {
		termParts = append(termParts, intent.Attributes.CuisineType)
	}
	keywords := intent.Attributes.AmbianceKeywords
	if len(keywords) > 2 {
		keywords = keywords[:2]
	}
	termParts = append(termParts, keywords...)
	params.Term = strings.Join(termParts, " ")

	for _, feature := range intent.Attributes.SpecialFeatures {
		if code, ok := featureMap[strings.ToLower(feature)]; ok {
			params.Attributes = append(params.Attributes, code)
		}
	}

	return params
}

// coercePriceLevel accepts the loosely typed price level the model returns
// (number, numeric string, or null) and validates the 1-4 range.
func coercePriceLevel(raw interface{}) (int, bool) {
	var level int
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		level = v
	case float64:
		level = int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		level = int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		level = n
	default:
		return 0, false
	}

	if level < 1 || level > 4 {
		return 0, false
	}
	return level, true
}

// FormatForDisplay projects a provider business into a recommendation
// record. Distance converts from meters to miles, rounded to 2 decimals.
func FormatForDisplay(business Business) models.Recommendation {
	price := business.Price
	if price == "" {
		price = "N/A"
	}
	phone := business.DisplayPhone
	if phone == "" {
		phone = "N/A"
	}

	categories := make([]string, 0, len(business.Categories))
	for _, cat := range business.Categories {
		categories = append(categories, cat.Title)
	}

	return models.Recommendation{
		ID:          business.ID,
		Name:        business.Name,
		Rating:      business.Rating,
		ReviewCount: business.ReviewCount,
		Price:       price,
		Categories:  categories,
		Address:     strings.Join(business.Location.DisplayAddress, " "),
		Phone:       phone,
		ImageURL:    business.ImageURL,
		URL:         business.URL,
		Distance:    math.Round(business.Distance*metersPerMile*100) / 100,
		IsClosed:    business.IsClosed,
	}
}
