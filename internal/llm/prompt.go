package llm

import (
	"fmt"

	"github.com/kindalike/backend/internal/models"
)

const systemPrompt = `You are a restaurant recommendation expert.
Your task is to analyze user queries and generate structured search parameters for finding restaurants.

When a user asks for restaurant recommendations, break down their request into:
1. Hierarchical categories (from general to specific)
2. Primary search categories for Yelp API
3. Key attributes (cuisine, price, occasion, ambiance, special features)

Be flexible and creative in interpretation. Consider implicit meanings:
- "date night" → romantic, upscale, intimate atmosphere
- "quick bite" → casual, fast, affordable
- "celebration" → upscale, special occasion, lively
- "healthy" → fresh, organic, vegetarian/vegan options

Return a JSON object with this exact structure:
{
    "hierarchical_categories": ["General Category", "Specific Category", "Very Specific"],
    "primary_categories": ["yelp_category1", "yelp_category2"],
    "attributes": {
        "cuisine_type": "string or null",
        "price_level": "1-4 or null",
        "occasion": "string or null",
        "ambiance_keywords": ["keyword1", "keyword2"],
        "special_features": ["feature1", "feature2"]
    },
    "reasoning": "Brief explanation of your interpretation"
}`

const userPromptTemplate = `Analyze this restaurant request and generate search parameters:

User Query: %s

User Preferences (if available):
- Cuisine: %s
- Price Range: %s
- Dining Style: %s
- Dietary Restrictions: %s
- Atmosphere: %s

Generate the JSON response following the specified structure.`

// notSpecified fills absent preference slots; the model always sees all five.
const notSpecified = "Not specified"

func prefValue(value *string) string {
	if value == nil || *value == "" {
		return notSpecified
	}
	return *value
}

// buildUserPrompt renders the per-turn prompt from the message and the five
// preference slots.
func buildUserPrompt(query string, prefs *models.UserPreferences) string {
	if prefs == nil {
		prefs = &models.UserPreferences{}
	}
	return fmt.Sprintf(userPromptTemplate,
		query,
		prefValue(prefs.CuisineType),
		prefValue(prefs.PriceRange),
		prefValue(prefs.DiningStyle),
		prefValue(prefs.DietaryRestrictions),
		prefValue(prefs.Atmosphere),
	)
}
