package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/kindalike/backend/internal/models"
)

// requiredIntentKeys must all be present in the model's JSON reply, otherwise
// the reply is treated as malformed and the fallback is used.
var requiredIntentKeys = []string{"hierarchical_categories", "primary_categories", "attributes"}

// Structurer turns a free-form chat message plus saved preferences into a
// structured search intent. It never returns an error: any provider or
// parsing failure yields deterministic fallback categories derived from the
// saved cuisine preference.
type Structurer struct {
	client openai.Client
	model  string
	logger *logrus.Logger
}

// NewStructurer creates a structurer talking to an OpenAI-compatible
// completions endpoint.
func NewStructurer(apiKey, baseURL, model string, logger *logrus.Logger) *Structurer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Structurer{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

// Structure generates the intent for one chat turn.
func (s *Structurer) Structure(ctx context.Context, query string, prefs *models.UserPreferences) models.StructuredIntent {
	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(query, prefs)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(500),
	})
	if err != nil {
		s.logger.WithError(err).Error("LLM request failed, using fallback categories")
		return s.fallbackIntent(prefs)
	}
	if len(completion.Choices) == 0 {
		s.logger.Error("LLM returned no choices, using fallback categories")
		return s.fallbackIntent(prefs)
	}

	intent, err := parseIntent(completion.Choices[0].Message.Content)
	if err != nil {
		s.logger.WithError(err).Error("Failed to parse LLM response, using fallback categories")
		return s.fallbackIntent(prefs)
	}

	s.logger.WithFields(logrus.Fields{
		"primary_categories": intent.PrimaryCategories,
		"reasoning":          intent.Reasoning,
	}).Info("Structured query from LLM")
	return intent
}

// parseIntent extracts the JSON object from the model reply, tolerating
// markdown code fences, and validates that the required keys are present.
func parseIntent(content string) (models.StructuredIntent, error) {
	raw := extractJSON(content)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return models.StructuredIntent{}, fmt.Errorf("invalid JSON in response: %w", err)
	}
	for _, key := range requiredIntentKeys {
		if _, ok := keys[key]; !ok {
			return models.StructuredIntent{}, fmt.Errorf("response missing required key %q", key)
		}
	}

	var intent models.StructuredIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return models.StructuredIntent{}, fmt.Errorf("response does not match intent structure: %w", err)
	}
	return intent, nil
}

// extractJSON strips a ```json or ``` fence if present, otherwise returns the
// trimmed content as-is.
func extractJSON(content string) string {
	if idx := strings.Index(content, "```json"); idx != -1 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(content, "```"); idx != -1 {
		rest := content[idx+len("```"):]
		if end := strings.Index(rest, "```"); end != -1 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(content)
}

// fallbackIntent builds deterministic categories from the saved preferences
// when the model is unavailable or returns garbage.
func (s *Structurer) fallbackIntent(prefs *models.UserPreferences) models.StructuredIntent {
	cuisine := "All Cuisines"
	cuisineType := ""
	if prefs != nil && prefs.CuisineType != nil && *prefs.CuisineType != "" {
		cuisine = *prefs.CuisineType
		cuisineType = *prefs.CuisineType
	}

	var priceLevel interface{} = 2
	if prefs != nil && prefs.PriceRange != nil {
		if level, ok := priceRangeMap[*prefs.PriceRange]; ok {
			priceLevel = level
		}
	}

	return models.StructuredIntent{
		HierarchicalCategories: []string{"Food & Dining", "Restaurants", cuisine},
		PrimaryCategories:      []string{"restaurants"},
		Attributes: models.IntentAttributes{
			CuisineType:      cuisineType,
			PriceLevel:       priceLevel,
			Occasion:         "casual",
			AmbianceKeywords: []string{},
			SpecialFeatures:  []string{},
		},
		Reasoning: "Fallback categories used due to LLM error",
	}
}

// priceRangeMap maps saved preference tiers to search price levels.
var priceRangeMap = map[string]int{
	"$":    1,
	"$$":   2,
	"$$$":  3,
	"$$$$": 4,
}
