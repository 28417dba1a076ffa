package yelp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kindalike/backend/internal/database"
	"github.com/kindalike/backend/internal/models"
	"github.com/kindalike/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

const searchCacheTTL = 5 * time.Minute

// Service wraps the provider client with intent-driven parameter derivation
// and short-lived result caching.
type Service struct {
	client *Client
	cache  *database.Cache
	logger *logrus.Logger
}

// NewService creates a search service. cache may be nil to disable caching.
func NewService(client *Client, cache *database.Cache, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// SearchWithIntent derives provider parameters from the structured intent
// and preferences, then searches. Like Client.Search it never fails: provider
// errors come back inside the response object.
func (s *Service) SearchWithIntent(
	ctx context.Context,
	location string,
	intent models.StructuredIntent,
	prefs *models.UserPreferences,
	limit int,
) *SearchResponse {
	params := DeriveSearchParams(intent, prefs, location, limit)

	s.logger.WithFields(logrus.Fields{
		"location":   params.Location,
		"categories": params.Categories,
		"price":      params.PriceLevels,
		"term":       params.Term,
		"attributes": params.Attributes,
	}).Info("Searching businesses")

	cacheKey := s.cacheKey(params)
	if s.cache != nil && cacheKey != "" {
		var cached SearchResponse
		if err := s.cache.GetCachedSearchResults(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Search results served from cache")
			return &cached
		}
	}

	result := s.client.Search(params)

	// Only successful responses are worth keeping around.
	if s.cache != nil && cacheKey != "" && result.Error == "" {
		if err := s.cache.CacheSearchResults(ctx, cacheKey, result, searchCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache search results")
		}
	}

	return result
}

func (s *Service) cacheKey(params SearchParams) string {
	data, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	return utils.MD5Hash(string(data))
}
