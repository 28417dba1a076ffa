package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.yelp.com/v3"

// Provider cap on page size.
const maxLimit = 50

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Search queries the business-search endpoint. It never returns a Go error:
// every provider failure class maps to a SearchResponse with Error set and
// zero results, so callers need no error branch.
func (c *Client) Search(params SearchParams) *SearchResponse {
	endpoint := c.baseURL + "/businesses/search"

	limit := params.Limit
	if limit > maxLimit {
		limit = maxLimit
	}

	query := url.Values{}
	query.Set("location", params.Location)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(params.Offset))
	query.Set("sort_by", params.SortBy)

	if len(params.Categories) > 0 {
		query.Set("categories", strings.Join(params.Categories, ","))
	}

	if len(params.PriceLevels) > 0 {
		var levels []string
		for _, p := range params.PriceLevels {
			if p >= 1 && p <= 4 {
				levels = append(levels, strconv.Itoa(p))
			}
		}
		if len(levels) > 0 {
			query.Set("price", strings.Join(levels, ","))
		}
	}

	if params.Term != "" {
		query.Set("term", params.Term)
	}

	if len(params.Attributes) > 0 {
		query.Set("attributes", strings.Join(params.Attributes, ","))
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"params":   query.Encode(),
	}).Info("Yelp API request")

	req, err := http.NewRequest(http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return emptyResult(fmt.Sprintf("Request failed: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Yelp API request failed")
		return emptyResult(fmt.Sprintf("Request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).Error("Failed to read Yelp API response")
		return emptyResult(fmt.Sprintf("Request failed: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		var details interface{}
		if err := json.Unmarshal(body, &details); err != nil {
			details = string(body)
		}
		c.logger.WithField("details", details).Error("Yelp API 400 Bad Request")
		result := emptyResult("Invalid request parameters")
		result.Details = details
		return result

	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Error("Yelp API 401 Unauthorized - invalid API key")
		return emptyResult("Invalid Yelp API key")

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.WithField("status_code", resp.StatusCode).Error("Yelp API error")
		return emptyResult(fmt.Sprintf("Yelp API error: %d", resp.StatusCode))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.WithError(err).Error("Failed to decode Yelp API response")
		return emptyResult(fmt.Sprintf("Request failed: %v", err))
	}

	c.logger.WithFields(logrus.Fields{
		"total":      result.Total,
		"businesses": len(result.Businesses),
	}).Info("Yelp API response received")

	return &result
}

// BusinessDetails fetches one business by id, nil on any failure.
func (c *Client) BusinessDetails(businessID string) *Business {
	endpoint := fmt.Sprintf("%s/businesses/%s", c.baseURL, url.PathEscape(businessID))

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Failed to fetch business details")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"business_id": businessID,
			"status_code": resp.StatusCode,
		}).Error("Business details request failed")
		return nil
	}

	var business Business
	if err := json.NewDecoder(resp.Body).Decode(&business); err != nil {
		c.logger.WithError(err).Error("Failed to decode business details")
		return nil
	}

	return &business
}

// Ping verifies the provider is reachable and the API key is accepted. Uses
// the categories endpoint, which is the cheapest authenticated call.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/categories", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("yelp API returned status %d", resp.StatusCode)
	}
	return nil
}

func emptyResult(message string) *SearchResponse {
	return &SearchResponse{
		Error:      message,
		Businesses: []Business{},
		Total:      0,
	}
}
