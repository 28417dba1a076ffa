package yelp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	c := NewClient("test-key", logrus.New())
	c.baseURL = baseURL
	return c
}

func TestClient_Search_ParamSerialization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/businesses/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "Ithaca, NY", q.Get("location"))
		assert.Equal(t, "italian,pizza", q.Get("categories"))
		assert.Equal(t, "2,3", q.Get("price"))
		assert.Equal(t, "pasta romantic", q.Get("term"))
		assert.Equal(t, "reservation,outdoor_seating", q.Get("attributes"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "best_match", q.Get("sort_by"))

		json.NewEncoder(w).Encode(SearchResponse{Businesses: []Business{{ID: "abc"}}, Total: 1})
	}))
	defer server.Close()

	result := newTestClient(server.URL).Search(SearchParams{
		Location:    "Ithaca, NY",
		Categories:  []string{"italian", "pizza"},
		PriceLevels: []int{2, 3},
		Term:        "pasta romantic",
		Attributes:  []string{"reservation", "outdoor_seating"},
		Limit:       5,
		SortBy:      "best_match",
	})

	require.Empty(t, result.Error)
	assert.Equal(t, 1, result.Total)
	assert.Len(t, result.Businesses, 1)
}

func TestClient_Search_LimitCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(SearchResponse{Businesses: []Business{}})
	}))
	defer server.Close()

	newTestClient(server.URL).Search(SearchParams{Location: "Ithaca, NY", Limit: 200, SortBy: "best_match"})
}

func TestClient_Search_PriceFiltered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1,4", r.URL.Query().Get("price"))
		json.NewEncoder(w).Encode(SearchResponse{Businesses: []Business{}})
	}))
	defer server.Close()

	newTestClient(server.URL).Search(SearchParams{
		Location:    "Ithaca, NY",
		PriceLevels: []int{0, 1, 4, 9},
		Limit:       5,
		SortBy:      "best_match",
	})
}

func TestClient_Search_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "VALIDATION_ERROR", "description": "bad location"},
		})
	}))
	defer server.Close()

	result := newTestClient(server.URL).Search(SearchParams{Location: "", Limit: 5, SortBy: "best_match"})

	assert.Equal(t, "Invalid request parameters", result.Error)
	assert.NotNil(t, result.Details)
	assert.Empty(t, result.Businesses)
	assert.Zero(t, result.Total)
}

func TestClient_Search_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	result := newTestClient(server.URL).Search(SearchParams{Location: "Ithaca, NY", Limit: 5, SortBy: "best_match"})

	assert.Equal(t, "Invalid Yelp API key", result.Error)
	assert.Empty(t, result.Businesses)
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := newTestClient(server.URL).Search(SearchParams{Location: "Ithaca, NY", Limit: 5, SortBy: "best_match"})

	assert.Equal(t, "Yelp API error: 500", result.Error)
	assert.Empty(t, result.Businesses)
}

func TestClient_BusinessDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/businesses/gola-osteria", r.URL.Path)
		json.NewEncoder(w).Encode(Business{ID: "gola-osteria", Name: "Gola Osteria"})
	}))
	defer server.Close()

	business := newTestClient(server.URL).BusinessDetails("gola-osteria")

	require.NotNil(t, business)
	assert.Equal(t, "Gola Osteria", business.Name)
}

func TestClient_BusinessDetails_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.Nil(t, newTestClient(server.URL).BusinessDetails("missing"))
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"categories": []string{}})
	}))
	defer server.Close()

	assert.NoError(t, newTestClient(server.URL).Ping(context.Background()))
}

func TestClient_Ping_BadKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	assert.Error(t, newTestClient(server.URL).Ping(context.Background()))
}

func TestClient_Search_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	result := newTestClient(server.URL).Search(SearchParams{Location: "Ithaca, NY", Limit: 5, SortBy: "best_match"})

	assert.Contains(t, result.Error, "Request failed")
	assert.Empty(t, result.Businesses)
	assert.Zero(t, result.Total)
}
