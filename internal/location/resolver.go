package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kindalike/backend/internal/database"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "http://ip-api.com/json"

	// Fields requested from the provider, matching what Resolve consumes.
	providerFields = "status,message,country,countryCode,region,regionName,city,zip,lat,lon,timezone"

	cacheTTL = 15 * time.Minute
)

// ipHeaders is the ordered list of proxy-forwarding headers scanned for the
// client address. The leftmost X-Forwarded-For entry is the client.
var ipHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Client-IP",
}

// Info describes a resolved locality. FormattedLocation is the only field
// the chat pipeline consumes.
type Info struct {
	Error             string  `json:"error,omitempty"`
	City              string  `json:"city"`
	Region            string  `json:"region"`
	RegionCode        string  `json:"region_code"`
	Country           string  `json:"country"`
	CountryCode       string  `json:"country_code"`
	Zip               string  `json:"zip"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	Timezone          string  `json:"timezone"`
	FormattedLocation string  `json:"formatted_location"`
}

type providerResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
}

// Resolver maps client addresses to localities via an IP-geolocation
// provider. Lookups never fail: any provider problem yields the fixed
// fallback locality so the chat flow is never interrupted.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	cache      *database.Cache
	logger     *logrus.Logger
}

// NewResolver creates a resolver. cache may be nil; when set, resolved
// locations are cached per IP because the provider allows ~45 lookups/min.
func NewResolver(cache *database.Cache, logger *logrus.Logger) *Resolver {
	return &Resolver{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

// fallback is the fixed locality returned when resolution fails.
func fallback(reason string) Info {
	return Info{
		Error:             reason,
		City:              "Ithaca",
		Region:            "NY",
		FormattedLocation: "Ithaca, NY",
	}
}

// ExtractClientIP scans the forwarding headers in order and returns the
// first client address found, or "" when none is present.
func ExtractClientIP(headers http.Header) string {
	for _, name := range ipHeaders {
		value := headers.Get(name)
		if value == "" {
			continue
		}
		// X-Forwarded-For can contain client, proxy1, proxy2
		if idx := strings.Index(value, ","); idx >= 0 {
			value = value[:idx]
		}
		return strings.TrimSpace(value)
	}
	return ""
}

// Resolve looks up the locality for ip. An empty ip resolves the caller's
// own address (provider behavior). The returned Info always carries a
// non-empty FormattedLocation.
func (r *Resolver) Resolve(ctx context.Context, ip string) Info {
	if r.cache != nil && ip != "" {
		var cached Info
		if err := r.cache.GetCachedLocation(ctx, ip, &cached); err == nil {
			r.logger.WithField("ip", ip).Debug("Location served from cache")
			return cached
		}
	}

	url := r.baseURL
	if ip != "" {
		url = fmt.Sprintf("%s/%s", r.baseURL, ip)
	}
	url = fmt.Sprintf("%s?fields=%s", url, providerFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.logger.WithError(err).Error("Failed to build geolocation request")
		return fallback(err.Error())
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.WithError(err).Error("Geolocation request failed")
		return fallback(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.WithField("status_code", resp.StatusCode).Error("Geolocation provider returned an error")
		return fallback(fmt.Sprintf("geolocation provider returned status %d", resp.StatusCode))
	}

	var data providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		r.logger.WithError(err).Error("Failed to decode geolocation response")
		return fallback(err.Error())
	}

	if data.Status != "success" {
		reason := data.Message
		if reason == "" {
			reason = "Failed to get location"
		}
		r.logger.WithFields(logrus.Fields{
			"ip":     ip,
			"reason": reason,
		}).Warn("Geolocation lookup unsuccessful")
		return fallback(reason)
	}

	info := Info{
		City:              data.City,
		Region:            data.RegionName,
		RegionCode:        data.Region,
		Country:           data.Country,
		CountryCode:       data.CountryCode,
		Zip:               data.Zip,
		Lat:               data.Lat,
		Lon:               data.Lon,
		Timezone:          data.Timezone,
		FormattedLocation: fmt.Sprintf("%s, %s", data.City, data.Region),
	}

	if r.cache != nil && ip != "" {
		if err := r.cache.CacheLocation(ctx, ip, info, cacheTTL); err != nil {
			r.logger.WithError(err).Warn("Failed to cache location")
		}
	}

	return info
}
