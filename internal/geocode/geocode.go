// Package geocode turns free-text addresses into coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/joseph-karim/site-sense-architect/internal/config"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

var (
	// ErrAddressNotFound is returned when the provider has no match.
	ErrAddressNotFound = errors.New("address not found")
	// ErrGeocodeFailed is returned when the provider could not be reached or
	// answered with something unusable.
	ErrGeocodeFailed = errors.New("geocoding failed")
)

// Result is a geocoded point.
type Result struct {
	NormalizedAddress string  `json:"normalized_address"`
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	// Approximate is set when the point is the city's default location
	// rather than a match for the address.
	Approximate bool `json:"approximate"`
}

// Client resolves an address within a city.
type Client interface {
	Geocode(ctx context.Context, city models.City, address string) (*Result, error)
}

// NewClient returns the HTTP client when a provider URL is configured and the
// default-location client otherwise.
func NewClient(cfg config.GeocoderConfig, log *logger.Logger) Client {
	if cfg.URL == "" {
		log.Warn("No geocoder configured, addresses resolve to city default locations", nil)
		return DefaultLocationClient{}
	}
	return NewHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

// DefaultLocationClient answers every lookup with the city's reference point
// flagged as approximate.
type DefaultLocationClient struct{}

func (DefaultLocationClient) Geocode(ctx context.Context, city models.City, address string) (*Result, error) {
	loc := city.DefaultLocation()
	return &Result{
		NormalizedAddress: strings.TrimSpace(address),
		Lat:               loc.Lat,
		Lng:               loc.Lng,
		Approximate:       true,
	}, nil
}

// HTTPClient queries a Nominatim-compatible search endpoint.
type HTTPClient struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// NewHTTPClient creates an HTTPClient using hc for transport.
func NewHTTPClient(cfg config.GeocoderConfig, hc *http.Client) *HTTPClient {
	return &HTTPClient{
		http:      hc,
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		userAgent: cfg.UserAgent,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode searches for address qualified by the city name and returns the
// best match.
func (c *HTTPClient) Geocode(ctx context.Context, city models.City, address string) (*Result, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s, %s", strings.TrimSpace(address), city.DisplayName()))
	query.Set("format", "jsonv2")
	query.Set("limit", "1")
	query.Set("countrycodes", "us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeocodeFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrGeocodeFailed, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrGeocodeFailed, err)
	}
	if len(results) == 0 {
		return nil, ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude %q", ErrGeocodeFailed, results[0].Lat)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude %q", ErrGeocodeFailed, results[0].Lon)
	}

	return &Result{
		NormalizedAddress: results[0].DisplayName,
		Lat:               lat,
		Lng:               lng,
	}, nil
}
