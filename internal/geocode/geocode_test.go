package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-karim/site-sense-architect/internal/config"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(config.GeocoderConfig{
		URL:       srv.URL + "/",
		UserAgent: "site-sense-test",
		Timeout:   time.Second,
	}, srv.Client())
}

func TestHTTPClient_Geocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "233 S Wacker Dr, Chicago", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "site-sense-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"41.8789","lon":"-87.6359","display_name":"Willis Tower, 233 South Wacker Drive, Chicago"}]`))
	})

	res, err := client.Geocode(context.Background(), models.CityChicago, " 233 S Wacker Dr ")
	require.NoError(t, err)
	assert.InDelta(t, 41.8789, res.Lat, 1e-9)
	assert.InDelta(t, -87.6359, res.Lng, 1e-9)
	assert.Equal(t, "Willis Tower, 233 South Wacker Drive, Chicago", res.NormalizedAddress)
	assert.False(t, res.Approximate)
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "no results", status: http.StatusOK, body: `[]`, wantErr: ErrAddressNotFound},
		{name: "server error", status: http.StatusBadGateway, body: ``, wantErr: ErrGeocodeFailed},
		{name: "bad json", status: http.StatusOK, body: `{"oops"`, wantErr: ErrGeocodeFailed},
		{name: "bad latitude", status: http.StatusOK, body: `[{"lat":"north","lon":"1"}]`, wantErr: ErrGeocodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Geocode(context.Background(), models.CitySeattle, "400 Broad St")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Geocode(ctx, models.CityAustin, "1100 Congress Ave")
	assert.ErrorIs(t, err, ErrGeocodeFailed)
}

func TestDefaultLocationClient(t *testing.T) {
	res, err := DefaultLocationClient{}.Geocode(context.Background(), models.CityAustin, " 1100 Congress Ave ")
	require.NoError(t, err)

	assert.True(t, res.Approximate)
	assert.Equal(t, models.CityAustin.DefaultLocation().Lat, res.Lat)
	assert.Equal(t, models.CityAustin.DefaultLocation().Lng, res.Lng)
	assert.Equal(t, "1100 Congress Ave", res.NormalizedAddress)
}

func TestNewClient(t *testing.T) {
	assert.IsType(t, DefaultLocationClient{}, NewClient(config.GeocoderConfig{}, logger.Nop()))
	assert.IsType(t, &HTTPClient{}, NewClient(config.GeocoderConfig{URL: "http://localhost:8080", Timeout: time.Second}, logger.Nop()))
}
