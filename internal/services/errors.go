package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// Coordinate validation constants
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Service-level errors
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrUnknownCity        = models.ErrUnknownCity
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoDistrictFound    = errors.New("no zoning district found at location")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrGeocodeFailed      = errors.New("address could not be geocoded")
	// ErrSpatialStoreUnavailable means no spatial store is configured at all,
	// as opposed to a configured store that has no district at a point.
	ErrSpatialStoreUnavailable = errors.New("spatial store not configured")
)

func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < MinLatitude || lat > MaxLatitude {
		return fmt.Errorf("%w: latitude must be between %f and %f, got %f",
			ErrInvalidCoordinates, MinLatitude, MaxLatitude, lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < MinLongitude || lng > MaxLongitude {
		return fmt.Errorf("%w: longitude must be between %f and %f, got %f",
			ErrInvalidCoordinates, MinLongitude, MaxLongitude, lng)
	}
	return nil
}

func validateCity(city models.City) error {
	if !city.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	return nil
}
