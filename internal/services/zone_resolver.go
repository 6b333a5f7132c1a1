package services

import (
	"context"
	"fmt"

	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/repository"
)

// ZoneResolver finds the zoning district containing a point.
type ZoneResolver interface {
	// Resolve returns the district of city containing (lat, lng).
	// Returns ErrInvalidCoordinates or ErrUnknownCity for bad input.
	// Returns ErrSpatialStoreUnavailable if no spatial store is configured.
	// Returns nil, nil if the store has no district at the point.
	Resolve(ctx context.Context, city models.City, lat, lng float64) (*models.ZoningDistrict, error)
}

type zoneResolver struct {
	repo repository.DistrictRepository
	log  *logger.Logger
}

// NewZoneResolver creates a ZoneResolver. repo may be nil when no database
// is configured.
func NewZoneResolver(repo repository.DistrictRepository, log *logger.Logger) ZoneResolver {
	return &zoneResolver{
		repo: repo,
		log:  log,
	}
}

func (r *zoneResolver) Resolve(ctx context.Context, city models.City, lat, lng float64) (*models.ZoningDistrict, error) {
	if err := validateCity(city); err != nil {
		return nil, err
	}
	if err := validateCoordinates(lat, lng); err != nil {
		r.log.Warn("Invalid coordinates provided", map[string]interface{}{
			"city": city,
			"lat":  lat,
			"lng":  lng,
		})
		return nil, err
	}

	if r.repo == nil {
		return nil, ErrSpatialStoreUnavailable
	}

	district, err := r.repo.FindByPoint(ctx, city, lat, lng)
	if err != nil {
		r.log.Error("Failed to query district at point", err, map[string]interface{}{
			"city": city,
			"lat":  lat,
			"lng":  lng,
		})
		return nil, fmt.Errorf("failed to resolve district: %w", err)
	}

	if district == nil {
		r.log.Debug("No district contains point", map[string]interface{}{
			"city": city,
			"lat":  lat,
			"lng":  lng,
		})
		return nil, nil
	}

	r.log.Debug("District resolved", map[string]interface{}{
		"city":      city,
		"zone_code": district.ZoneCode,
	})
	return district, nil
}
