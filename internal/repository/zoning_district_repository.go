package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// DistrictRepository defines spatial lookups against the zoning layer.
type DistrictRepository interface {
	// FindByPoint finds the zoning district of city that contains the given
	// lat/lng point.
	// Returns nil, nil if no district contains the point (not an error).
	// When more than one district contains the point the one with the lowest
	// zone code is returned.
	FindByPoint(ctx context.Context, city models.City, lat, lng float64) (*models.ZoningDistrict, error)
}

// districtRepository is the concrete implementation of DistrictRepository.
type districtRepository struct {
	db *database.Database
}

// NewDistrictRepository creates a new instance of DistrictRepository.
func NewDistrictRepository(db *database.Database) DistrictRepository {
	return &districtRepository{
		db: db,
	}
}

// FindByPoint uses PostGIS ST_Contains to perform a point-in-polygon query
// restricted to one city.
//
// Note: PostGIS functions expect (longitude, latitude) order, not (lat, lng).
func (r *districtRepository) FindByPoint(ctx context.Context, city models.City, lat, lng float64) (*models.ZoningDistrict, error) {
	query := `
		SELECT
			id,
			city,
			zone_code,
			zone_name,
			properties,
			source_url,
			last_updated,
			ST_AsGeoJSON(geom) AS geometry
		FROM zoning_districts
		WHERE city = $1
		  AND ST_Contains(geom, ST_SetSRID(ST_MakePoint($2, $3), 4326))
		ORDER BY zone_code ASC, id ASC
		LIMIT 1
	`

	var district models.ZoningDistrict
	var properties []byte
	var geomJSON []byte

	err := r.db.Pool.QueryRow(ctx, query, string(city), lng, lat).Scan(
		&district.ID,
		&district.City,
		&district.ZoneCode,
		&district.ZoneName,
		&properties,
		&district.SourceURL,
		&district.LastUpdated,
		&geomJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query district at point (city=%s, lat=%f, lng=%f): %w", city, lat, lng, err)
	}

	if len(properties) > 0 {
		district.Properties = properties
	}

	var geom models.MultiPolygon
	if err := geom.Scan(geomJSON); err != nil {
		return nil, fmt.Errorf("failed to parse geometry for district %d: %w", district.ID, err)
	}
	if len(geom.Coordinates) > 0 {
		district.Geometry = &geom
	}

	return &district, nil
}
