package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// RulesRepository defines lookups of zoning rule sets.
type RulesRepository interface {
	// FindByZone returns the rule set for (city, zoneCode).
	// Returns nil, nil when the zone has no rules on file.
	FindByZone(ctx context.Context, city models.City, zoneCode string) (*models.ZoningRules, error)
}

type rulesRepository struct {
	db *database.Database
}

// NewRulesRepository creates a new instance of RulesRepository.
func NewRulesRepository(db *database.Database) RulesRepository {
	return &rulesRepository{
		db: db,
	}
}

func (r *rulesRepository) FindByZone(ctx context.Context, city models.City, zoneCode string) (*models.ZoningRules, error) {
	query := `
		SELECT
			city,
			zone_code,
			max_height_ft,
			max_height_stories,
			far,
			lot_coverage_pct,
			front_setback_ft,
			side_setback_ft,
			rear_setback_ft,
			permitted_uses,
			conditional_uses,
			prohibited_uses,
			overlays,
			red_flags,
			parking_rules,
			source_url
		FROM zoning_rules
		WHERE city = $1 AND zone_code = $2
	`

	var rules models.ZoningRules
	var parking []byte

	err := r.db.Pool.QueryRow(ctx, query, string(city), zoneCode).Scan(
		&rules.City,
		&rules.ZoneCode,
		&rules.Dimensions.MaxHeightFt,
		&rules.Dimensions.MaxHeightStories,
		&rules.Dimensions.FAR,
		&rules.Dimensions.LotCoveragePct,
		&rules.Dimensions.FrontSetbackFt,
		&rules.Dimensions.SideSetbackFt,
		&rules.Dimensions.RearSetbackFt,
		&rules.PermittedUses,
		&rules.ConditionalUses,
		&rules.ProhibitedUses,
		&rules.Overlays,
		&rules.RedFlags,
		&parking,
		&rules.SourceURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query rules (city=%s, zone=%s): %w", city, zoneCode, err)
	}

	if len(parking) > 0 {
		rules.ParkingRules = parking
	}

	return &rules, nil
}
