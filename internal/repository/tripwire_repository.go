package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// TripwireRepository defines reads of jurisdiction-specific tripwire data.
type TripwireRepository interface {
	// FindRows returns at most one row per check name for (city,
	// occupancyType). A city-specific row wins over a city-agnostic one, and
	// an occupancy-specific row wins over a generic one.
	FindRows(ctx context.Context, city models.City, occupancyType string) ([]models.TripwireRow, error)
}

type tripwireRepository struct {
	db *database.Database
}

// NewTripwireRepository creates a new instance of TripwireRepository.
func NewTripwireRepository(db *database.Database) TripwireRepository {
	return &tripwireRepository{
		db: db,
	}
}

func (r *tripwireRepository) FindRows(ctx context.Context, city models.City, occupancyType string) ([]models.TripwireRow, error) {
	query := `
		SELECT DISTINCT ON (check_name)
			COALESCE(city, ''),
			COALESCE(occupancy_type, ''),
			check_name,
			code_reference,
			requirement,
			common_issue,
			check_logic
		FROM tripwire_rules
		WHERE (city = $1 OR city IS NULL)
		  AND (occupancy_type = $2 OR occupancy_type IS NULL)
		ORDER BY check_name, (city IS NULL), (occupancy_type IS NULL), id
	`

	rows, err := r.db.Pool.Query(ctx, query, string(city), occupancyType)
	if err != nil {
		return nil, fmt.Errorf("failed to query tripwire rows (city=%s, occupancy=%s): %w", city, occupancyType, err)
	}
	defer rows.Close()

	results := []models.TripwireRow{}
	for rows.Next() {
		var row models.TripwireRow
		var logic []byte
		err := rows.Scan(
			&row.City,
			&row.OccupancyType,
			&row.CheckName,
			&row.CodeReference,
			&row.Requirement,
			&row.CommonIssue,
			&logic,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tripwire row: %w", err)
		}
		if len(logic) > 0 {
			if err := json.Unmarshal(logic, &row.CheckLogic); err != nil {
				return nil, fmt.Errorf("failed to decode check logic for %s: %w", row.CheckName, err)
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tripwire rows: %w", err)
	}

	return results, nil
}
