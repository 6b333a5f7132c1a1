package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// PermitStatsRepository defines reads of historical permit duration samples.
type PermitStatsRepository interface {
	// FindByProjectType returns rows for city whose project type is projectType
	// or the unattributed sentinel. Exact matches come first, then rows with
	// larger samples.
	// Returns an empty slice if nothing matches (not an error).
	FindByProjectType(ctx context.Context, city models.City, projectType string) ([]models.PermitStatRow, error)

	// FindByCity returns every row for city, largest samples first.
	FindByCity(ctx context.Context, city models.City) ([]models.PermitStatRow, error)
}

type permitStatsRepository struct {
	db *database.Database
}

// NewPermitStatsRepository creates a new instance of PermitStatsRepository.
func NewPermitStatsRepository(db *database.Database) PermitStatsRepository {
	return &permitStatsRepository{
		db: db,
	}
}

const permitStatsColumns = `
	city,
	project_type,
	permit_type,
	p50_days,
	p90_days,
	sample_size,
	common_delays,
	last_calculated
`

func (r *permitStatsRepository) FindByProjectType(ctx context.Context, city models.City, projectType string) ([]models.PermitStatRow, error) {
	query := `
		SELECT ` + permitStatsColumns + `
		FROM permit_stats
		WHERE city = $1 AND project_type IN ($2, $3)
		ORDER BY (project_type = $2) DESC, sample_size DESC, permit_type ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, string(city), projectType, models.UnknownProjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to query permit stats (city=%s, project_type=%s): %w", city, projectType, err)
	}

	return scanPermitStats(rows)
}

func (r *permitStatsRepository) FindByCity(ctx context.Context, city models.City) ([]models.PermitStatRow, error) {
	query := `
		SELECT ` + permitStatsColumns + `
		FROM permit_stats
		WHERE city = $1
		ORDER BY sample_size DESC, permit_type ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, string(city))
	if err != nil {
		return nil, fmt.Errorf("failed to query permit stats (city=%s): %w", city, err)
	}

	return scanPermitStats(rows)
}

func scanPermitStats(rows pgx.Rows) ([]models.PermitStatRow, error) {
	defer rows.Close()

	results := []models.PermitStatRow{}
	for rows.Next() {
		var row models.PermitStatRow
		err := rows.Scan(
			&row.City,
			&row.ProjectType,
			&row.PermitType,
			&row.P50Days,
			&row.P90Days,
			&row.SampleSize,
			&row.CommonDelays,
			&row.LastCalculated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permit stats row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permit stats rows: %w", err)
	}

	return results, nil
}
