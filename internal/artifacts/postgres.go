package artifacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

const (
	uniqueViolation = "23505"
	slugConstraint  = "artifacts_web_slug_key"
	maxSlugAttempts = 5
)

// PostgresStore persists artifacts in the artifacts table.
type PostgresStore struct {
	db  *database.Database
	log *logger.Logger
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db *database.Database, log *logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log}
}

func (s *PostgresStore) Create(ctx context.Context, input CreateInput) (*models.Artifact, error) {
	artifact, err := build(input)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO artifacts (id, type, city, input_params, output_data, web_slug, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for attempt := 1; ; attempt++ {
		_, err = s.db.Pool.Exec(ctx, query,
			artifact.ID,
			string(artifact.Type),
			string(artifact.City),
			[]byte(artifact.InputParams),
			[]byte(artifact.OutputData),
			artifact.WebSlug,
			artifact.UserEmail,
			artifact.CreatedAt,
		)
		if err == nil {
			return artifact, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == slugConstraint && attempt < maxSlugAttempts {
			s.log.Debug("Artifact slug collision, regenerating", map[string]interface{}{
				"slug":    artifact.WebSlug,
				"attempt": attempt,
			})
			artifact.WebSlug = NewSlug(input.Type, input.City, input.SlugParts...)
			continue
		}

		return nil, fmt.Errorf("failed to insert artifact (type=%s, city=%s): %w", artifact.Type, artifact.City, err)
	}
}

const artifactColumns = `
	id::text,
	type,
	city,
	input_params,
	output_data,
	web_slug,
	user_email,
	created_at
`

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	// Non-UUID ids cannot exist in the table; avoid a cast error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := s.db.Pool.QueryRow(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = $1`, id)
	artifact, err := scanArtifact(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact by id %s: %w", id, err)
	}
	return artifact, nil
}

func (s *PostgresStore) GetBySlug(ctx context.Context, slug string) (*models.Artifact, error) {
	row := s.db.Pool.QueryRow(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE web_slug = $1`, slug)
	artifact, err := scanArtifact(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact by slug %s: %w", slug, err)
	}
	return artifact, nil
}

func scanArtifact(row pgx.Row) (*models.Artifact, error) {
	var a models.Artifact
	var input, output []byte

	err := row.Scan(
		&a.ID,
		&a.Type,
		&a.City,
		&input,
		&output,
		&a.WebSlug,
		&a.UserEmail,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	a.InputParams = input
	a.OutputData = output
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
