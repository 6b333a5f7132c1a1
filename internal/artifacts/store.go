// Package artifacts persists immutable snapshots of computed results.
//
// Every producer writes through the Store contract. Which backend sits
// behind it is chosen once at startup by NewStore.
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// ErrInvalidArtifact is returned when a CreateInput cannot be stored.
var ErrInvalidArtifact = errors.New("invalid artifact")

// Store persists and retrieves artifacts. Artifacts are never updated or
// deleted once created.
type Store interface {
	// Create assigns an id, slug and timestamp to input and persists it.
	Create(ctx context.Context, input CreateInput) (*models.Artifact, error)

	// GetByID returns the artifact with id.
	// Returns nil, nil if no artifact has that id.
	GetByID(ctx context.Context, id string) (*models.Artifact, error)

	// GetBySlug returns the artifact with the given web slug.
	// Returns nil, nil if no artifact has that slug.
	GetBySlug(ctx context.Context, slug string) (*models.Artifact, error)
}

// CreateInput describes an artifact to be created. InputParams and OutputData
// are marshaled to JSON. SlugParts are the key dimensions that make the slug
// readable, e.g. a zone code or project type.
type CreateInput struct {
	InputParams interface{}
	OutputData  interface{}
	UserEmail   *string
	Type        models.ArtifactType
	City        models.City
	SlugParts   []string
}

// NewStore selects the artifact backend. A configured database gives the
// durable PostgresStore; otherwise the process-wide MemoryStore is used and
// artifacts are lost on restart.
func NewStore(db *database.Database, log *logger.Logger) Store {
	if db == nil {
		log.Warn("No database configured, artifacts are kept in memory only", nil)
		return Shared()
	}
	log.Info("Using PostgreSQL artifact store", nil)
	return NewPostgresStore(db, log)
}

// build validates input and produces a new artifact with a fresh identity.
func build(input CreateInput) (*models.Artifact, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidArtifact, input.Type)
	}
	if !input.City.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, models.ErrUnknownCity)
	}
	if input.OutputData == nil {
		return nil, fmt.Errorf("%w: output data is required", ErrInvalidArtifact)
	}

	params := input.InputParams
	if params == nil {
		params = map[string]interface{}{}
	}
	inputJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input params: %w", err)
	}
	outputJSON, err := json.Marshal(input.OutputData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output data: %w", err)
	}

	var email *string
	if input.UserEmail != nil && strings.TrimSpace(*input.UserEmail) != "" {
		e := strings.TrimSpace(*input.UserEmail)
		email = &e
	}

	return &models.Artifact{
		ID:          uuid.NewString(),
		Type:        input.Type,
		City:        input.City,
		InputParams: inputJSON,
		OutputData:  outputJSON,
		WebSlug:     NewSlug(input.Type, input.City, input.SlugParts...),
		UserEmail:   email,
		// Postgres keeps microseconds; truncating keeps both backends equal.
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// NewSlug returns "<type>-<city>-<parts>-<suffix>" where suffix is six random
// hex characters. Slugs are lookup keys only and carry no access control.
func NewSlug(t models.ArtifactType, city models.City, parts ...string) string {
	segments := []string{slugify(string(t)), slugify(string(city))}
	for _, p := range parts {
		if s := slugify(p); s != "" {
			segments = append(segments, s)
		}
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	segments = append(segments, suffix)
	return strings.Join(segments, "-")
}

func slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
