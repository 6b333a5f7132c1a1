package services

import (
	"context"
	"fmt"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// ArtifactService reads stored artifacts.
type ArtifactService interface {
	// Get returns the artifact with id, or ErrArtifactNotFound.
	Get(ctx context.Context, id string) (*models.Artifact, error)

	// GetBySlug returns the artifact with the given web slug, or
	// ErrArtifactNotFound.
	GetBySlug(ctx context.Context, slug string) (*models.Artifact, error)
}

type artifactService struct {
	store artifacts.Store
	log   *logger.Logger
}

// NewArtifactService creates an ArtifactService.
func NewArtifactService(store artifacts.Store, log *logger.Logger) ArtifactService {
	return &artifactService{
		store: store,
		log:   log,
	}
}

func (s *artifactService) Get(ctx context.Context, id string) (*models.Artifact, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get artifact", err, map[string]interface{}{"artifact_id": id})
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
	}
	return a, nil
}

func (s *artifactService) GetBySlug(ctx context.Context, slug string) (*models.Artifact, error) {
	a, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		s.log.Error("Failed to get artifact by slug", err, map[string]interface{}{"web_slug": slug})
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, slug)
	}
	return a, nil
}
