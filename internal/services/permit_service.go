package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/repository"
)

// MaxCommonDelays caps the delay list of a permit pathway.
const MaxCommonDelays = 5

// illustrativePermits are shown when no historical samples exist. They are
// typical figures, not measurements.
var illustrativePermits = []models.PermitStatRow{
	{
		ProjectType:  models.UnknownProjectType,
		PermitType:   "building",
		P50Days:      60,
		P90Days:      120,
		CommonDelays: []string{"Plan review corrections", "Incomplete application"},
	},
	{
		ProjectType:  models.UnknownProjectType,
		PermitType:   "zoning_review",
		P50Days:      30,
		P90Days:      75,
		CommonDelays: []string{"Variance or special use hearing"},
	},
	{
		ProjectType:  models.UnknownProjectType,
		PermitType:   "fire_protection",
		P50Days:      21,
		P90Days:      45,
		CommonDelays: []string{"Sprinkler shop drawing resubmittal"},
	},
}

// PermitRequest asks for the expected permit timeline of a project.
type PermitRequest struct {
	City        models.City `json:"city"`
	ProjectType string      `json:"project_type"`
}

// PermitService estimates permit timelines from historical samples.
type PermitService interface {
	// Aggregate returns the pathway for (city, projectType). It falls back to
	// every row of the city when the project type has none, and to static
	// illustrative figures when the city has no data or no store is
	// configured.
	Aggregate(ctx context.Context, city models.City, projectType string) (*models.PermitPathway, error)

	// CreatePermitPathwayArtifact aggregates and stores the pathway.
	CreatePermitPathwayArtifact(ctx context.Context, req PermitRequest, userEmail *string) (*models.Artifact, error)
}

type permitService struct {
	repo  repository.PermitStatsRepository
	store artifacts.Store
	log   *logger.Logger
}

// NewPermitService creates a PermitService. repo may be nil when no
// database is configured.
func NewPermitService(repo repository.PermitStatsRepository, store artifacts.Store, log *logger.Logger) PermitService {
	return &permitService{
		repo:  repo,
		store: store,
		log:   log,
	}
}

func (s *permitService) Aggregate(ctx context.Context, city models.City, projectType string) (*models.PermitPathway, error) {
	if err := validateCity(city); err != nil {
		return nil, err
	}
	projectType = normalizeTag(projectType)
	if projectType == "" {
		projectType = models.UnknownProjectType
	}

	if s.repo == nil {
		return illustrativePathway(city, projectType), nil
	}

	rows, err := s.repo.FindByProjectType(ctx, city, projectType)
	if err != nil {
		s.log.Error("Failed to query permit stats", err, map[string]interface{}{
			"city":         city,
			"project_type": projectType,
		})
		return nil, fmt.Errorf("failed to query permit stats: %w", err)
	}
	source := models.PermitSourceProjectType

	if len(rows) == 0 {
		rows, err = s.repo.FindByCity(ctx, city)
		if err != nil {
			s.log.Error("Failed to query city permit stats", err, map[string]interface{}{
				"city": city,
			})
			return nil, fmt.Errorf("failed to query permit stats: %w", err)
		}
		source = models.PermitSourceCityWide
	}

	if len(rows) == 0 {
		s.log.Info("No permit history for city, using illustrative figures", map[string]interface{}{
			"city": city,
		})
		return illustrativePathway(city, projectType), nil
	}

	pathway := AggregateRows(rows)
	pathway.City = city
	pathway.ProjectType = projectType
	pathway.DataSource = source

	s.log.Info("Permit pathway aggregated", map[string]interface{}{
		"city":         city,
		"project_type": projectType,
		"data_source":  source,
		"permits":      len(pathway.Permits),
		"p90_days":     pathway.P90Days,
	})
	return pathway, nil
}

// AggregateRows combines rows into a pathway. The first row of each permit
// type is kept, so callers order rows by preference. P50 and P90 are the
// maximum over the kept rows: the slowest gating permit bounds the timeline.
func AggregateRows(rows []models.PermitStatRow) *models.PermitPathway {
	pathway := &models.PermitPathway{
		Permits:      []models.PermitStatRow{},
		CommonDelays: []string{},
	}

	seenPermit := map[string]bool{}
	seenDelay := map[string]bool{}

	for _, row := range rows {
		key := normalizeTag(row.PermitType)
		if seenPermit[key] {
			continue
		}
		seenPermit[key] = true
		pathway.Permits = append(pathway.Permits, row)

		if row.P50Days > pathway.P50Days {
			pathway.P50Days = row.P50Days
		}
		if row.P90Days > pathway.P90Days {
			pathway.P90Days = row.P90Days
		}
		pathway.TotalSamples += row.SampleSize

		if row.LastCalculated != nil && (pathway.LastCalculated == nil || row.LastCalculated.After(*pathway.LastCalculated)) {
			t := *row.LastCalculated
			pathway.LastCalculated = &t
		}

		for _, d := range row.CommonDelays {
			d = strings.TrimSpace(d)
			k := strings.ToLower(d)
			if d == "" || seenDelay[k] || len(pathway.CommonDelays) >= MaxCommonDelays {
				continue
			}
			seenDelay[k] = true
			pathway.CommonDelays = append(pathway.CommonDelays, d)
		}
	}

	return pathway
}

func illustrativePathway(city models.City, projectType string) *models.PermitPathway {
	rows := make([]models.PermitStatRow, len(illustrativePermits))
	for i, row := range illustrativePermits {
		row.City = city
		rows[i] = row
	}

	pathway := AggregateRows(rows)
	pathway.City = city
	pathway.ProjectType = projectType
	pathway.DataSource = models.PermitSourceIllustrative
	pathway.Fallback = true
	return pathway
}

func (s *permitService) CreatePermitPathwayArtifact(ctx context.Context, req PermitRequest, userEmail *string) (*models.Artifact, error) {
	pathway, err := s.Aggregate(ctx, req.City, req.ProjectType)
	if err != nil {
		return nil, err
	}

	artifact, err := s.store.Create(ctx, artifacts.CreateInput{
		Type:        models.ArtifactPermitPathway,
		City:        pathway.City,
		InputParams: req,
		OutputData:  pathway,
		SlugParts:   []string{pathway.ProjectType},
		UserEmail:   userEmail,
	})
	if err != nil {
		s.log.Error("Failed to store permit pathway", err, map[string]interface{}{
			"city":         pathway.City,
			"project_type": pathway.ProjectType,
		})
		return nil, fmt.Errorf("failed to store permit pathway: %w", err)
	}

	s.log.Info("Permit pathway artifact created", map[string]interface{}{
		"artifact_id": artifact.ID,
		"web_slug":    artifact.WebSlug,
	})
	return artifact, nil
}
