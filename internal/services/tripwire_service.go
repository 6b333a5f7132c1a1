package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/repository"
	"github.com/joseph-karim/site-sense-architect/internal/threshold"
)

// ChecklistRequest carries the measured values of a design, keyed by check
// name. Checks without a value are reported as not checked.
type ChecklistRequest struct {
	Inputs        map[string]float64 `json:"inputs"`
	City          models.City        `json:"city"`
	OccupancyType string             `json:"occupancy_type"`
}

// TripwireService evaluates design values against code-compliance checks.
type TripwireService interface {
	// Catalog returns the checks every checklist reports on, in order.
	Catalog() []models.TripwireCheck

	// Evaluate classifies each catalog check for the request.
	// Returns ErrInvalidInput if an input names a check not in the catalog.
	Evaluate(ctx context.Context, req ChecklistRequest) (*models.TripwireChecklist, error)

	// CreateChecklistArtifact evaluates and stores the checklist.
	CreateChecklistArtifact(ctx context.Context, req ChecklistRequest, userEmail *string) (*models.Artifact, error)
}

type tripwireService struct {
	repo  repository.TripwireRepository
	store artifacts.Store
	log   *logger.Logger
}

// NewTripwireService creates a TripwireService. repo may be nil when no
// database is configured.
func NewTripwireService(repo repository.TripwireRepository, store artifacts.Store, log *logger.Logger) TripwireService {
	return &tripwireService{
		repo:  repo,
		store: store,
		log:   log,
	}
}

func (s *tripwireService) Catalog() []models.TripwireCheck {
	out := make([]models.TripwireCheck, len(models.TripwireCatalog))
	copy(out, models.TripwireCatalog)
	return out
}

func (s *tripwireService) Evaluate(ctx context.Context, req ChecklistRequest) (*models.TripwireChecklist, error) {
	if err := validateCity(req.City); err != nil {
		return nil, err
	}
	occupancy := strings.ToUpper(strings.TrimSpace(req.OccupancyType))

	var unknown []string
	for name := range req.Inputs {
		if _, ok := models.LookupTripwireCheck(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown checks %s", ErrInvalidInput, strings.Join(unknown, ", "))
	}

	rowsByCheck := map[string]models.TripwireRow{}
	if s.repo != nil {
		rows, err := s.repo.FindRows(ctx, req.City, occupancy)
		if err != nil {
			s.log.Error("Failed to query tripwire rows", err, map[string]interface{}{
				"city":           req.City,
				"occupancy_type": occupancy,
			})
			return nil, fmt.Errorf("failed to query tripwire rows: %w", err)
		}
		for _, row := range rows {
			rowsByCheck[row.CheckName] = row
		}
	}

	checklist := &models.TripwireChecklist{
		City:          req.City,
		OccupancyType: occupancy,
		Checks:        make([]models.TripwireResult, 0, len(models.TripwireCatalog)),
		CatalogOnly:   len(rowsByCheck) == 0,
	}

	for _, check := range models.TripwireCatalog {
		result := models.TripwireResult{
			CheckName:     check.CheckName,
			Label:         check.Label,
			Unit:          check.Unit,
			Rationale:     check.Rationale,
			CodeReference: check.CodeReference,
		}

		if row, ok := rowsByCheck[check.CheckName]; ok {
			if row.CodeReference != "" {
				result.CodeReference = row.CodeReference
			}
			result.Requirement = row.Requirement
			result.CommonIssue = row.CommonIssue
			result.Thresholds = row.CheckLogic
		}

		if v, ok := req.Inputs[check.CheckName]; ok {
			value := v
			result.Input = &value
			result.Status = s.evaluate(check.CheckName, value, result.Thresholds)
		} else {
			result.Status = threshold.StatusNotChecked
		}

		switch result.Status {
		case threshold.StatusPass:
			checklist.Summary.Pass++
		case threshold.StatusLikelyIssue:
			checklist.Summary.LikelyIssue++
		case threshold.StatusNotChecked:
			checklist.Summary.NotChecked++
		default:
			checklist.Summary.Unknown++
		}

		checklist.Checks = append(checklist.Checks, result)
	}

	s.log.Info("Tripwire checklist evaluated", map[string]interface{}{
		"city":           req.City,
		"occupancy_type": occupancy,
		"likely_issues":  checklist.Summary.LikelyIssue,
		"catalog_only":   checklist.CatalogOnly,
	})
	return checklist, nil
}

// evaluate classifies one value. A malformed expression makes the whole
// check unknown rather than letting the remaining fields decide.
func (s *tripwireService) evaluate(checkName string, value float64, t threshold.Thresholds) threshold.Status {
	if err := threshold.Validate(t); err != nil {
		s.log.Warn("Malformed threshold expression", map[string]interface{}{
			"check_name": checkName,
			"error":      err.Error(),
		})
		return threshold.StatusUnknown
	}
	return threshold.Evaluate(value, t)
}

func (s *tripwireService) CreateChecklistArtifact(ctx context.Context, req ChecklistRequest, userEmail *string) (*models.Artifact, error) {
	checklist, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	slugParts := []string{}
	if checklist.OccupancyType != "" {
		slugParts = append(slugParts, checklist.OccupancyType)
	}

	artifact, err := s.store.Create(ctx, artifacts.CreateInput{
		Type:        models.ArtifactTripwireChecklist,
		City:        checklist.City,
		InputParams: req,
		OutputData:  checklist,
		SlugParts:   slugParts,
		UserEmail:   userEmail,
	})
	if err != nil {
		s.log.Error("Failed to store tripwire checklist", err, map[string]interface{}{
			"city": checklist.City,
		})
		return nil, fmt.Errorf("failed to store tripwire checklist: %w", err)
	}

	s.log.Info("Tripwire checklist artifact created", map[string]interface{}{
		"artifact_id": artifact.ID,
		"web_slug":    artifact.WebSlug,
	})
	return artifact, nil
}
