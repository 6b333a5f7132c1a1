package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/threshold"
)

// Risk register limits.
const (
	MaxRiskItems              = 25
	MaxDelayRisksPerPathway   = 3
	DefaultMaxRiskSources     = 20
	maxConcurrentSourceFetches = 8
)

// RiskRequest asks for a register built from previously created artifacts.
type RiskRequest struct {
	City              models.City `json:"city"`
	SourceArtifactIDs []string    `json:"source_artifact_ids"`
}

// RiskService synthesizes risk registers.
type RiskService interface {
	// Synthesize extracts risks from the source artifacts, in the order given.
	// Sources that do not exist are skipped; store failures abort.
	Synthesize(ctx context.Context, city models.City, sourceIDs []string) (*models.RiskRegister, error)

	// CreateRiskRegisterArtifact synthesizes and stores the register.
	CreateRiskRegisterArtifact(ctx context.Context, req RiskRequest, userEmail *string) (*models.Artifact, error)
}

type riskService struct {
	store      artifacts.Store
	maxSources int
	log        *logger.Logger
}

// NewRiskService creates a RiskService reading sources from store. A
// non-positive maxSources uses DefaultMaxRiskSources.
func NewRiskService(store artifacts.Store, maxSources int, log *logger.Logger) RiskService {
	if maxSources <= 0 {
		maxSources = DefaultMaxRiskSources
	}
	return &riskService{
		store:      store,
		maxSources: maxSources,
		log:        log,
	}
}

func (s *riskService) Synthesize(ctx context.Context, city models.City, sourceIDs []string) (*models.RiskRegister, error) {
	if err := validateCity(city); err != nil {
		return nil, err
	}
	if len(sourceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one source artifact id is required", ErrInvalidInput)
	}
	if len(sourceIDs) > s.maxSources {
		return nil, fmt.Errorf("%w: at most %d source artifacts are allowed, got %d", ErrInvalidInput, s.maxSources, len(sourceIDs))
	}

	sources := make([]*models.Artifact, len(sourceIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSourceFetches)
	for i, id := range sourceIDs {
		g.Go(func() error {
			a, err := s.store.GetByID(gctx, strings.TrimSpace(id))
			if err != nil {
				return fmt.Errorf("failed to fetch source artifact %s: %w", id, err)
			}
			sources[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to fetch risk sources", err, map[string]interface{}{
			"city":    city,
			"sources": len(sourceIDs),
		})
		return nil, err
	}

	register := &models.RiskRegister{
		City:              city,
		SourceArtifactIDs: sourceIDs,
		Risks:             []models.RiskItem{},
	}

	var extracted []models.RiskItem
	for i, a := range sources {
		if a == nil {
			s.log.Debug("Risk source not found, skipping", map[string]interface{}{
				"artifact_id": sourceIDs[i],
			})
			continue
		}
		register.SourcesResolved++

		items, err := extractRisks(a)
		if err != nil {
			s.log.Warn("Skipping undecodable risk source", map[string]interface{}{
				"artifact_id": a.ID,
				"error":       err.Error(),
			})
			continue
		}
		extracted = append(extracted, items...)
	}

	register.Risks = assembleRisks(extracted)

	s.log.Info("Risk register synthesized", map[string]interface{}{
		"city":             city,
		"sources":          len(sourceIDs),
		"sources_resolved": register.SourcesResolved,
		"risks":            len(register.Risks),
	})
	return register, nil
}

// assembleRisks drops repeated descriptions keeping the first, truncates to
// MaxRiskItems and numbers the survivors E-001, E-002, ...
func assembleRisks(items []models.RiskItem) []models.RiskItem {
	out := []models.RiskItem{}
	seen := map[string]bool{}
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Description))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == MaxRiskItems {
			break
		}
	}
	for i := range out {
		out[i].RiskID = fmt.Sprintf("E-%03d", i+1)
		out[i].Status = models.RiskStatusOpen
	}
	return out
}

func extractRisks(a *models.Artifact) ([]models.RiskItem, error) {
	source := fmt.Sprintf("%s:%s", a.Type, a.WebSlug)

	switch a.Type {
	case models.ArtifactZoningSnapshot:
		var snap models.EntitlementSnapshot
		if err := a.DecodeOutput(a.Type, &snap); err != nil {
			return nil, err
		}
		return snapshotRisks(&snap, source), nil

	case models.ArtifactTripwireChecklist:
		var checklist models.TripwireChecklist
		if err := a.DecodeOutput(a.Type, &checklist); err != nil {
			return nil, err
		}
		return checklistRisks(&checklist, source), nil

	case models.ArtifactPermitPathway:
		var pathway models.PermitPathway
		if err := a.DecodeOutput(a.Type, &pathway); err != nil {
			return nil, err
		}
		return pathwayRisks(&pathway, source), nil
	}

	// Registers are never sources of new risks.
	return nil, nil
}

func snapshotRisks(snap *models.EntitlementSnapshot, source string) []models.RiskItem {
	var items []models.RiskItem

	switch snap.Availability {
	case models.AvailabilityPlaceholder:
		items = append(items, models.RiskItem{
			Description: "Zoning district has not been verified; snapshot uses placeholder data",
			Source:      source,
			Consequence: "Use permissions and dimensional limits may differ from what was assumed.",
		})
	case models.AvailabilityRulesMissing:
		items = append(items, models.RiskItem{
			Description: fmt.Sprintf("Zoning rules for %s are not on file", snap.District.ZoneCode),
			Source:      source,
			Consequence: "Use permissions and dimensional limits are unverified.",
		})
	}

	for _, flag := range snap.RedFlags {
		items = append(items, models.RiskItem{
			Description: strings.TrimSpace(flag),
			Source:      source,
			Consequence: "May require additional approvals or design changes.",
		})
	}
	return items
}

func checklistRisks(checklist *models.TripwireChecklist, source string) []models.RiskItem {
	var items []models.RiskItem
	for _, check := range checklist.Checks {
		if check.Status != threshold.StatusLikelyIssue {
			continue
		}
		consequence := check.CommonIssue
		if consequence == "" {
			consequence = "Likely plan review comment requiring redesign."
		}
		items = append(items, models.RiskItem{
			Description: fmt.Sprintf("%s likely does not meet %s", check.Label, check.CodeReference),
			Source:      source,
			Consequence: consequence,
		})
	}
	return items
}

func pathwayRisks(pathway *models.PermitPathway, source string) []models.RiskItem {
	var items []models.RiskItem
	for _, delay := range pathway.CommonDelays {
		if len(items) == MaxDelayRisksPerPathway {
			break
		}
		items = append(items, models.RiskItem{
			Description: fmt.Sprintf("Permit delay: %s", delay),
			Source:      source,
			Consequence: fmt.Sprintf("Could push approvals toward the %d-day P90 estimate.", pathway.P90Days),
		})
	}
	return items
}

func (s *riskService) CreateRiskRegisterArtifact(ctx context.Context, req RiskRequest, userEmail *string) (*models.Artifact, error) {
	register, err := s.Synthesize(ctx, req.City, req.SourceArtifactIDs)
	if err != nil {
		return nil, err
	}

	artifact, err := s.store.Create(ctx, artifacts.CreateInput{
		Type:        models.ArtifactRiskRegister,
		City:        register.City,
		InputParams: req,
		OutputData:  register,
		UserEmail:   userEmail,
	})
	if err != nil {
		s.log.Error("Failed to store risk register", err, map[string]interface{}{
			"city": register.City,
		})
		return nil, fmt.Errorf("failed to store risk register: %w", err)
	}

	s.log.Info("Risk register artifact created", map[string]interface{}{
		"artifact_id": artifact.ID,
		"web_slug":    artifact.WebSlug,
	})
	return artifact, nil
}
