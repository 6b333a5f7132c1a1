package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/geocode"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/overlay"
	"github.com/joseph-karim/site-sense-architect/internal/repository"
)

// Placeholder district values used when no spatial store is configured.
const (
	PlaceholderZoneCode = "UNVERIFIED"
	PlaceholderZoneName = "Illustrative district (no zoning data configured)"
)

// SnapshotRequest asks for the zoning picture of a location. Either both
// coordinates or an address must be given; coordinates win when both are.
type SnapshotRequest struct {
	Lat     *float64    `json:"lat,omitempty"`
	Lng     *float64    `json:"lng,omitempty"`
	City    models.City `json:"city"`
	Address string      `json:"address,omitempty"`
	UseType string      `json:"use_type"`
}

// EntitlementService builds entitlement snapshots.
type EntitlementService interface {
	// BuildSnapshot resolves the request's location to a district and merges
	// it with the zone's rules.
	// Returns ErrNoDistrictFound if the spatial store has no district there.
	// Returns a placeholder snapshot (not an error) when no spatial store is
	// configured, and a rules_missing snapshot when the zone has no rules.
	BuildSnapshot(ctx context.Context, req SnapshotRequest) (*models.EntitlementSnapshot, error)

	// CreateSnapshotArtifact builds a snapshot and stores it as an artifact.
	CreateSnapshotArtifact(ctx context.Context, req SnapshotRequest, userEmail *string) (*models.Artifact, error)
}

type entitlementService struct {
	resolver ZoneResolver
	rules    repository.RulesRepository
	deriver  *overlay.Deriver
	geocoder geocode.Client
	store    artifacts.Store
	log      *logger.Logger
}

// NewEntitlementService creates an EntitlementService. rules may be nil when
// no database is configured.
func NewEntitlementService(
	resolver ZoneResolver,
	rules repository.RulesRepository,
	deriver *overlay.Deriver,
	geocoder geocode.Client,
	store artifacts.Store,
	log *logger.Logger,
) EntitlementService {
	return &entitlementService{
		resolver: resolver,
		rules:    rules,
		deriver:  deriver,
		geocoder: geocoder,
		store:    store,
		log:      log,
	}
}

func (s *entitlementService) BuildSnapshot(ctx context.Context, req SnapshotRequest) (*models.EntitlementSnapshot, error) {
	if err := validateCity(req.City); err != nil {
		return nil, err
	}
	useType := normalizeTag(req.UseType)
	if useType == "" {
		return nil, fmt.Errorf("%w: use_type is required", ErrInvalidInput)
	}

	loc, err := s.locate(ctx, req)
	if err != nil {
		return nil, err
	}

	district, err := s.resolver.Resolve(ctx, req.City, loc.Lat, loc.Lng)
	if errors.Is(err, ErrSpatialStoreUnavailable) {
		s.log.Warn("Spatial store not configured, returning placeholder snapshot", map[string]interface{}{
			"city": req.City,
		})
		return placeholderSnapshot(req.City, useType, loc), nil
	}
	if err != nil {
		return nil, err
	}
	if district == nil {
		return nil, fmt.Errorf("%w: %s (%f, %f)", ErrNoDistrictFound, req.City, loc.Lat, loc.Lng)
	}

	var rules *models.ZoningRules
	if s.rules != nil {
		rules, err = s.rules.FindByZone(ctx, req.City, district.ZoneCode)
		if err != nil {
			s.log.Error("Failed to query zoning rules", err, map[string]interface{}{
				"city":      req.City,
				"zone_code": district.ZoneCode,
			})
			return nil, fmt.Errorf("failed to load rules for %s: %w", district.ZoneCode, err)
		}
	}

	snapshot := s.merge(*district, rules, useType, loc)

	s.log.Info("Entitlement snapshot built", map[string]interface{}{
		"city":         req.City,
		"zone_code":    district.ZoneCode,
		"use_type":     useType,
		"use_status":   snapshot.SelectedUseStatus,
		"availability": snapshot.Availability,
	})

	return snapshot, nil
}

// locate turns the request into a point. Provider outages degrade to the
// city's default location; an address the provider cannot find is an error.
func (s *entitlementService) locate(ctx context.Context, req SnapshotRequest) (models.Location, error) {
	if req.Lat != nil && req.Lng != nil {
		if err := validateCoordinates(*req.Lat, *req.Lng); err != nil {
			return models.Location{}, err
		}
		return models.Location{Address: req.Address, Lat: *req.Lat, Lng: *req.Lng}, nil
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return models.Location{}, fmt.Errorf("%w: lat and lng or an address are required", ErrInvalidInput)
	}

	res, err := s.geocoder.Geocode(ctx, req.City, address)
	switch {
	case errors.Is(err, geocode.ErrAddressNotFound):
		return models.Location{}, fmt.Errorf("%w: %q", ErrGeocodeFailed, address)
	case err != nil:
		s.log.Warn("Geocoder unavailable, using city default location", map[string]interface{}{
			"city":  req.City,
			"error": err.Error(),
		})
		res, _ = geocode.DefaultLocationClient{}.Geocode(ctx, req.City, address)
	}

	return models.Location{
		Address:           address,
		NormalizedAddress: res.NormalizedAddress,
		Lat:               res.Lat,
		Lng:               res.Lng,
		Approximate:       res.Approximate,
	}, nil
}

func (s *entitlementService) merge(district models.ZoningDistrict, rules *models.ZoningRules, useType string, loc models.Location) *models.EntitlementSnapshot {
	flags := s.deriver.Derive(district.City, district.Properties)

	snapshot := &models.EntitlementSnapshot{
		City:              district.City,
		UseType:           useType,
		District:          district,
		Rules:             rules,
		Location:          loc,
		Provenance:        models.ProvenanceDatabase,
		SelectedUseStatus: models.UseStatusUnknown,
		PermittedUses:     []string{},
		ConditionalUses:   []string{},
		ProhibitedUses:    []string{},
		RedFlags:          []string{},
		DataFreshness: models.DataFreshness{
			DistrictLastUpdated: district.LastUpdated,
			DistrictSource:      district.SourceURL,
		},
	}

	if rules == nil {
		snapshot.Availability = models.AvailabilityRulesMissing
		snapshot.IncompleteData = true
		snapshot.OverlayFlags = flags.Sorted()
		return snapshot
	}

	ruleOverlays := overlay.FlagSet{}
	ruleOverlays.AddAll(rules.Overlays)

	snapshot.Availability = models.AvailabilityComplete
	snapshot.SelectedUseStatus = ClassifyUse(useType, rules)
	snapshot.PermittedUses = nonNilStrings(rules.PermittedUses)
	snapshot.ConditionalUses = nonNilStrings(rules.ConditionalUses)
	snapshot.ProhibitedUses = nonNilStrings(rules.ProhibitedUses)
	snapshot.RedFlags = nonNilStrings(rules.RedFlags)
	snapshot.OverlayFlags = ruleOverlays.Union(flags).Sorted()
	snapshot.Dimensions = rules.Dimensions
	snapshot.ParkingRules = rules.ParkingRules
	snapshot.DataFreshness.RulesSource = rules.SourceURL
	return snapshot
}

func placeholderSnapshot(city models.City, useType string, loc models.Location) *models.EntitlementSnapshot {
	return &models.EntitlementSnapshot{
		City:    city,
		UseType: useType,
		District: models.ZoningDistrict{
			City:     city,
			ZoneCode: PlaceholderZoneCode,
			ZoneName: PlaceholderZoneName,
		},
		Location:          loc,
		Provenance:        models.ProvenancePlaceholder,
		Availability:      models.AvailabilityPlaceholder,
		SelectedUseStatus: models.UseStatusUnknown,
		IncompleteData:    true,
		PermittedUses:     []string{},
		ConditionalUses:   []string{},
		ProhibitedUses:    []string{},
		OverlayFlags:      []string{},
		RedFlags:          []string{},
	}
}

// ClassifyUse places useType in the most restrictive list that contains it:
// prohibited, then conditional, then permitted. Tags are compared after
// normalizeTag.
func ClassifyUse(useType string, rules *models.ZoningRules) models.UseStatus {
	if rules == nil {
		return models.UseStatusUnknown
	}
	tag := normalizeTag(useType)
	switch {
	case containsTag(rules.ProhibitedUses, tag):
		return models.UseStatusProhibited
	case containsTag(rules.ConditionalUses, tag):
		return models.UseStatusConditional
	case containsTag(rules.PermittedUses, tag):
		return models.UseStatusPermitted
	default:
		return models.UseStatusUnknown
	}
}

func containsTag(list []string, tag string) bool {
	if tag == "" {
		return false
	}
	for _, item := range list {
		if normalizeTag(item) == tag {
			return true
		}
	}
	return false
}

// normalizeTag lowercases s and joins its words with underscores, so
// "Multi-Family", "multi family" and "multi_family" compare equal.
func normalizeTag(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (s *entitlementService) CreateSnapshotArtifact(ctx context.Context, req SnapshotRequest, userEmail *string) (*models.Artifact, error) {
	snapshot, err := s.BuildSnapshot(ctx, req)
	if err != nil {
		return nil, err
	}

	artifact, err := s.store.Create(ctx, artifacts.CreateInput{
		Type:        models.ArtifactZoningSnapshot,
		City:        snapshot.City,
		InputParams: req,
		OutputData:  snapshot,
		SlugParts:   []string{snapshot.District.ZoneCode, snapshot.UseType},
		UserEmail:   userEmail,
	})
	if err != nil {
		s.log.Error("Failed to store zoning snapshot", err, map[string]interface{}{
			"city":      snapshot.City,
			"zone_code": snapshot.District.ZoneCode,
		})
		return nil, fmt.Errorf("failed to store zoning snapshot: %w", err)
	}

	s.log.Info("Zoning snapshot artifact created", map[string]interface{}{
		"artifact_id": artifact.ID,
		"web_slug":    artifact.WebSlug,
	})
	return artifact, nil
}
