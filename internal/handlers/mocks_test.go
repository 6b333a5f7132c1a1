package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/services"
)

type MockZoneResolver struct {
	mock.Mock
}

func (m *MockZoneResolver) Resolve(ctx context.Context, city models.City, lat, lng float64) (*models.ZoningDistrict, error) {
	args := m.Called(ctx, city, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ZoningDistrict), args.Error(1)
}

type MockEntitlementService struct {
	mock.Mock
}

func (m *MockEntitlementService) BuildSnapshot(ctx context.Context, req services.SnapshotRequest) (*models.EntitlementSnapshot, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntitlementSnapshot), args.Error(1)
}

func (m *MockEntitlementService) CreateSnapshotArtifact(ctx context.Context, req services.SnapshotRequest, userEmail *string) (*models.Artifact, error) {
	args := m.Called(ctx, req, userEmail)
	return artifactResult(args)
}

type MockPermitService struct {
	mock.Mock
}

func (m *MockPermitService) Aggregate(ctx context.Context, city models.City, projectType string) (*models.PermitPathway, error) {
	args := m.Called(ctx, city, projectType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PermitPathway), args.Error(1)
}

func (m *MockPermitService) CreatePermitPathwayArtifact(ctx context.Context, req services.PermitRequest, userEmail *string) (*models.Artifact, error) {
	args := m.Called(ctx, req, userEmail)
	return artifactResult(args)
}

type MockTripwireService struct {
	mock.Mock
}

func (m *MockTripwireService) Catalog() []models.TripwireCheck {
	args := m.Called()
	return args.Get(0).([]models.TripwireCheck)
}

func (m *MockTripwireService) Evaluate(ctx context.Context, req services.ChecklistRequest) (*models.TripwireChecklist, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TripwireChecklist), args.Error(1)
}

func (m *MockTripwireService) CreateChecklistArtifact(ctx context.Context, req services.ChecklistRequest, userEmail *string) (*models.Artifact, error) {
	args := m.Called(ctx, req, userEmail)
	return artifactResult(args)
}

type MockRiskService struct {
	mock.Mock
}

func (m *MockRiskService) Synthesize(ctx context.Context, city models.City, sourceIDs []string) (*models.RiskRegister, error) {
	args := m.Called(ctx, city, sourceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RiskRegister), args.Error(1)
}

func (m *MockRiskService) CreateRiskRegisterArtifact(ctx context.Context, req services.RiskRequest, userEmail *string) (*models.Artifact, error) {
	args := m.Called(ctx, req, userEmail)
	return artifactResult(args)
}

type MockArtifactService struct {
	mock.Mock
}

func (m *MockArtifactService) Get(ctx context.Context, id string) (*models.Artifact, error) {
	args := m.Called(ctx, id)
	return artifactResult(args)
}

func (m *MockArtifactService) GetBySlug(ctx context.Context, slug string) (*models.Artifact, error) {
	args := m.Called(ctx, slug)
	return artifactResult(args)
}

func artifactResult(args mock.Arguments) (*models.Artifact, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artifact), args.Error(1)
}
