package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joseph-karim/site-sense-architect/internal/geocode"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// MockDistrictRepository is a mock implementation of DistrictRepository for testing
type MockDistrictRepository struct {
	mock.Mock
}

func (m *MockDistrictRepository) FindByPoint(ctx context.Context, city models.City, lat, lng float64) (*models.ZoningDistrict, error) {
	args := m.Called(ctx, city, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ZoningDistrict), args.Error(1)
}

// MockRulesRepository is a mock implementation of RulesRepository for testing
type MockRulesRepository struct {
	mock.Mock
}

func (m *MockRulesRepository) FindByZone(ctx context.Context, city models.City, zoneCode string) (*models.ZoningRules, error) {
	args := m.Called(ctx, city, zoneCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ZoningRules), args.Error(1)
}

// MockPermitStatsRepository is a mock implementation of PermitStatsRepository for testing
type MockPermitStatsRepository struct {
	mock.Mock
}

func (m *MockPermitStatsRepository) FindByProjectType(ctx context.Context, city models.City, projectType string) ([]models.PermitStatRow, error) {
	args := m.Called(ctx, city, projectType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PermitStatRow), args.Error(1)
}

func (m *MockPermitStatsRepository) FindByCity(ctx context.Context, city models.City) ([]models.PermitStatRow, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PermitStatRow), args.Error(1)
}

// MockTripwireRepository is a mock implementation of TripwireRepository for testing
type MockTripwireRepository struct {
	mock.Mock
}

func (m *MockTripwireRepository) FindRows(ctx context.Context, city models.City, occupancyType string) ([]models.TripwireRow, error) {
	args := m.Called(ctx, city, occupancyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TripwireRow), args.Error(1)
}

// MockGeocoder is a mock implementation of geocode.Client for testing
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, city models.City, address string) (*geocode.Result, error) {
	args := m.Called(ctx, city, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Result), args.Error(1)
}

func floatPtr(f float64) *float64 {
	return &f
}
