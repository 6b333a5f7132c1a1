package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

func TestAggregate_UsesMaximumNotMean(t *testing.T) {
	mockRepo := new(MockPermitStatsRepository)
	service := NewPermitService(mockRepo, artifacts.NewMemoryStore(), logger.New("test"))
	ctx := context.Background()

	rows := []models.PermitStatRow{
		{City: models.CityAustin, ProjectType: "office", PermitType: "office", P50Days: 50, P90Days: 100, SampleSize: 10},
		{City: models.CityAustin, ProjectType: "office", PermitType: "retail", P50Days: 70, P90Days: 140, SampleSize: 5},
	}
	mockRepo.On("FindByProjectType", ctx, models.CityAustin, "office").Return(rows, nil)

	pathway, err := service.Aggregate(ctx, models.CityAustin, "office")

	require.NoError(t, err)
	assert.Equal(t, 70, pathway.P50Days)
	assert.Equal(t, 140, pathway.P90Days)
	assert.Equal(t, 15, pathway.TotalSamples)
	assert.Equal(t, models.PermitSourceProjectType, pathway.DataSource)
	assert.False(t, pathway.Fallback)
	mockRepo.AssertNotCalled(t, "FindByCity", mock.Anything, mock.Anything)
}

func TestAggregate_FallsBackToCityWide(t *testing.T) {
	mockRepo := new(MockPermitStatsRepository)
	service := NewPermitService(mockRepo, artifacts.NewMemoryStore(), logger.New("test"))
	ctx := context.Background()

	mockRepo.On("FindByProjectType", ctx, models.CitySeattle, "data_center").Return([]models.PermitStatRow{}, nil)
	mockRepo.On("FindByCity", ctx, models.CitySeattle).Return([]models.PermitStatRow{
		{ProjectType: "office", PermitType: "building", P50Days: 90, P90Days: 200, SampleSize: 80},
	}, nil)

	pathway, err := service.Aggregate(ctx, models.CitySeattle, "Data Center")

	require.NoError(t, err)
	assert.Equal(t, models.PermitSourceCityWide, pathway.DataSource)
	assert.Equal(t, "data_center", pathway.ProjectType)
	assert.Equal(t, 200, pathway.P90Days)
	mockRepo.AssertExpectations(t)
}

func TestAggregate_IllustrativeFallback(t *testing.T) {
	t.Run("no rows for city", func(t *testing.T) {
		mockRepo := new(MockPermitStatsRepository)
		service := NewPermitService(mockRepo, artifacts.NewMemoryStore(), logger.New("test"))
		mockRepo.On("FindByProjectType", mock.Anything, models.CityChicago, "office").Return([]models.PermitStatRow{}, nil)
		mockRepo.On("FindByCity", mock.Anything, models.CityChicago).Return([]models.PermitStatRow{}, nil)

		pathway, err := service.Aggregate(context.Background(), models.CityChicago, "office")

		require.NoError(t, err)
		assert.True(t, pathway.Fallback)
		assert.Equal(t, models.PermitSourceIllustrative, pathway.DataSource)
		assert.Equal(t, 120, pathway.P90Days)
		assert.Equal(t, 0, pathway.TotalSamples)
	})

	t.Run("store not configured", func(t *testing.T) {
		service := NewPermitService(nil, artifacts.NewMemoryStore(), logger.New("test"))

		pathway, err := service.Aggregate(context.Background(), models.CityChicago, "")

		require.NoError(t, err)
		assert.True(t, pathway.Fallback)
		assert.Equal(t, models.UnknownProjectType, pathway.ProjectType)
		for _, p := range pathway.Permits {
			assert.Equal(t, models.CityChicago, p.City)
		}
	})
}

func TestAggregate_RepositoryError(t *testing.T) {
	mockRepo := new(MockPermitStatsRepository)
	service := NewPermitService(mockRepo, artifacts.NewMemoryStore(), logger.New("test"))
	dbErr := errors.New("connection refused")
	mockRepo.On("FindByProjectType", mock.Anything, models.CityChicago, "office").Return(nil, dbErr)

	_, err := service.Aggregate(context.Background(), models.CityChicago, "office")

	assert.ErrorIs(t, err, dbErr)
}

func TestAggregate_UnknownCity(t *testing.T) {
	service := NewPermitService(nil, artifacts.NewMemoryStore(), logger.New("test"))

	_, err := service.Aggregate(context.Background(), "houston", "office")

	assert.ErrorIs(t, err, ErrUnknownCity)
}

func TestAggregateRows(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := []models.PermitStatRow{
		{ProjectType: "office", PermitType: "building", P50Days: 40, P90Days: 90, SampleSize: 20, LastCalculated: &older,
			CommonDelays: []string{"Plan corrections", "Fire review"}},
		// Same permit type from the sentinel project type; the first wins.
		{ProjectType: models.UnknownProjectType, PermitType: "Building", P50Days: 400, P90Days: 900, SampleSize: 500,
			CommonDelays: []string{"ignored"}},
		{ProjectType: "office", PermitType: "electrical", P50Days: 10, P90Days: 30, SampleSize: 5, LastCalculated: &newer,
			CommonDelays: []string{"fire review", "Utility coordination", "Inspection backlog", "Energy code", "Corrections", "Too many"}},
	}

	pathway := AggregateRows(rows)

	require.Len(t, pathway.Permits, 2)
	assert.Equal(t, 40, pathway.P50Days)
	assert.Equal(t, 90, pathway.P90Days)
	assert.Equal(t, 25, pathway.TotalSamples)
	require.NotNil(t, pathway.LastCalculated)
	assert.True(t, newer.Equal(*pathway.LastCalculated))
	assert.Equal(t, []string{"Plan corrections", "Fire review", "Utility coordination", "Inspection backlog", "Energy code"}, pathway.CommonDelays)
	assert.Len(t, pathway.CommonDelays, MaxCommonDelays)

	empty := AggregateRows(nil)
	assert.Empty(t, empty.Permits)
	assert.Empty(t, empty.CommonDelays)
}

func TestCreatePermitPathwayArtifact(t *testing.T) {
	store := artifacts.NewMemoryStore()
	service := NewPermitService(nil, store, logger.New("test"))

	artifact, err := service.CreatePermitPathwayArtifact(context.Background(), PermitRequest{
		City:        models.CitySeattle,
		ProjectType: "multi family",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, models.ArtifactPermitPathway, artifact.Type)
	assert.Contains(t, artifact.WebSlug, "permit-pathway-seattle-multi-family-")
	assert.Equal(t, 1, store.Len())

	var pathway models.PermitPathway
	require.NoError(t, artifact.DecodeOutput(models.ArtifactPermitPathway, &pathway))
	assert.True(t, pathway.Fallback)
}
