package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/geocode"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/overlay"
)

type entitlementFixture struct {
	districts *MockDistrictRepository
	rules     *MockRulesRepository
	geocoder  *MockGeocoder
	store     *artifacts.MemoryStore
	service   EntitlementService
}

func newEntitlementFixture(t *testing.T) *entitlementFixture {
	t.Helper()
	deriver, err := overlay.NewDefaultDeriver()
	require.NoError(t, err)

	log := logger.New("test")
	f := &entitlementFixture{
		districts: new(MockDistrictRepository),
		rules:     new(MockRulesRepository),
		geocoder:  new(MockGeocoder),
		store:     artifacts.NewMemoryStore(),
	}
	f.service = NewEntitlementService(
		NewZoneResolver(f.districts, log),
		f.rules,
		deriver,
		f.geocoder,
		f.store,
		log,
	)
	return f
}

func chicagoDistrict() *models.ZoningDistrict {
	return &models.ZoningDistrict{
		ID:         1,
		City:       models.CityChicago,
		ZoneCode:   "DX-12",
		ZoneName:   "Downtown Mixed-Use",
		SourceURL:  "https://data.cityofchicago.org/zoning",
		Properties: json.RawMessage(`[{"pd_num": 0}, {"landmark_district": "Michigan Boulevard"}]`),
	}
}

func coordinateRequest(useType string) SnapshotRequest {
	return SnapshotRequest{
		City:    models.CityChicago,
		Lat:     floatPtr(41.88),
		Lng:     floatPtr(-87.63),
		UseType: useType,
	}
}

func TestBuildSnapshot_Complete(t *testing.T) {
	f := newEntitlementFixture(t)
	height := 200.0
	rules := &models.ZoningRules{
		City:            models.CityChicago,
		ZoneCode:        "DX-12",
		SourceURL:       "https://codelibrary.amlegal.com/chicago/17-4",
		PermittedUses:   []string{"Office", "retail"},
		ConditionalUses: []string{"Multi Family"},
		ProhibitedUses:  []string{"heavy_industrial"},
		Overlays:        []string{" Lakefront ", "historic"},
		RedFlags:        []string{"Landmark review required for exterior changes"},
		ParkingRules:    json.RawMessage(`{"min_per_unit": 0.5}`),
		Dimensions:      models.Dimensions{MaxHeightFt: &height},
	}
	f.districts.On("FindByPoint", mock.Anything, models.CityChicago, 41.88, -87.63).Return(chicagoDistrict(), nil)
	f.rules.On("FindByZone", mock.Anything, models.CityChicago, "DX-12").Return(rules, nil)

	snap, err := f.service.BuildSnapshot(context.Background(), coordinateRequest("multi-family"))

	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityComplete, snap.Availability)
	assert.Equal(t, models.ProvenanceDatabase, snap.Provenance)
	assert.False(t, snap.IncompleteData)
	assert.Equal(t, models.UseStatusConditional, snap.SelectedUseStatus)
	assert.Equal(t, "multi_family", snap.UseType)
	assert.Equal(t, []string{"historic", "lakefront"}, snap.OverlayFlags)
	assert.Equal(t, []string{"Landmark review required for exterior changes"}, snap.RedFlags)
	assert.Equal(t, &height, snap.Dimensions.MaxHeightFt)
	assert.JSONEq(t, `{"min_per_unit": 0.5}`, string(snap.ParkingRules))
	assert.Equal(t, "https://codelibrary.amlegal.com/chicago/17-4", snap.DataFreshness.RulesSource)
	assert.Equal(t, "https://data.cityofchicago.org/zoning", snap.DataFreshness.DistrictSource)
	assert.False(t, snap.Location.Approximate)
	f.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassifyUse_PrecedenceIgnoresListOrder(t *testing.T) {
	tests := []struct {
		name  string
		rules models.ZoningRules
		want  models.UseStatus
	}{
		{
			name:  "prohibited beats conditional and permitted",
			rules: models.ZoningRules{PermittedUses: []string{"bar"}, ConditionalUses: []string{"bar"}, ProhibitedUses: []string{"bar"}},
			want:  models.UseStatusProhibited,
		},
		{
			name:  "prohibited beats permitted regardless of position",
			rules: models.ZoningRules{PermittedUses: []string{"x", "y", "bar"}, ProhibitedUses: []string{"BAR", "z"}},
			want:  models.UseStatusProhibited,
		},
		{
			name:  "conditional beats permitted",
			rules: models.ZoningRules{PermittedUses: []string{"bar", "cafe"}, ConditionalUses: []string{"cafe", "bar"}},
			want:  models.UseStatusConditional,
		},
		{
			name:  "permitted only",
			rules: models.ZoningRules{PermittedUses: []string{" Bar "}},
			want:  models.UseStatusPermitted,
		},
		{
			name:  "unclassified",
			rules: models.ZoningRules{PermittedUses: []string{"cafe"}, ProhibitedUses: []string{"barn"}},
			want:  models.UseStatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := tt.rules
			assert.Equal(t, tt.want, ClassifyUse("bar", &rules))

			// Reversing every list never changes the outcome.
			reversed := models.ZoningRules{
				PermittedUses:   reverse(rules.PermittedUses),
				ConditionalUses: reverse(rules.ConditionalUses),
				ProhibitedUses:  reverse(rules.ProhibitedUses),
			}
			assert.Equal(t, tt.want, ClassifyUse("bar", &reversed))
		})
	}

	assert.Equal(t, models.UseStatusUnknown, ClassifyUse("bar", nil))
}

func reverse(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func TestBuildSnapshot_OverlayUnionIsOrderIndependent(t *testing.T) {
	orders := [][]string{
		{"historic", "waterfront", "planned_development"},
		{"planned_development", "historic", "waterfront"},
		{"waterfront", "Historic", "historic"},
	}

	var results [][]string
	for _, overlays := range orders {
		f := newEntitlementFixture(t)
		district := chicagoDistrict()
		district.Properties = json.RawMessage(`[{"landmark_district": "x"}, {"pd_num": 3}]`)
		f.districts.On("FindByPoint", mock.Anything, models.CityChicago, 41.88, -87.63).Return(district, nil)
		f.rules.On("FindByZone", mock.Anything, models.CityChicago, "DX-12").Return(&models.ZoningRules{Overlays: overlays}, nil)

		snap, err := f.service.BuildSnapshot(context.Background(), coordinateRequest("office"))
		require.NoError(t, err)
		results = append(results, snap.OverlayFlags)
	}

	want := []string{"historic", "planned_development", "waterfront"}
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestBuildSnapshot_RulesMissing(t *testing.T) {
	f := newEntitlementFixture(t)
	f.districts.On("FindByPoint", mock.Anything, models.CityChicago, 41.88, -87.63).Return(chicagoDistrict(), nil)
	f.rules.On("FindByZone", mock.Anything, models.CityChicago, "DX-12").Return(nil, nil)

	snap, err := f.service.BuildSnapshot(context.Background(), coordinateRequest("office"))

	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityRulesMissing, snap.Availability)
	assert.True(t, snap.IncompleteData)
	assert.Nil(t, snap.Rules)
	assert.True(t, snap.Dimensions.IsEmpty())
	assert.Equal(t, models.UseStatusUnknown, snap.SelectedUseStatus)
	assert.Empty(t, snap.PermittedUses)
	assert.Empty(t, snap.ConditionalUses)
	assert.Empty(t, snap.ProhibitedUses)
	assert.Empty(t, snap.RedFlags)
	// Derived overlays still apply.
	assert.Equal(t, []string{"historic"}, snap.OverlayFlags)
	assert.Equal(t, "DX-12", snap.District.ZoneCode)
}

func TestBuildSnapshot_NoDistrictFound(t *testing.T) {
	f := newEntitlementFixture(t)
	f.districts.On("FindByPoint", mock.Anything, models.CityChicago, 41.88, -87.63).Return(nil, nil)

	snap, err := f.service.BuildSnapshot(context.Background(), coordinateRequest("office"))

	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrNoDistrictFound)
	f.rules.AssertNotCalled(t, "FindByZone", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildSnapshot_PlaceholderWithoutSpatialStore(t *testing.T) {
	deriver, err := overlay.NewDefaultDeriver()
	require.NoError(t, err)
	log := logger.New("test")
	service := NewEntitlementService(NewZoneResolver(nil, log), nil, deriver, geocode.DefaultLocationClient{}, artifacts.NewMemoryStore(), log)

	first, err := service.BuildSnapshot(context.Background(), coordinateRequest("office"))
	require.NoError(t, err)
	second, err := service.BuildSnapshot(context.Background(), coordinateRequest("office"))
	require.NoError(t, err)

	assert.Equal(t, models.ProvenancePlaceholder, first.Provenance)
	assert.Equal(t, models.AvailabilityPlaceholder, first.Availability)
	assert.True(t, first.IncompleteData)
	assert.Equal(t, PlaceholderZoneCode, first.District.ZoneCode)
	assert.Equal(t, models.UseStatusUnknown, first.SelectedUseStatus)
	assert.Equal(t, first, second)
}

func TestBuildSnapshot_RulesRepositoryError(t *testing.T) {
	f := newEntitlementFixture(t)
	dbErr := errors.New("timeout")
	f.districts.On("FindByPoint", mock.Anything, models.CityChicago, 41.88, -87.63).Return(chicagoDistrict(), nil)
	f.rules.On("FindByZone", mock.Anything, models.CityChicago, "DX-12").Return(nil, dbErr)

	_, err := f.service.BuildSnapshot(context.Background(), coordinateRequest("office"))

	assert.ErrorIs(t, err, dbErr)
}

func TestBuildSnapshot_AddressFirst(t *testing.T) {
	f := newEntitlementFixture(t)
	f.geocoder.On("Geocode", mock.Anything, models.CityChicago, "233 S Wacker Dr").Return(&geocode.Result{
		NormalizedAddress: "233 South Wacker Drive, Chicago",
		Lat:               41.8789,
		Lng:               -87.6359,
	}, nil)
	f.districts.On("FindByPoint", mock.Anything, models.CityChicago, 41.8789, -87.6359).Return(chicagoDistrict(), nil)
	f.rules.On("FindByZone", mock.Anything, models.CityChicago, "DX-12").Return(&models.ZoningRules{PermittedUses: []string{"office"}}, nil)

	snap, err := f.service.BuildSnapshot(context.Background(), SnapshotRequest{
		City:    models.CityChicago,
		Address: " 233 S Wacker Dr ",
		UseType: "office",
	})

	require.NoError(t, err)
	assert.Equal(t, "233 South Wacker Drive, Chicago", snap.Location.NormalizedAddress)
	assert.Equal(t, "233 S Wacker Dr", snap.Location.Address)
	assert.False(t, snap.Location.Approximate)
	assert.Equal(t, models.UseStatusPermitted, snap.SelectedUseStatus)
	f.geocoder.AssertExpectations(t)
}

func TestBuildSnapshot_GeocoderOutageDegradesToDefaultLocation(t *testing.T) {
	f := newEntitlementFixture(t)
	def := models.CityChicago.DefaultLocation()
	f.geocoder.On("Geocode", mock.Anything, models.CityChicago, "somewhere").Return(nil, geocode.ErrGeocodeFailed)
	f.districts.On("FindByPoint", mock.Anything, models.CityChicago, def.Lat, def.Lng).Return(chicagoDistrict(), nil)
	f.rules.On("FindByZone", mock.Anything, models.CityChicago, "DX-12").Return(nil, nil)

	snap, err := f.service.BuildSnapshot(context.Background(), SnapshotRequest{
		City:    models.CityChicago,
		Address: "somewhere",
		UseType: "office",
	})

	require.NoError(t, err)
	assert.True(t, snap.Location.Approximate)
	assert.Equal(t, def.Lat, snap.Location.Lat)
}

func TestBuildSnapshot_AddressNotFound(t *testing.T) {
	f := newEntitlementFixture(t)
	f.geocoder.On("Geocode", mock.Anything, models.CityChicago, "nowhere").Return(nil, geocode.ErrAddressNotFound)

	_, err := f.service.BuildSnapshot(context.Background(), SnapshotRequest{
		City:    models.CityChicago,
		Address: "nowhere",
		UseType: "office",
	})

	assert.ErrorIs(t, err, ErrGeocodeFailed)
	f.districts.AssertNotCalled(t, "FindByPoint", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildSnapshot_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		req     SnapshotRequest
		wantErr error
	}{
		{name: "unknown city", req: SnapshotRequest{City: "houston", Lat: floatPtr(1), Lng: floatPtr(1), UseType: "office"}, wantErr: ErrUnknownCity},
		{name: "missing use type", req: SnapshotRequest{City: models.CityChicago, Lat: floatPtr(1), Lng: floatPtr(1), UseType: "  "}, wantErr: ErrInvalidInput},
		{name: "no location", req: SnapshotRequest{City: models.CityChicago, UseType: "office"}, wantErr: ErrInvalidInput},
		{name: "only latitude", req: SnapshotRequest{City: models.CityChicago, Lat: floatPtr(41.88), UseType: "office"}, wantErr: ErrInvalidInput},
		{name: "bad coordinates", req: SnapshotRequest{City: models.CityChicago, Lat: floatPtr(100), Lng: floatPtr(1), UseType: "office"}, wantErr: ErrInvalidCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEntitlementFixture(t)
			_, err := f.service.BuildSnapshot(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateSnapshotArtifact(t *testing.T) {
	f := newEntitlementFixture(t)
	f.districts.On("FindByPoint", mock.Anything, models.CityChicago, 41.88, -87.63).Return(chicagoDistrict(), nil)
	f.rules.On("FindByZone", mock.Anything, models.CityChicago, "DX-12").Return(&models.ZoningRules{
		RedFlags: []string{"Landmark review required"},
	}, nil)

	email := "pm@example.com"
	artifact, err := f.service.CreateSnapshotArtifact(context.Background(), coordinateRequest("office"), &email)

	require.NoError(t, err)
	assert.Equal(t, models.ArtifactZoningSnapshot, artifact.Type)
	assert.Contains(t, artifact.WebSlug, "zoning-snapshot-chicago-dx-12-office-")
	require.NotNil(t, artifact.UserEmail)

	var snap models.EntitlementSnapshot
	require.NoError(t, artifact.DecodeOutput(models.ArtifactZoningSnapshot, &snap))
	assert.Equal(t, []string{"Landmark review required"}, snap.RedFlags)

	stored, err := f.store.GetBySlug(context.Background(), artifact.WebSlug)
	require.NoError(t, err)
	assert.Equal(t, artifact, stored)
}
