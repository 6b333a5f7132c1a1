// Package testhelpers provides shared fixtures for integration tests that
// need a real PostGIS database.
package testhelpers

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/joseph-karim/site-sense-architect/internal/config"
	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/models"
)

// PostGISImage is the database image used for integration tests.
const PostGISImage = "postgis/postgis:16-3.4"

// TestDB holds a shared PostGIS container with migrations applied.
type TestDB struct {
	Container testcontainers.Container
	DB        *database.Database
	Config    config.DatabaseConfig
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostGIS container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostGISImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "sitesense_test",
			"POSTGRES_USER":     "sitesense",
			"POSTGRES_PASSWORD": "test_password",
		},
		// The server restarts once after the init scripts install PostGIS.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		Name:     "sitesense_test",
		User:     "sitesense",
		Password: "test_password",
		PoolMin:  1,
		PoolMax:  5,
	}

	var db *database.Database
	for i := 0; i < 10; i++ {
		db, err = database.NewPostgresPool(ctx, cfg)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := database.RunMigrations(cfg, MigrationsPath(), logger.Nop()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		Config:    cfg,
	}, nil
}

// MigrationsPath returns the absolute path of the repository's migrations
// directory.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// Truncate empties the given tables. Integration tests share one database,
// so each test starts by clearing what it writes to.
func (tdb *TestDB) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		_, err := tdb.DB.Pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY", table))
		if err != nil {
			t.Fatalf("Failed to truncate %s: %v", table, err)
		}
	}
}

// InsertDistrict stores a district with the given boundary and returns its id.
func (tdb *TestDB) InsertDistrict(t *testing.T, d models.ZoningDistrict, boundary models.MultiPolygon) int64 {
	t.Helper()

	geom, err := boundary.Value()
	if err != nil {
		t.Fatalf("Failed to encode boundary: %v", err)
	}

	var id int64
	err = tdb.DB.Pool.QueryRow(context.Background(), `
		INSERT INTO zoning_districts (city, zone_code, zone_name, properties, source_url, last_updated, geom)
		VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_GeomFromGeoJSON($7::text), 4326))
		RETURNING id
	`, string(d.City), d.ZoneCode, d.ZoneName, nullableJSON(d.Properties), d.SourceURL, d.LastUpdated, geom).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert district %s: %v", d.ZoneCode, err)
	}
	return id
}

// InsertRules stores a zoning rule set.
func (tdb *TestDB) InsertRules(t *testing.T, r models.ZoningRules) {
	t.Helper()

	_, err := tdb.DB.Pool.Exec(context.Background(), `
		INSERT INTO zoning_rules (
			city, zone_code, max_height_ft, max_height_stories, far, lot_coverage_pct,
			front_setback_ft, side_setback_ft, rear_setback_ft,
			permitted_uses, conditional_uses, prohibited_uses, overlays, red_flags,
			parking_rules, source_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		string(r.City), r.ZoneCode,
		r.Dimensions.MaxHeightFt, r.Dimensions.MaxHeightStories, r.Dimensions.FAR, r.Dimensions.LotCoveragePct,
		r.Dimensions.FrontSetbackFt, r.Dimensions.SideSetbackFt, r.Dimensions.RearSetbackFt,
		nonNil(r.PermittedUses), nonNil(r.ConditionalUses), nonNil(r.ProhibitedUses),
		nonNil(r.Overlays), nonNil(r.RedFlags),
		nullableJSON(r.ParkingRules), r.SourceURL,
	)
	if err != nil {
		t.Fatalf("Failed to insert rules for %s: %v", r.ZoneCode, err)
	}
}

// InsertPermitStat stores one permit duration row.
func (tdb *TestDB) InsertPermitStat(t *testing.T, row models.PermitStatRow) {
	t.Helper()

	_, err := tdb.DB.Pool.Exec(context.Background(), `
		INSERT INTO permit_stats (city, project_type, permit_type, p50_days, p90_days, sample_size, common_delays, last_calculated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, string(row.City), row.ProjectType, row.PermitType, row.P50Days, row.P90Days, row.SampleSize,
		nonNil(row.CommonDelays), row.LastCalculated)
	if err != nil {
		t.Fatalf("Failed to insert permit stat %s/%s: %v", row.ProjectType, row.PermitType, err)
	}
}

// InsertTripwireRow stores one tripwire row. Empty City or OccupancyType are
// stored as NULL.
func (tdb *TestDB) InsertTripwireRow(t *testing.T, row models.TripwireRow, checkLogic string) {
	t.Helper()

	_, err := tdb.DB.Pool.Exec(context.Background(), `
		INSERT INTO tripwire_rules (city, occupancy_type, check_name, code_reference, requirement, common_issue, check_logic)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, $4, $5, $6, $7::jsonb)
	`, string(row.City), row.OccupancyType, row.CheckName, row.CodeReference, row.Requirement, row.CommonIssue, checkLogic)
	if err != nil {
		t.Fatalf("Failed to insert tripwire row %s: %v", row.CheckName, err)
	}
}

// Square returns a single-polygon boundary centred on (lat, lng).
func Square(lat, lng, half float64) models.MultiPolygon {
	return models.MultiPolygon{
		SRID: 4326,
		Coordinates: [][][][2]float64{{{
			{lng - half, lat - half},
			{lng + half, lat - half},
			{lng + half, lat + half},
			{lng - half, lat + half},
			{lng - half, lat - half},
		}}},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
