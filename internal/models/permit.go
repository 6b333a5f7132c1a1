package models

import "time"

// UnknownProjectType is the sentinel project type for samples that were not
// attributed to a specific kind of project.
const UnknownProjectType = "unknown"

// PermitStatRow is the historical duration summary for one
// (city, project type, permit type) combination.
type PermitStatRow struct {
	LastCalculated *time.Time `json:"last_calculated,omitempty"`
	City           City       `json:"city"`
	ProjectType    string     `json:"project_type"`
	PermitType     string     `json:"permit_type"`
	CommonDelays   []string   `json:"common_delays"`
	P50Days        int        `json:"p50_days"`
	P90Days        int        `json:"p90_days"`
	SampleSize     int        `json:"sample_size"`
}

// Permit pathway data sources.
const (
	// PermitSourceProjectType means rows matched the requested project type
	// or the unattributed sentinel.
	PermitSourceProjectType = "project_type"
	// PermitSourceCityWide means no project-type rows existed and every row
	// for the city was used.
	PermitSourceCityWide = "city_wide"
	// PermitSourceIllustrative means no historical data exists and the
	// figures are static examples.
	PermitSourceIllustrative = "illustrative"
)

// PermitPathway is the output payload of a permit pathway artifact. P50Days
// and P90Days are the maximum across the gating permits, not an average.
type PermitPathway struct {
	LastCalculated *time.Time      `json:"last_calculated,omitempty"`
	City           City            `json:"city"`
	ProjectType    string          `json:"project_type"`
	DataSource     string          `json:"data_source"`
	Permits        []PermitStatRow `json:"permits"`
	CommonDelays   []string        `json:"common_delays"`
	P50Days        int             `json:"p50_days"`
	P90Days        int             `json:"p90_days"`
	TotalSamples   int             `json:"total_samples"`
	Fallback       bool            `json:"fallback"`
}
