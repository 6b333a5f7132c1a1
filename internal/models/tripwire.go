package models

import (
	"github.com/joseph-karim/site-sense-architect/internal/threshold"
)

// TripwireCheck is a catalog entry describing one code-compliance check.
// The catalog is static; a check's status is computed per request.
type TripwireCheck struct {
	CheckName     string `json:"check_name"`
	Label         string `json:"label"`
	Unit          string `json:"unit"`
	Rationale     string `json:"rationale"`
	CodeReference string `json:"code_reference"`
}

// TripwireCatalog is the ordered list of checks every checklist reports on.
var TripwireCatalog = []TripwireCheck{
	{
		CheckName:     "corridor_width",
		Label:         "Corridor width",
		Unit:          "in",
		Rationale:     "Egress corridors below the minimum clear width are a frequent first-round plan review comment.",
		CodeReference: "IBC 1020.3",
	},
	{
		CheckName:     "door_clear_width",
		Label:         "Door clear width",
		Unit:          "in",
		Rationale:     "Accessible routes require a minimum clear opening at every door along the path.",
		CodeReference: "IBC 1010.1.1",
	},
	{
		CheckName:     "stair_width",
		Label:         "Stair width",
		Unit:          "in",
		Rationale:     "Stair width is driven by occupant load and is expensive to change late in design.",
		CodeReference: "IBC 1011.2",
	},
	{
		CheckName:     "exit_access_travel_distance",
		Label:         "Exit access travel distance",
		Unit:          "ft",
		Rationale:     "Travel distance limits depend on occupancy and sprinkler status and often force an added exit.",
		CodeReference: "IBC 1017.2",
	},
	{
		CheckName:     "common_path_of_egress",
		Label:         "Common path of egress travel",
		Unit:          "ft",
		Rationale:     "Long common paths before two exits are available trigger redesign of suite layouts.",
		CodeReference: "IBC 1006.2.1",
	},
	{
		CheckName:     "dead_end_corridor",
		Label:         "Dead-end corridor length",
		Unit:          "ft",
		Rationale:     "Dead ends beyond the allowed length are a common life-safety comment.",
		CodeReference: "IBC 1020.5",
	},
	{
		CheckName:     "ceiling_height",
		Label:         "Minimum ceiling height",
		Unit:          "ft",
		Rationale:     "Occupiable rooms below minimum ceiling height cannot be counted as habitable space.",
		CodeReference: "IBC 1208.2",
	},
	{
		CheckName:     "accessible_parking_spaces",
		Label:         "Accessible parking spaces",
		Unit:          "spaces",
		Rationale:     "Accessible stall counts scale with total parking and are checked on every site plan.",
		CodeReference: "IBC 1106.1",
	},
}

// LookupTripwireCheck returns the catalog entry for name.
func LookupTripwireCheck(name string) (TripwireCheck, bool) {
	for _, c := range TripwireCatalog {
		if c.CheckName == name {
			return c, true
		}
	}
	return TripwireCheck{}, false
}

// TripwireRow is the jurisdiction-specific data for one check. City and
// OccupancyType are empty for city-agnostic rows.
type TripwireRow struct {
	City          City                 `json:"city,omitempty"`
	OccupancyType string               `json:"occupancy_type,omitempty"`
	CheckName     string               `json:"check_name"`
	CodeReference string               `json:"code_reference"`
	Requirement   string               `json:"requirement"`
	CommonIssue   string               `json:"common_issue"`
	CheckLogic    threshold.Thresholds `json:"check_logic"`
}

// TripwireResult is one evaluated check in a checklist.
type TripwireResult struct {
	Input         *float64             `json:"input"`
	CheckName     string               `json:"check_name"`
	Label         string               `json:"label"`
	Unit          string               `json:"unit"`
	Rationale     string               `json:"rationale"`
	CodeReference string               `json:"code_reference"`
	Requirement   string               `json:"requirement,omitempty"`
	CommonIssue   string               `json:"common_issue,omitempty"`
	Status        threshold.Status     `json:"status"`
	Thresholds    threshold.Thresholds `json:"thresholds"`
}

// TripwireSummary counts checks by status.
type TripwireSummary struct {
	Pass        int `json:"pass"`
	LikelyIssue int `json:"likely_issue"`
	Unknown     int `json:"unknown"`
	NotChecked  int `json:"not_checked"`
}

// TripwireChecklist is the output payload of a tripwire checklist artifact.
type TripwireChecklist struct {
	City          City             `json:"city"`
	OccupancyType string           `json:"occupancy_type"`
	Checks        []TripwireResult `json:"checks"`
	Summary       TripwireSummary  `json:"summary"`
	// CatalogOnly is set when no jurisdiction rows were available and every
	// check falls back to catalog defaults.
	CatalogOnly bool `json:"catalog_only"`
}
