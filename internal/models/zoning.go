package models

import (
	"encoding/json"
	"time"
)

// ZoningDistrict is a regulatory zone resolved from the spatial store.
// Properties is the opaque attribute bag of the source layer: a single JSON
// object, or an array of the distinct objects contributed by every polygon
// that shares the zone code.
type ZoningDistrict struct {
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
	Geometry    *MultiPolygon   `json:"geometry,omitempty"`
	City        City            `json:"city"`
	ZoneCode    string          `json:"zone_code"`
	ZoneName    string          `json:"zone_name"`
	SourceURL   string          `json:"source_url,omitempty"`
	Properties  json.RawMessage `json:"properties,omitempty"`
	ID          int64           `json:"id,omitempty"`
}

// Dimensions holds the numeric development limits of a zone. A nil field
// means the limit is not known, not that it is zero.
type Dimensions struct {
	MaxHeightFt      *float64 `json:"max_height_ft"`
	MaxHeightStories *int     `json:"max_height_stories"`
	FAR              *float64 `json:"far"`
	LotCoveragePct   *float64 `json:"lot_coverage_pct"`
	FrontSetbackFt   *float64 `json:"front_setback_ft"`
	SideSetbackFt    *float64 `json:"side_setback_ft"`
	RearSetbackFt    *float64 `json:"rear_setback_ft"`
}

// IsEmpty reports whether every limit is unknown.
func (d Dimensions) IsEmpty() bool {
	return d.MaxHeightFt == nil && d.MaxHeightStories == nil && d.FAR == nil &&
		d.LotCoveragePct == nil && d.FrontSetbackFt == nil &&
		d.SideSetbackFt == nil && d.RearSetbackFt == nil
}

// ZoningRules is the dimensional and use rule set for one zone code.
// A tag appearing in none of the three use lists is unclassified.
type ZoningRules struct {
	City            City            `json:"city"`
	ZoneCode        string          `json:"zone_code"`
	SourceURL       string          `json:"source_url,omitempty"`
	ParkingRules    json.RawMessage `json:"parking_rules,omitempty"`
	PermittedUses   []string        `json:"permitted_uses"`
	ConditionalUses []string        `json:"conditional_uses"`
	ProhibitedUses  []string        `json:"prohibited_uses"`
	Overlays        []string        `json:"overlays"`
	RedFlags        []string        `json:"red_flags"`
	Dimensions      Dimensions      `json:"dimensions"`
}
