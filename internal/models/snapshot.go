package models

import (
	"encoding/json"
	"time"
)

// UseStatus is the classification of a requested use within a zone.
type UseStatus string

const (
	UseStatusPermitted   UseStatus = "permitted"
	UseStatusConditional UseStatus = "conditional"
	UseStatusProhibited  UseStatus = "prohibited"
	UseStatusUnknown     UseStatus = "unknown"
)

// Availability describes how complete the data behind a snapshot is.
type Availability string

const (
	// AvailabilityComplete means both the district and its rules were found.
	AvailabilityComplete Availability = "complete"
	// AvailabilityRulesMissing means the district is known but no rule set
	// exists for its zone code.
	AvailabilityRulesMissing Availability = "rules_missing"
	// AvailabilityPlaceholder means no spatial store is configured and the
	// snapshot is illustrative only.
	AvailabilityPlaceholder Availability = "placeholder"
)

// Provenance values for EntitlementSnapshot.
const (
	ProvenanceDatabase    = "database"
	ProvenancePlaceholder = "placeholder"
)

// Location is the point a snapshot was resolved for.
type Location struct {
	Address           string  `json:"address,omitempty"`
	NormalizedAddress string  `json:"normalized_address,omitempty"`
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	// Approximate is set when the point is a fallback rather than a
	// geocoded match for the address.
	Approximate bool `json:"approximate"`
}

// DataFreshness records where the merged data came from and how old it is.
type DataFreshness struct {
	DistrictLastUpdated *time.Time `json:"district_last_updated,omitempty"`
	DistrictSource      string     `json:"district_source,omitempty"`
	RulesSource         string     `json:"rules_source,omitempty"`
}

// EntitlementSnapshot is the normalized zoning picture for one location and
// requested use. It is built once per request and never mutated afterwards.
type EntitlementSnapshot struct {
	Rules             *ZoningRules    `json:"rules"`
	ParkingRules      json.RawMessage `json:"parking_rules,omitempty"`
	City              City            `json:"city"`
	UseType           string          `json:"use_type"`
	SelectedUseStatus UseStatus       `json:"selected_use_status"`
	Availability      Availability    `json:"availability"`
	Provenance        string          `json:"provenance"`
	PermittedUses     []string        `json:"permitted_uses"`
	ConditionalUses   []string        `json:"conditional_uses"`
	ProhibitedUses    []string        `json:"prohibited_uses"`
	OverlayFlags      []string        `json:"overlay_flags"`
	RedFlags          []string        `json:"red_flags"`
	District          ZoningDistrict  `json:"district"`
	Location          Location        `json:"location"`
	DataFreshness     DataFreshness   `json:"data_freshness"`
	Dimensions        Dimensions      `json:"dimensions"`
	IncompleteData    bool            `json:"incomplete_data"`
}
