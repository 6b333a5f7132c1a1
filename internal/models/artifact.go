package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ArtifactType tags the payload carried by an Artifact.
type ArtifactType string

const (
	ArtifactZoningSnapshot    ArtifactType = "zoning_snapshot"
	ArtifactPermitPathway     ArtifactType = "permit_pathway"
	ArtifactTripwireChecklist ArtifactType = "tripwire_checklist"
	ArtifactRiskRegister      ArtifactType = "risk_register"
)

// Valid reports whether t is a known artifact type.
func (t ArtifactType) Valid() bool {
	switch t {
	case ArtifactZoningSnapshot, ArtifactPermitPathway, ArtifactTripwireChecklist, ArtifactRiskRegister:
		return true
	}
	return false
}

// Artifact is an immutable snapshot of a computed result. InputParams and
// OutputData are JSON documents whose shape is determined by Type.
type Artifact struct {
	CreatedAt   time.Time       `json:"created_at"`
	UserEmail   *string         `json:"user_email,omitempty"`
	ID          string          `json:"id"`
	Type        ArtifactType    `json:"type"`
	City        City            `json:"city"`
	WebSlug     string          `json:"web_slug"`
	InputParams json.RawMessage `json:"input_params"`
	OutputData  json.RawMessage `json:"output_data"`
}

// Clone returns a deep copy so callers cannot mutate stored payloads.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	c.InputParams = bytes.Clone(a.InputParams)
	c.OutputData = bytes.Clone(a.OutputData)
	if a.UserEmail != nil {
		email := *a.UserEmail
		c.UserEmail = &email
	}
	return &c
}

// DecodeOutput unmarshals OutputData into v after checking the type tag.
func (a *Artifact) DecodeOutput(want ArtifactType, v interface{}) error {
	if a.Type != want {
		return fmt.Errorf("artifact %s is %s, not %s", a.ID, a.Type, want)
	}
	if err := json.Unmarshal(a.OutputData, v); err != nil {
		return fmt.Errorf("failed to decode %s output of artifact %s: %w", want, a.ID, err)
	}
	return nil
}
