package models

// RiskStatus values.
const (
	RiskStatusOpen = "open"
)

// RiskItem is one entry of a risk register. RiskID is assigned when the
// register is assembled and is only meaningful within that register.
type RiskItem struct {
	RiskID      string `json:"risk_id"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Consequence string `json:"consequence"`
}

// RiskRegister is the output payload of a risk register artifact.
type RiskRegister struct {
	City              City       `json:"city"`
	SourceArtifactIDs []string   `json:"source_artifact_ids"`
	Risks             []RiskItem `json:"risks"`
	// SourcesResolved counts the source ids that were found.
	SourcesResolved int `json:"sources_resolved"`
}
