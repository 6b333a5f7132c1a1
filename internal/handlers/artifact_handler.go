package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/joseph-karim/site-sense-architect/internal/errors"
	"github.com/joseph-karim/site-sense-architect/internal/middleware"
	"github.com/joseph-karim/site-sense-architect/internal/services"
)

// ArtifactHandler creates and retrieves artifacts.
type ArtifactHandler struct {
	entitlements services.EntitlementService
	permits      services.PermitService
	tripwires    services.TripwireService
	risks        services.RiskService
	artifacts    services.ArtifactService
}

// NewArtifactHandler creates a new ArtifactHandler instance.
func NewArtifactHandler(
	entitlements services.EntitlementService,
	permits services.PermitService,
	tripwires services.TripwireService,
	risks services.RiskService,
	artifacts services.ArtifactService,
) *ArtifactHandler {
	return &ArtifactHandler{
		entitlements: entitlements,
		permits:      permits,
		tripwires:    tripwires,
		risks:        risks,
		artifacts:    artifacts,
	}
}

// ZoningSnapshotRequest is the body of POST /api/v1/artifacts/zoning-snapshot.
// Coordinates take precedence over the address when both are given.
type ZoningSnapshotRequest struct {
	Lat     *float64 `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lng     *float64 `json:"lng" binding:"omitempty,min=-180,max=180"`
	City    string   `json:"city" binding:"required"`
	Address string   `json:"address" binding:"max=500"`
	UseType string   `json:"use_type" binding:"required,max=100"`
}

// PermitPathwayRequest is the body of POST /api/v1/artifacts/permit-pathway.
type PermitPathwayRequest struct {
	City        string `json:"city" binding:"required"`
	ProjectType string `json:"project_type" binding:"max=100"`
}

// TripwireChecklistRequest is the body of POST /api/v1/artifacts/tripwire-checklist.
type TripwireChecklistRequest struct {
	Inputs        map[string]float64 `json:"inputs"`
	City          string             `json:"city" binding:"required"`
	OccupancyType string             `json:"occupancy_type" binding:"max=20"`
}

// RiskRegisterRequest is the body of POST /api/v1/artifacts/risk-register.
type RiskRegisterRequest struct {
	City              string   `json:"city" binding:"required"`
	SourceArtifactIDs []string `json:"source_artifact_ids" binding:"required,min=1,dive,required"`
}

// CreateZoningSnapshot handles POST /api/v1/artifacts/zoning-snapshot.
func (h *ArtifactHandler) CreateZoningSnapshot(c *gin.Context) {
	var req ZoningSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}
	city, ok := parseCity(c, req.City)
	if !ok {
		return
	}

	artifact, err := h.entitlements.CreateSnapshotArtifact(c.Request.Context(), services.SnapshotRequest{
		Lat:     req.Lat,
		Lng:     req.Lng,
		City:    city,
		Address: req.Address,
		UseType: req.UseType,
	}, middleware.GetUserEmail(c))
	if err != nil {
		serviceError(c, err, "Failed to create zoning snapshot")
		return
	}

	c.JSON(http.StatusCreated, artifact)
}

// CreatePermitPathway handles POST /api/v1/artifacts/permit-pathway.
func (h *ArtifactHandler) CreatePermitPathway(c *gin.Context) {
	var req PermitPathwayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}
	city, ok := parseCity(c, req.City)
	if !ok {
		return
	}

	artifact, err := h.permits.CreatePermitPathwayArtifact(c.Request.Context(), services.PermitRequest{
		City:        city,
		ProjectType: req.ProjectType,
	}, middleware.GetUserEmail(c))
	if err != nil {
		serviceError(c, err, "Failed to create permit pathway")
		return
	}

	c.JSON(http.StatusCreated, artifact)
}

// CreateTripwireChecklist handles POST /api/v1/artifacts/tripwire-checklist.
func (h *ArtifactHandler) CreateTripwireChecklist(c *gin.Context) {
	var req TripwireChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}
	city, ok := parseCity(c, req.City)
	if !ok {
		return
	}

	artifact, err := h.tripwires.CreateChecklistArtifact(c.Request.Context(), services.ChecklistRequest{
		Inputs:        req.Inputs,
		City:          city,
		OccupancyType: req.OccupancyType,
	}, middleware.GetUserEmail(c))
	if err != nil {
		serviceError(c, err, "Failed to create tripwire checklist")
		return
	}

	c.JSON(http.StatusCreated, artifact)
}

// CreateRiskRegister handles POST /api/v1/artifacts/risk-register.
func (h *ArtifactHandler) CreateRiskRegister(c *gin.Context) {
	var req RiskRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}
	city, ok := parseCity(c, req.City)
	if !ok {
		return
	}

	artifact, err := h.risks.CreateRiskRegisterArtifact(c.Request.Context(), services.RiskRequest{
		City:              city,
		SourceArtifactIDs: req.SourceArtifactIDs,
	}, middleware.GetUserEmail(c))
	if err != nil {
		serviceError(c, err, "Failed to create risk register")
		return
	}

	c.JSON(http.StatusCreated, artifact)
}

// Get handles GET /api/v1/artifacts/:id.
func (h *ArtifactHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		apierrors.BadRequest(c, "Artifact id is required", nil)
		return
	}

	artifact, err := h.artifacts.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err, "Failed to load artifact")
		return
	}

	c.JSON(http.StatusOK, artifact)
}

// GetBySlug handles GET /api/v1/artifacts/slug/:slug.
func (h *ArtifactHandler) GetBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		apierrors.BadRequest(c, "Artifact slug is required", nil)
		return
	}

	artifact, err := h.artifacts.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		serviceError(c, err, "Failed to load artifact")
		return
	}

	c.JSON(http.StatusOK, artifact)
}
