package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/services"
)

// TripwireHandler serves the static tripwire catalog.
type TripwireHandler struct {
	service services.TripwireService
}

// NewTripwireHandler creates a new TripwireHandler instance.
func NewTripwireHandler(service services.TripwireService) *TripwireHandler {
	return &TripwireHandler{service: service}
}

// CatalogResponse lists every check a checklist reports on.
type CatalogResponse struct {
	Checks []models.TripwireCheck `json:"checks"`
	Count  int                    `json:"count"`
}

// Catalog handles GET /api/v1/tripwires/catalog.
func (h *TripwireHandler) Catalog(c *gin.Context) {
	checks := h.service.Catalog()
	c.JSON(http.StatusOK, CatalogResponse{Checks: checks, Count: len(checks)})
}
