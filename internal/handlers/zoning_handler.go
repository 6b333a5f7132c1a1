package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/joseph-karim/site-sense-architect/internal/errors"
	"github.com/joseph-karim/site-sense-architect/internal/middleware"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/services"
)

// ZoningHandler handles zoning lookups.
type ZoningHandler struct {
	resolver services.ZoneResolver
}

// NewZoningHandler creates a new ZoningHandler instance.
func NewZoningHandler(resolver services.ZoneResolver) *ZoningHandler {
	return &ZoningHandler{resolver: resolver}
}

// AtPointRequest represents the query parameters for the at-point endpoint.
type AtPointRequest struct {
	City string  `form:"city" binding:"required"`
	Lat  float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng  float64 `form:"lng" binding:"required,min=-180,max=180"`
}

// DistrictResponse wraps the district containing a point.
type DistrictResponse struct {
	District *models.ZoningDistrict `json:"district"`
}

// AtPoint handles GET /api/v1/zoning/at-point.
// It returns the zoning district containing the given lat/lng in a city.
func (h *ZoningHandler) AtPoint(c *gin.Context) {
	var req AtPointRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}

	city, ok := parseCity(c, req.City)
	if !ok {
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Resolving zoning district", map[string]interface{}{
			"city": city,
			"lat":  req.Lat,
			"lng":  req.Lng,
		})
	}

	district, err := h.resolver.Resolve(c.Request.Context(), city, req.Lat, req.Lng)
	if err != nil {
		serviceError(c, err, "Failed to query zoning data")
		return
	}
	if district == nil {
		apierrors.NotFound(c, "No zoning district found at this location")
		return
	}

	c.JSON(http.StatusOK, DistrictResponse{District: district})
}
