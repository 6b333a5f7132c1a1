package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/joseph-karim/site-sense-architect/internal/errors"
	"github.com/joseph-karim/site-sense-architect/internal/models"
	"github.com/joseph-karim/site-sense-architect/internal/services"
)

// bindError writes the response for a request that failed gin binding.
func bindError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	apierrors.BadRequest(c, message, nil)
}

// parseCity converts the raw city parameter, writing a 400 when it is not
// one of the supported cities.
func parseCity(c *gin.Context, raw string) (models.City, bool) {
	city, err := models.ParseCity(raw)
	if err != nil {
		apierrors.BadRequest(c, err.Error(), map[string]interface{}{
			"supported_cities": models.SupportedCities,
		})
		return "", false
	}
	return city, true
}

// serviceError maps a service-layer error onto the API error envelope.
// failure is the message used for unexpected errors.
func serviceError(c *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, services.ErrInvalidCoordinates),
		errors.Is(err, services.ErrUnknownCity),
		errors.Is(err, services.ErrInvalidInput):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrNoDistrictFound):
		apierrors.NotFound(c, "No zoning district found at this location")
	case errors.Is(err, services.ErrArtifactNotFound):
		apierrors.NotFound(c, "Artifact not found")
	case errors.Is(err, services.ErrGeocodeFailed):
		apierrors.UnprocessableEntity(c, err.Error())
	case errors.Is(err, services.ErrSpatialStoreUnavailable):
		apierrors.ServiceUnavailable(c, "Zoning data is not configured")
	default:
		apierrors.InternalServerError(c, failure, err)
	}
}
