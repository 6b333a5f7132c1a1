package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/joseph-karim/site-sense-architect/internal/errors"
)

var fieldNamesOnce sync.Once

// Routes bundles the handlers mounted by RegisterRoutes.
type Routes struct {
	Health    *HealthHandler
	Zoning    *ZoningHandler
	Tripwires *TripwireHandler
	Artifacts *ArtifactHandler
}

// RegisterRoutes mounts the health checks and the v1 API on r.
func RegisterRoutes(r gin.IRouter, h Routes) {
	fieldNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			apierrors.RegisterFieldNames(v)
		}
	})

	r.GET("/health", h.Health.Health)
	r.GET("/health/ready", h.Health.Ready)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/info", h.Health.Info)

		v1.GET("/zoning/at-point", h.Zoning.AtPoint)
		v1.GET("/tripwires/catalog", h.Tripwires.Catalog)

		artifacts := v1.Group("/artifacts")
		{
			artifacts.POST("/zoning-snapshot", h.Artifacts.CreateZoningSnapshot)
			artifacts.POST("/permit-pathway", h.Artifacts.CreatePermitPathway)
			artifacts.POST("/tripwire-checklist", h.Artifacts.CreateTripwireChecklist)
			artifacts.POST("/risk-register", h.Artifacts.CreateRiskRegister)
			artifacts.GET("/slug/:slug", h.Artifacts.GetBySlug)
			artifacts.GET("/:id", h.Artifacts.Get)
		}
	}
}
