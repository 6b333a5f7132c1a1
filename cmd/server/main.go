package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/joseph-karim/site-sense-architect/internal/artifacts"
	"github.com/joseph-karim/site-sense-architect/internal/config"
	"github.com/joseph-karim/site-sense-architect/internal/database"
	"github.com/joseph-karim/site-sense-architect/internal/geocode"
	"github.com/joseph-karim/site-sense-architect/internal/handlers"
	"github.com/joseph-karim/site-sense-architect/internal/logger"
	"github.com/joseph-karim/site-sense-architect/internal/middleware"
	"github.com/joseph-karim/site-sense-architect/internal/overlay"
	"github.com/joseph-karim/site-sense-architect/internal/repository"
	"github.com/joseph-karim/site-sense-architect/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting Site Sense API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()

	// The database is optional; without it every store degrades to
	// placeholder data and artifacts live in process memory.
	var db *database.Database
	if cfg.Database.Enabled() {
		db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})

		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(cfg.Database, cfg.Database.MigrationsPath, log); err != nil {
				log.Fatal("Failed to run migrations", err, map[string]interface{}{
					"path": cfg.Database.MigrationsPath,
				})
			}
		}
	} else {
		log.Warn("DB_HOST not set, running in degraded mode", nil)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", err, nil)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	deriver, err := overlay.NewDefaultDeriver()
	if err != nil {
		log.Fatal("Failed to load overlay rules", err, nil)
	}

	store := newArtifactStore(db, redisClient, cfg.Redis, log)
	svc := newServices(db, store, deriver, geocode.NewClient(cfg.Geocoder, log), cfg, log)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.UserEmail())

	var dbPinger handlers.Pinger
	if db != nil {
		dbPinger = db
	}
	handlers.RegisterRoutes(router, handlers.Routes{
		Health:    handlers.NewHealthHandler(dbPinger, handlers.RedisPinger(redisClient), cfg.Server.Env),
		Zoning:    handlers.NewZoningHandler(svc.resolver),
		Tripwires: handlers.NewTripwireHandler(svc.tripwires),
		Artifacts: handlers.NewArtifactHandler(svc.entitlements, svc.permits, svc.tripwires, svc.risks, svc.artifacts),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}

func newArtifactStore(db *database.Database, client *redis.Client, cfg config.RedisConfig, log *logger.Logger) artifacts.Store {
	store := artifacts.NewStore(db, log)
	if client == nil {
		return store
	}
	log.Info("Artifact cache enabled", map[string]interface{}{
		"ttl": cfg.TTL.String(),
	})
	return artifacts.NewCachedStore(store, client, cfg.TTL, log)
}

type serviceSet struct {
	resolver     services.ZoneResolver
	entitlements services.EntitlementService
	permits      services.PermitService
	tripwires    services.TripwireService
	risks        services.RiskService
	artifacts    services.ArtifactService
}

// newServices wires the service layer. Repositories stay nil interfaces when
// no database is configured so each service takes its degraded path.
func newServices(
	db *database.Database,
	store artifacts.Store,
	deriver *overlay.Deriver,
	geocoder geocode.Client,
	cfg *config.Config,
	log *logger.Logger,
) serviceSet {
	var (
		districts repository.DistrictRepository
		rules     repository.RulesRepository
		permits   repository.PermitStatsRepository
		tripwires repository.TripwireRepository
	)
	if db != nil {
		districts = repository.NewDistrictRepository(db)
		rules = repository.NewRulesRepository(db)
		permits = repository.NewPermitStatsRepository(db)
		tripwires = repository.NewTripwireRepository(db)
	}

	resolver := services.NewZoneResolver(districts, log)
	return serviceSet{
		resolver:     resolver,
		entitlements: services.NewEntitlementService(resolver, rules, deriver, geocoder, store, log),
		permits:      services.NewPermitService(permits, store, log),
		tripwires:    services.NewTripwireService(tripwires, store, log),
		risks:        services.NewRiskService(store, cfg.Artifacts.MaxRiskSources, log),
		artifacts:    services.NewArtifactService(store, log),
	}
}
