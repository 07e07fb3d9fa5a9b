package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ajharbinger/card-recommender/internal/api"
	"github.com/ajharbinger/card-recommender/internal/database"
	"github.com/ajharbinger/card-recommender/internal/importer"
	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/middleware"
	"github.com/ajharbinger/card-recommender/internal/repository"
	"github.com/ajharbinger/card-recommender/internal/services"
	"github.com/ajharbinger/card-recommender/pkg/config"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Initialize configuration
	cfg := config.New()

	log := logger.New(logger.Options{Level: cfg.LogLevel, Console: cfg.IsDevelopment()})
	if envErr != nil {
		log.Debug("No .env file found")
	}

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog source: Postgres when configured, otherwise the YAML file
	var (
		repos         *repository.Repositories
		catalogHealth func(ctx context.Context) error
	)
	if cfg.HasDatabase() {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database", err)
		}
		defer db.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal("Failed to run migrations", err)
		}

		repos = repository.NewRepositories(db.DB)
		catalogHealth = db.HealthCheck
		log.Info("Using Postgres card catalog")
	} else {
		if cfg.CatalogFile == "" {
			log.Fatal("No catalog source configured", errors.New("set DATABASE_URL or CATALOG_FILE"))
		}
		fileRepos, err := repository.NewFileRepositories(cfg.CatalogFile)
		if err != nil {
			log.Fatal("Failed to load catalog file", err, "path", cfg.CatalogFile)
		}
		repos = fileRepos
		log.Info("Using file card catalog", "path", cfg.CatalogFile)
	}

	if cfg.HasRedis() {
		cache, err := repository.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			// The catalog still works uncached
			log.Error("Redis unavailable, catalog cache disabled", err, "addr", cfg.RedisAddr)
		} else {
			defer cache.Close()
			repos = repository.WithCache(repos, cache, cfg.CatalogCacheTTL)
			log.Info("Catalog cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CatalogCacheTTL.String())
		}
	}

	svc := services.NewServices(repos, cfg, log, m)

	if cfg.HasDatabase() && cfg.CatalogFile != "" {
		seedCatalog(ctx, svc.Catalog, cfg.CatalogFile, log)
	}

	deps := api.Dependencies{
		Config:        cfg,
		Services:      svc,
		Metrics:       m,
		CatalogHealth: catalogHealth,
	}
	if cfg.EnableCatalogAdmin {
		client := importer.NewClient(cfg.ImportRequestsPerSecond)
		defer client.Close()
		deps.Importer = importer.NewService(repos, client, services.NewEngine(cfg).Bounds(), log, m)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.GetTrustedProxies()); err != nil {
		log.Fatal("Invalid trusted proxies", err)
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(log, m))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware(cfg.MaxRequestSize))

	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitingMiddleware(cfg.RateLimitPerMinute))
	}

	r.Use(gin.Recovery())

	if err := api.SetupRoutes(r, deps); err != nil {
		log.Fatal("Failed to setup API routes", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Environment, "catalog_admin", cfg.EnableCatalogAdmin)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

// seedCatalog upserts the cards from the catalog file into the database
func seedCatalog(ctx context.Context, catalog services.CatalogService, path string, log logger.Logger) {
	cards, err := repository.LoadCatalogFile(path)
	if err != nil {
		log.Fatal("Failed to load catalog seed file", err, "path", path)
	}

	n, err := catalog.Seed(ctx, cards)
	if err != nil {
		log.Fatal("Failed to seed catalog", err, "path", path)
	}
	log.Info("Catalog seeded from file", "path", path, "cards", n)
}
