package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ajharbinger/card-recommender/internal/database"
	"github.com/ajharbinger/card-recommender/internal/importer"
	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/middleware"
	"github.com/ajharbinger/card-recommender/internal/repository"
	"github.com/ajharbinger/card-recommender/internal/services"
	"github.com/ajharbinger/card-recommender/pkg/config"
)

func main() {
	once := flag.Bool("once", false, "Run a single refresh cycle and exit")
	flag.Parse()

	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.New()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Console: cfg.IsDevelopment()})
	if envErr != nil {
		log.Debug("No .env file found, using environment variables")
	}

	if !cfg.HasDatabase() {
		log.Fatal("Cannot start without database connection", errors.New("DATABASE_URL is not set"))
	}

	pipelineConfig := importer.DefaultPipelineConfig()
	pipelineConfig.Sources = importer.ParseSources(cfg.GetImportSources())
	pipelineConfig.Interval = cfg.ImportInterval
	pipelineConfig.MaxConcurrent = cfg.ImportMaxConcurrent
	if len(pipelineConfig.Sources) == 0 {
		log.Fatal("No import sources configured", errors.New(`set IMPORT_SOURCES to "url|issuer,..."`))
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	m := metrics.New()
	client := importer.NewClient(cfg.ImportRequestsPerSecond)
	defer client.Close()

	service := importer.NewService(repository.NewRepositories(db.DB), client, services.NewEngine(cfg).Bounds(), log, m)
	pipeline := importer.NewPipeline(service)

	log.Info("Import worker configuration",
		"sources", len(pipelineConfig.Sources),
		"interval", pipelineConfig.Interval.String(),
		"max_concurrent", pipelineConfig.MaxConcurrent,
	)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		stats := pipeline.RunOnce(ctx, pipelineConfig)
		fmt.Printf("Refresh completed: %s\n", stats.Summary())
		if stats.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	healthServer := newHealthServer(cfg.Port, db, service, pipeline, m)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health server failed", err)
		}
	}()

	if err := pipeline.Start(pipelineConfig); err != nil {
		log.Fatal("Failed to start pipeline", err)
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping pipeline")

	if err := pipeline.Stop(); err != nil {
		log.Error("Error stopping pipeline", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Health server shutdown failed", err)
	}
	log.Info("Import worker stopped")
}

// newHealthServer exposes liveness and pipeline status for the platform
func newHealthServer(port string, db *database.DB, service *importer.Service, pipeline *importer.Pipeline, m *metrics.Metrics) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		healthy := pipeline.IsRunning()
		response := gin.H{"healthy": healthy, "timestamp": time.Now()}
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			healthy = false
			response["healthy"] = false
			response["error"] = err.Error()
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		c.JSON(http.StatusOK, response)
	})

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"is_running":    pipeline.IsRunning(),
			"last_cycle":    pipeline.LastCycle(),
			"health_status": service.GetHealthStatus(),
			"database":      db.GetStats(),
			"timestamp":     time.Now(),
		})
	})

	r.GET("/metrics", gin.WrapH(m.Handler()))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
