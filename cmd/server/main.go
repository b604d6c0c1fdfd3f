package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/custodia-app/custodia/internal/config"
	"github.com/custodia-app/custodia/internal/database"
	"github.com/custodia-app/custodia/internal/handlers"
	"github.com/custodia-app/custodia/internal/middleware"
	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/storage"
	"github.com/custodia-app/custodia/internal/utils"

	_ "github.com/custodia-app/custodia/docs/api" // Swagger docs
)

// @title Custodia API
// @version 1.0.0
// @description Self-hosted data service for personal assets, deadlines and documents
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/custodia-app/custodia

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Open the blob store
	store, err := storage.NewBlobStore(cfg.BlobRoot, cfg.BlobPublicURL)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          utils.ErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("custodia")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded document files
	app.Static(cfg.BlobPublicURL, store.Root())

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	assetHandler := &handlers.AssetHandler{DB: db}
	deadlineHandler := &handlers.DeadlineHandler{DB: db}
	documentHandler := &handlers.DocumentHandler{DB: db, Store: store}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db, Store: store}

	// Health
	api.Get("/health", healthHandler.GetHealth)

	// Assets
	api.Post("/assets", assetHandler.CreateAsset)
	api.Get("/assets", assetHandler.ListAssets)
	api.Get("/assets/:id", assetHandler.GetAsset)
	api.Put("/assets/:id", assetHandler.UpdateAsset)
	api.Delete("/assets/:id", assetHandler.DeleteAsset)
	api.Get("/icons", assetHandler.ListIcons)

	// Deadlines
	api.Post("/deadlines", deadlineHandler.CreateDeadline)
	api.Get("/deadlines", deadlineHandler.ListDeadlines)
	api.Get("/deadlines/:id", deadlineHandler.GetDeadline)
	api.Put("/deadlines/:id", deadlineHandler.UpdateDeadline)
	api.Delete("/deadlines/:id", deadlineHandler.DeleteDeadline)
	api.Post("/deadlines/:id/toggle", deadlineHandler.ToggleDeadline)
	api.Get("/deadlines/:id/next", deadlineHandler.NextOccurrence)

	// Associations
	api.Get("/deadlines/:id/associations", deadlineHandler.GetAssociations)
	api.Post("/deadlines/:id/associations", deadlineHandler.Associate)
	api.Delete("/deadlines/:id/associations/assets/:assetId", deadlineHandler.DissociateAsset)
	api.Delete("/deadlines/:id/associations/documents/:documentId", deadlineHandler.DissociateDocument)

	// Documents
	api.Post("/documents", documentHandler.CreateDocument)
	api.Get("/documents", documentHandler.ListDocuments)
	api.Get("/documents/:id", documentHandler.GetDocument)
	api.Delete("/documents/:id", documentHandler.DeleteDocument)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Background sweeps
	sweeper := startSweeps(cfg, db)
	if sweeper != nil {
		defer func() { <-sweeper.Stop().Done() }()
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// startSweeps schedules the dangling-join reconciliation and, when enabled,
// the overdue-recurring advance. Returns nil when both are disabled.
func startSweeps(cfg *config.Config, db *gorm.DB) *cron.Cron {
	if cfg.ReconcileInterval <= 0 && !cfg.RecurAdvance {
		return nil
	}

	c := cron.New()

	if cfg.ReconcileInterval > 0 {
		spec := fmt.Sprintf("@every %ds", int(cfg.ReconcileInterval.Seconds()))
		_, err := c.AddFunc(spec, func() {
			removed, err := services.ReconcileDanglingJoins(db)
			if err != nil {
				log.Printf("Dangling-join sweep failed: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("Dangling-join sweep removed %d rows", removed)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule reconcile sweep: %v", err)
		}
	}

	if cfg.RecurAdvance {
		_, err := c.AddFunc("@hourly", func() {
			advanced, err := services.AdvanceOverdueRecurring(db, time.Now().UTC())
			if err != nil {
				log.Printf("Recurring-advance sweep failed: %v", err)
				return
			}
			if advanced > 0 {
				log.Printf("Recurring-advance sweep rolled %d deadlines forward", advanced)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule recurring-advance sweep: %v", err)
		}
	}

	c.Start()
	return c
}
