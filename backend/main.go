package main

import (
	"log"

	"lectoria/backend/config"
	"lectoria/backend/middleware"
	"lectoria/backend/routes"
	"lectoria/backend/services"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // lecture photos arrive base64-encoded
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Uploaded lecture photos
	app.Static("/uploads", cfg.UploadsDir)

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger)

	// Periodic discipline counter reconciliation
	reconciler := services.NewReconcilerService(db, logger)
	if _, err := utils.StartReconcileScheduler(cfg, reconciler, logger); err != nil {
		log.Fatalf("Error starting reconcile scheduler: %v", err)
	}

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
