package routes

import (
	"log"

	"lectoria/backend/clients"
	"lectoria/backend/config"
	"lectoria/backend/controllers"
	"lectoria/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Modules
	generator := clients.NewGeneratorClient(cfg)
	modulesController := controllers.NewModulesController(db, cfg, logger, generator)
	modules := app.Group("/api/modules", authMiddleware)
	modules.Get("/", modulesController.GetModules)
	modules.Post("/generate", modulesController.GenerateModule)
	modules.Post("/publish", modulesController.PublishModule)
	modules.Post("/drafts", modulesController.SaveDraft)
	modules.Get("/:slug", modulesController.GetModule)

	// Disciplines
	disciplinesController := controllers.NewDisciplinesController(db, cfg, logger)
	disciplines := app.Group("/api/disciplines", authMiddleware)
	disciplines.Get("/", disciplinesController.GetDisciplines)
	disciplines.Get("/:id/context", disciplinesController.GetDisciplineContext)

	// Concepts
	conceptsController := controllers.NewConceptsController(db, cfg)
	disciplines.Get("/:id/concepts", conceptsController.GetDisciplineConcepts)

	// User profile and contributions
	userController := controllers.NewUserController(db, cfg)
	contributionsController := controllers.NewContributionsController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/contributions", authMiddleware, contributionsController.GetMyContributions)
	app.Get("/api/user/modules", authMiddleware, contributionsController.GetMyModules)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Delete("/modules/:slug", modulesController.DeleteModule)
	admin.Post("/disciplines/reconcile", disciplinesController.ReconcileAll)
	admin.Post("/concepts", conceptsController.CreateConcept)
	admin.Post("/concepts/:id/prerequisites", conceptsController.AddPrerequisite)
}
