package controllers

import (
	"errors"
	"log"

	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/services"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DisciplinesController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Context    *services.ContextService
	Reconciler *services.ReconcilerService
}

func NewDisciplinesController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *DisciplinesController {
	return &DisciplinesController{
		DB:         db,
		Cfg:        cfg,
		Context:    services.NewContextService(db),
		Reconciler: services.NewReconcilerService(db, logger),
	}
}

func (dc *DisciplinesController) GetDisciplines(c *fiber.Ctx) error {
	var disciplines []models.Discipline
	if err := dc.DB.Order("id").Find(&disciplines).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := []fiber.Map{}
	for _, d := range disciplines {
		result = append(result, fiber.Map{
			"id":           d.ID,
			"name":         d.Name,
			"category":     d.Category,
			"description":  d.Description,
			"module_count": d.ModuleCount,
		})
	}

	return c.JSON(result)
}

func (dc *DisciplinesController) GetDisciplineContext(c *fiber.Ctx) error {
	genCtx, err := dc.Context.Build(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Discipline not found")
		}
		return utils.InternalServerError(c, "Could not build context")
	}
	return c.JSON(genCtx)
}

// ReconcileAll recomputes every discipline's module count on demand. Safe
// to call redundantly; it is the designed remedy for counter drift.
func (dc *DisciplinesController) ReconcileAll(c *fiber.Ctx) error {
	if err := dc.Reconciler.ReconcileAll(); err != nil {
		return utils.InternalServerError(c, "Reconciliation failed")
	}
	return c.JSON(fiber.Map{
		"message": "Discipline counters reconciled",
	})
}
