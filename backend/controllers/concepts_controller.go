package controllers

import (
	"errors"
	"strconv"

	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/services"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ConceptsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Concepts *services.ConceptService
}

func NewConceptsController(db *gorm.DB, cfg *config.Config) *ConceptsController {
	return &ConceptsController{DB: db, Cfg: cfg, Concepts: services.NewConceptService(db)}
}

func (cc *ConceptsController) GetDisciplineConcepts(c *fiber.Ctx) error {
	concepts := []models.Concept{}
	if err := cc.DB.Where("discipline_id = ?", c.Params("id")).Order("name").Find(&concepts).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(concepts)
}

func (cc *ConceptsController) CreateConcept(c *fiber.Ctx) error {
	var input struct {
		Name         string `json:"name"`
		DisciplineID string `json:"discipline"`
		ParentID     *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" || input.DisciplineID == "" {
		return utils.BadRequest(c, "Name and discipline are required")
	}

	concept, err := cc.Concepts.Create(input.Name, input.DisciplineID, input.ParentID)
	if err != nil {
		return cc.serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Concept created",
		"concept": concept,
	})
}

func (cc *ConceptsController) AddPrerequisite(c *fiber.Ctx) error {
	conceptID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid concept ID")
	}

	var input struct {
		PrerequisiteID uint `json:"prerequisite_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := cc.Concepts.AddPrerequisite(uint(conceptID), input.PrerequisiteID); err != nil {
		return cc.serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Prerequisite added",
	})
}

func (cc *ConceptsController) serviceError(c *fiber.Ctx, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return utils.ValidationFailed(c, string(validation.Reason), validation)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(c, "Concept not found")
	}
	return utils.InternalServerError(c, err.Error())
}
