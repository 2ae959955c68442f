package controllers

import (
	"errors"
	"log"

	"lectoria/backend/clients"
	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/services"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModulesController struct {
	DB            *gorm.DB
	Cfg           *config.Config
	Logger        *log.Logger
	Context       *services.ContextService
	Consolidation *services.ConsolidationService
	Merge         *services.MergeService
	Attribution   *services.AttributionService
	Reconciler    *services.ReconcilerService
	Generator     *clients.GeneratorClient
}

func NewModulesController(db *gorm.DB, cfg *config.Config, logger *log.Logger, generator *clients.GeneratorClient) *ModulesController {
	merge := services.NewMergeService(db, logger)
	return &ModulesController{
		DB:            db,
		Cfg:           cfg,
		Logger:        logger,
		Context:       services.NewContextService(db),
		Consolidation: services.NewConsolidationService(db),
		Merge:         merge,
		Attribution:   services.NewAttributionService(db, merge, logger),
		Reconciler:    services.NewReconcilerService(db, logger),
		Generator:     generator,
	}
}

// GenerateModule builds the discipline context and asks the external
// generator for a draft. The draft is returned untouched; nothing is
// persisted until publish.
func (mc *ModulesController) GenerateModule(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, mc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		DisciplineID string   `json:"disciplineId"`
		PhotoURLs    []string `json:"photoUrls"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	genCtx, err := mc.Context.Build(input.DisciplineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Discipline not found")
		}
		return utils.InternalServerError(c, "Could not build generation context")
	}

	draft, err := mc.Generator.GenerateModule(c.Context(), genCtx, input.PhotoURLs)
	if err != nil {
		mc.Logger.Printf("generator call failed: %v", err)
		return utils.Error(c, fiber.StatusBadGateway, err)
	}

	return c.JSON(fiber.Map{
		"draft":   draft,
		"context": fiber.Map{"allowedSlugs": genCtx.AllowedSlugs},
	})
}

// PublishModule validates the draft's consolidation decision, then runs the
// merge and photo attribution, then reconciles the discipline counter.
func (mc *ModulesController) PublishModule(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Draft  models.ModuleDraft      `json:"draft"`
		Photos []services.PhotoPayload `json:"photos"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	decision, err := mc.Consolidation.Validate(&input.Draft)
	if err != nil {
		return mc.serviceError(c, err)
	}

	saver := func(p services.PhotoPayload) (string, error) {
		return utils.SavePhotoPayload(mc.Cfg.UploadsDir, p.Filename, p.MimeType, p.Base64, p.URL)
	}

	result, err := mc.Attribution.PublishWithPhotos(c.Context(), &input.Draft, decision, input.Photos, userID, saver)
	if err != nil {
		return mc.serviceError(c, err)
	}

	if result.Module.DisciplineID != nil {
		if _, err := mc.Reconciler.ReconcileDiscipline(*result.Module.DisciplineID); err != nil {
			mc.Logger.Printf("reconcile after publish: %v", err)
		}
	}

	response := fiber.Map{
		"message": "Module published",
		"module":  result.Module,
	}
	if result.PhotoGroup != nil {
		response["photo_group"] = result.PhotoGroup
		response["photos"] = result.Photos
	}
	if result.Degraded != nil {
		response["message"] = "Module published with incomplete attribution"
		response["degraded"] = fiber.Map{
			"step":  result.Degraded.Step,
			"error": result.Degraded.Err.Error(),
		}
	}
	return c.JSON(response)
}

// SaveDraft stores a draft without publishing. Drafts never appear as
// consolidation targets or in public listings.
func (mc *ModulesController) SaveDraft(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var draft models.ModuleDraft
	if err := c.BodyParser(&draft); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	module, err := mc.Merge.SaveDraft(&draft, userID)
	if err != nil {
		return mc.serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Draft saved",
		"module":  module,
	})
}

func (mc *ModulesController) GetModules(c *fiber.Ctx) error {
	query := mc.DB.Model(&models.Module{}).Where("draft = ?", false)

	if discipline := c.Query("discipline"); discipline != "" {
		query = query.Where("discipline_id = ?", discipline)
	}

	var modules []models.Module
	if err := query.Order("slug").Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := []fiber.Map{}
	for _, m := range modules {
		result = append(result, fiber.Map{
			"slug":        m.Slug,
			"title":       m.Title,
			"description": m.Description,
			"discipline":  m.DisciplineID,
			"concepts":    m.Concepts,
			"tags":        m.Tags,
			"lessons":     len(m.Lessons),
			"exercises":   len(m.Exercises),
		})
	}

	return c.JSON(result)
}

func (mc *ModulesController) GetModule(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var module models.Module
	if err := mc.DB.Where("slug = ?", slug).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var groups []models.PhotoGroup
	if len(module.PhotoGroupIDs) > 0 {
		mc.DB.Where("id IN ?", []uuid.UUID(module.PhotoGroupIDs)).Find(&groups)
	}

	return c.JSON(fiber.Map{
		"module":       module,
		"photo_groups": groups,
	})
}

// DeleteModule hard-deletes a module (admin only) and reconciles its
// discipline counter.
func (mc *ModulesController) DeleteModule(c *fiber.Ctx) error {
	slug := c.Params("slug")

	module, err := mc.Merge.Delete(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not delete module")
	}

	if module.DisciplineID != nil {
		if _, err := mc.Reconciler.ReconcileDiscipline(*module.DisciplineID); err != nil {
			mc.Logger.Printf("reconcile after delete: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Module deleted",
		"slug":    slug,
	})
}

// serviceError maps service error types onto HTTP statuses: validation
// failures are user-actionable 422s, consistency faults surface as 409.
func (mc *ModulesController) serviceError(c *fiber.Ctx, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return utils.ValidationFailed(c, string(validation.Reason), validation)
	}
	var fault *services.ConsistencyFault
	if errors.As(err, &fault) {
		return utils.Error(c, fiber.StatusConflict, fault)
	}
	return utils.InternalServerError(c, err.Error())
}
