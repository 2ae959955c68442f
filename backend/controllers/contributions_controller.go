package controllers

import (
	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ContributionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewContributionsController(db *gorm.DB, cfg *config.Config) *ContributionsController {
	return &ContributionsController{DB: db, Cfg: cfg}
}

// GetMyContributions returns the acting user's ledger rows, newest first.
func (cc *ContributionsController) GetMyContributions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	query := cc.DB.Where("user_id = ?", userID)
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	contributions := []models.UserContribution{}
	if err := query.Order("created_at DESC").Find(&contributions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(contributions)
}

// GetMyModules lists modules the user created or last edited. This reads
// the denormalized module columns, not the ledger.
func (cc *ContributionsController) GetMyModules(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var modules []models.Module
	err = cc.DB.Where("created_by = ? OR last_updated_by = ?", userID, userID).
		Order("updated_at DESC").Find(&modules).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := []fiber.Map{}
	for _, m := range modules {
		result = append(result, fiber.Map{
			"slug":       m.Slug,
			"title":      m.Title,
			"discipline": m.DisciplineID,
			"draft":      m.Draft,
			"created":    m.CreatedBy == userID,
			"updated_at": m.UpdatedAt,
		})
	}

	return c.JSON(result)
}
