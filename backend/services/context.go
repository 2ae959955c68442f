package services

import (
	"lectoria/backend/models"

	"gorm.io/gorm"
)

// ModuleSummary is the trimmed module shape handed to the generator: no
// lesson or exercise bodies, to bound payload size.
type ModuleSummary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Concepts    []string `json:"concepts"`
	Tags        []string `json:"tags"`
}

// GenerationContext is the decision input for the generator. AllowedSlugs is
// the universe of valid append targets; the generator must not exceed it.
type GenerationContext struct {
	Discipline   *models.Discipline  `json:"discipline,omitempty"`
	Catalog      []models.Discipline `json:"catalog,omitempty"`
	Modules      []ModuleSummary     `json:"modules"`
	Concepts     []string            `json:"concepts"`
	AllowedSlugs []string            `json:"allowedSlugs"`
}

// ContextService builds generation contexts. Pure read, no mutation.
type ContextService struct {
	DB *gorm.DB
}

func NewContextService(db *gorm.DB) *ContextService {
	return &ContextService{DB: db}
}

// Build returns the context for one discipline, or, with an empty id, across
// all disciplines plus the full catalog so the generator can also pick a
// discipline.
func (s *ContextService) Build(disciplineID string) (*GenerationContext, error) {
	ctx := &GenerationContext{
		Modules:      []ModuleSummary{},
		Concepts:     []string{},
		AllowedSlugs: []string{},
	}

	moduleQuery := s.DB.Model(&models.Module{}).Where("draft = ?", false)
	conceptQuery := s.DB.Model(&models.Concept{})

	if disciplineID != "" {
		var discipline models.Discipline
		if err := s.DB.First(&discipline, "id = ?", disciplineID).Error; err != nil {
			return nil, err
		}
		ctx.Discipline = &discipline
		moduleQuery = moduleQuery.Where("discipline_id = ?", disciplineID)
		conceptQuery = conceptQuery.Where("discipline_id = ?", disciplineID)
	} else {
		if err := s.DB.Order("id").Find(&ctx.Catalog).Error; err != nil {
			return nil, err
		}
	}

	var modules []models.Module
	if err := moduleQuery.Order("slug").Find(&modules).Error; err != nil {
		return nil, err
	}
	for _, m := range modules {
		ctx.Modules = append(ctx.Modules, ModuleSummary{
			Slug:        m.Slug,
			Title:       m.Title,
			Description: m.Description,
			Concepts:    m.Concepts,
			Tags:        m.Tags,
		})
		ctx.AllowedSlugs = append(ctx.AllowedSlugs, m.Slug)
	}

	if err := conceptQuery.Order("name").Pluck("name", &ctx.Concepts).Error; err != nil {
		return nil, err
	}

	return ctx, nil
}
