package services

import (
	"errors"
	"fmt"
	"strings"

	"lectoria/backend/models"

	"gorm.io/gorm"
)

// Decision is the validated form of a draft's self-declared consolidation
// action. Exactly one branch is set.
type Decision struct {
	CreateNew *CreateNewDecision
	AppendTo  *AppendToDecision
}

type CreateNewDecision struct {
	Slug string
}

type AppendToDecision struct {
	TargetSlug string
}

// ConsolidationService validates generator output against the stored slug
// universe before any mutation occurs.
type ConsolidationService struct {
	DB *gorm.DB
}

func NewConsolidationService(db *gorm.DB) *ConsolidationService {
	return &ConsolidationService{DB: db}
}

// Validate checks a draft's declared action. No side effects; runs before
// any write. An append-to whose target does not exist is rejected rather
// than silently demoted to create-new, so generator errors stay visible.
func (s *ConsolidationService) Validate(draft *models.ModuleDraft) (*Decision, error) {
	if draft.DisciplineSelection != nil && draft.DisciplineSelection.SelectedDisciplineID != "" &&
		draft.Discipline != "" && draft.Discipline != draft.DisciplineSelection.SelectedDisciplineID {
		return nil, &ValidationError{
			Reason: ReasonDisciplineMismatch,
			Message: fmt.Sprintf("draft discipline %q does not match selected discipline %q",
				draft.Discipline, draft.DisciplineSelection.SelectedDisciplineID),
		}
	}

	switch draft.Consolidation.Action {
	case models.ActionAppendTo:
		target := draft.Consolidation.TargetModuleSlug
		if target == "" {
			return nil, &ValidationError{
				Reason:  ReasonMissingTarget,
				Message: "append-to draft carries no target module slug",
			}
		}
		var module models.Module
		err := s.DB.Where("slug = ? AND draft = ?", target, false).First(&module).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{
				Reason:  ReasonTargetNotFound,
				Message: fmt.Sprintf("no published module with slug %q", target),
			}
		}
		if err != nil {
			return nil, err
		}
		return &Decision{AppendTo: &AppendToDecision{TargetSlug: target}}, nil

	case models.ActionCreateNew:
		slug := draft.Slug
		if slug == "" {
			slug = DeriveSlug(draft.Title)
		}
		if slug == "" {
			return nil, &ValidationError{
				Reason:  ReasonMissingSlug,
				Message: "draft has no slug and no title to derive one from",
			}
		}
		return &Decision{CreateNew: &CreateNewDecision{Slug: slug}}, nil

	default:
		return nil, &ValidationError{
			Reason:  ReasonUnknownAction,
			Message: fmt.Sprintf("unknown consolidation action %q", draft.Consolidation.Action),
		}
	}
}

// DeriveSlug turns a title into a slug: lowercase, non-alphanumerics
// stripped, whitespace collapsed to single hyphens, leading/trailing hyphens
// trimmed. Pure and deterministic so retries of the same draft derive the
// same slug.
func DeriveSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}
