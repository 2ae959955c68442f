package services

import (
	"testing"

	"lectoria/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSlug(t *testing.T) {
	assert.Equal(t, "intro-to-probability", DeriveSlug("Intro to Probability!"))
	assert.Equal(t, "a-b", DeriveSlug("A  B"))
	assert.Equal(t, "bayes-theorem-101", DeriveSlug("  Bayes' Theorem, 101!  "))
	assert.Equal(t, "", DeriveSlug("!!!"))
	assert.Equal(t, "", DeriveSlug(""))

	// Pure: same input, same output, every time.
	for i := 0; i < 3; i++ {
		assert.Equal(t, DeriveSlug("Intro to Probability!"), DeriveSlug("Intro to Probability!"))
	}
}

func TestValidateCreateNew(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	draft := &models.ModuleDraft{
		Title:         "Intro to Probability!",
		Consolidation: models.Consolidation{Action: models.ActionCreateNew},
	}

	decision, err := svc.Validate(draft)
	require.NoError(t, err)
	require.NotNil(t, decision.CreateNew)
	assert.Nil(t, decision.AppendTo)
	assert.Equal(t, "intro-to-probability", decision.CreateNew.Slug)

	// An explicit slug wins over derivation.
	draft.Slug = "probability-basics"
	decision, err = svc.Validate(draft)
	require.NoError(t, err)
	assert.Equal(t, "probability-basics", decision.CreateNew.Slug)
}

func TestValidateCreateNewMissingSlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	_, err := svc.Validate(&models.ModuleDraft{
		Consolidation: models.Consolidation{Action: models.ActionCreateNew},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonMissingSlug, validation.Reason)
}

func TestValidateAppendToMissingTarget(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	_, err := svc.Validate(&models.ModuleDraft{
		Title:         "More Stats",
		Consolidation: models.Consolidation{Action: models.ActionAppendTo},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonMissingTarget, validation.Reason)
}

func TestValidateAppendToTargetNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	_, err := svc.Validate(&models.ModuleDraft{
		Title: "More Stats",
		Consolidation: models.Consolidation{
			Action:           models.ActionAppendTo,
			TargetModuleSlug: "does-not-exist",
		},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonTargetNotFound, validation.Reason)
}

func TestValidateAppendToDraftTargetNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	// Drafts are invisible as consolidation targets.
	draft := &models.Module{
		Slug:  "hidden-draft",
		Title: "Hidden",
		Draft: true,
	}
	require.NoError(t, db.Create(draft).Error)

	_, err := svc.Validate(&models.ModuleDraft{
		Title: "More",
		Consolidation: models.Consolidation{
			Action:           models.ActionAppendTo,
			TargetModuleSlug: "hidden-draft",
		},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonTargetNotFound, validation.Reason)
}

func TestValidateAppendToEmptyUniverse(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	// Brand-new discipline, no modules at all: any append-to the generator
	// suggests must be rejected, never silently demoted to create-new.
	_, err := svc.Validate(&models.ModuleDraft{
		Title:      "Statistics Primer",
		Discipline: "statistics",
		Consolidation: models.Consolidation{
			Action:           models.ActionAppendTo,
			TargetModuleSlug: "statistics-primer",
		},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonTargetNotFound, validation.Reason)
}

func TestValidateAppendToSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)
	publishedModule(t, db, "stats-basics", "statistics")

	decision, err := svc.Validate(&models.ModuleDraft{
		Title: "More Stats",
		Consolidation: models.Consolidation{
			Action:           models.ActionAppendTo,
			TargetModuleSlug: "stats-basics",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, decision.AppendTo)
	assert.Nil(t, decision.CreateNew)
	assert.Equal(t, "stats-basics", decision.AppendTo.TargetSlug)
}

func TestValidateDisciplineMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	_, err := svc.Validate(&models.ModuleDraft{
		Title:      "Mixed Up",
		Discipline: "statistics",
		DisciplineSelection: &models.DisciplineSelection{
			SelectedDisciplineID: "physics",
		},
		Consolidation: models.Consolidation{Action: models.ActionCreateNew},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonDisciplineMismatch, validation.Reason)
}

func TestValidateUnknownAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewConsolidationService(db)

	_, err := svc.Validate(&models.ModuleDraft{
		Title:         "Odd",
		Consolidation: models.Consolidation{Action: "replace"},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonUnknownAction, validation.Reason)
}
