package services

import (
	"testing"

	"lectoria/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConcept(t *testing.T) {
	db := newTestDB(t)
	svc := NewConceptService(db)

	mean, err := svc.Create("Mean", "statistics", nil)
	require.NoError(t, err)
	assert.Equal(t, "statistics", mean.DisciplineID)

	// Creating the same concept again returns the existing row.
	again, err := svc.Create("Mean", "statistics", nil)
	require.NoError(t, err)
	assert.Equal(t, mean.ID, again.ID)

	child, err := svc.Create("Weighted Mean", "statistics", &mean.ID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentConceptID)
	assert.Equal(t, mean.ID, *child.ParentConceptID)
}

func TestCreateConceptParentDisciplineMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewConceptService(db)

	force, err := svc.Create("Force", "physics", nil)
	require.NoError(t, err)

	_, err = svc.Create("Variance", "statistics", &force.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonDisciplineMismatch, validation.Reason)
}

func TestSetParentRejectsCycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewConceptService(db)

	a, err := svc.Create("A", "statistics", nil)
	require.NoError(t, err)
	b, err := svc.Create("B", "statistics", &a.ID)
	require.NoError(t, err)
	c, err := svc.Create("C", "statistics", &b.ID)
	require.NoError(t, err)

	// A under C would close a -> b -> c -> a.
	err = svc.SetParent(a.ID, c.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonConceptCycle, validation.Reason)

	// The old parent chain is untouched.
	var stored models.Concept
	require.NoError(t, db.First(&stored, a.ID).Error)
	assert.Nil(t, stored.ParentConceptID)
}

func TestAddPrerequisite(t *testing.T) {
	db := newTestDB(t)
	svc := NewConceptService(db)

	mean, err := svc.Create("Mean", "statistics", nil)
	require.NoError(t, err)
	variance, err := svc.Create("Variance", "statistics", nil)
	require.NoError(t, err)

	require.NoError(t, svc.AddPrerequisite(variance.ID, mean.ID))
	// Re-adding the same edge is a no-op.
	require.NoError(t, svc.AddPrerequisite(variance.ID, mean.ID))

	var edges int64
	require.NoError(t, db.Model(&models.ConceptPrerequisite{}).Count(&edges).Error)
	assert.EqualValues(t, 1, edges)
}

func TestAddPrerequisiteRejectsSelf(t *testing.T) {
	db := newTestDB(t)
	svc := NewConceptService(db)

	mean, err := svc.Create("Mean", "statistics", nil)
	require.NoError(t, err)

	err = svc.AddPrerequisite(mean.ID, mean.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonConceptCycle, validation.Reason)
}

func TestAddPrerequisiteRejectsTransitiveCycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewConceptService(db)

	a, err := svc.Create("A", "statistics", nil)
	require.NoError(t, err)
	b, err := svc.Create("B", "statistics", nil)
	require.NoError(t, err)
	c, err := svc.Create("C", "statistics", nil)
	require.NoError(t, err)

	require.NoError(t, svc.AddPrerequisite(b.ID, a.ID)) // b requires a
	require.NoError(t, svc.AddPrerequisite(c.ID, b.ID)) // c requires b

	// a requires c would close the loop.
	err = svc.AddPrerequisite(a.ID, c.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonConceptCycle, validation.Reason)
}

func TestAddPrerequisiteDisciplineMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewConceptService(db)

	mean, err := svc.Create("Mean", "statistics", nil)
	require.NoError(t, err)
	force, err := svc.Create("Force", "physics", nil)
	require.NoError(t, err)

	err = svc.AddPrerequisite(mean.ID, force.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, ReasonDisciplineMismatch, validation.Reason)
}
