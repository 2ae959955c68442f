package services

import (
	"fmt"
	"io"
	"log"
	"testing"

	"lectoria/backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database with the full schema and a
// seeded discipline catalog.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Discipline{},
		&models.Module{},
		&models.Concept{},
		&models.ModuleConcept{},
		&models.ConceptPrerequisite{},
		&models.PhotoGroup{},
		&models.Photo{},
		&models.UserContribution{},
	)
	require.NoError(t, err)

	for _, d := range []models.Discipline{
		{ID: "statistics", Name: "Statistics", Category: "exact-sciences"},
		{ID: "physics", Name: "Physics", Category: "natural-sciences"},
	} {
		require.NoError(t, db.Create(&d).Error)
	}

	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func publishedModule(t *testing.T, db *gorm.DB, slug, discipline string, lessons ...models.Lesson) *models.Module {
	t.Helper()

	module := &models.Module{
		Slug:          slug,
		Title:         slug,
		Draft:         false,
		Lessons:       lessons,
		Consolidation: models.Consolidation{Action: models.ActionCreateNew},
	}
	if discipline != "" {
		module.DisciplineID = &discipline
	}
	require.NoError(t, db.Create(module).Error)
	return module
}
