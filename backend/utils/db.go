package utils

import (
	"fmt"
	"path"

	"lectoria/backend/config"
	"lectoria/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB connects to PostgreSQL, runs migrations and seeds the discipline
// catalog.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedDisciplines(db); err != nil {
		return nil, err
	}
	if err := BackfillPhotoURLs(db, cfg.UploadsDir); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate is shared by InitDB and the test setup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
}

// SeedDisciplines inserts the catalog. Disciplines are pre-seeded, never
// generator-created, so FirstOrCreate keeps this idempotent across restarts.
func SeedDisciplines(db *gorm.DB) error {
	catalog := []models.Discipline{
		{ID: "mathematics", Name: "Mathematics", Category: "exact-sciences"},
		{ID: "statistics", Name: "Statistics", Category: "exact-sciences"},
		{ID: "physics", Name: "Physics", Category: "natural-sciences"},
		{ID: "chemistry", Name: "Chemistry", Category: "natural-sciences"},
		{ID: "biology", Name: "Biology", Category: "natural-sciences"},
		{ID: "computer-science", Name: "Computer Science", Category: "exact-sciences"},
		{ID: "economics", Name: "Economics", Category: "social-sciences"},
		{ID: "history", Name: "History", Category: "humanities"},
		{ID: "philosophy", Name: "Philosophy", Category: "humanities"},
	}

	for _, d := range catalog {
		if err := db.Where("id = ?", d.ID).FirstOrCreate(&d).Error; err != nil {
			return err
		}
	}
	return nil
}

// BackfillPhotoURLs fills the storage url for photo rows written before the
// url column existed. The url is derived from the stored filename.
func BackfillPhotoURLs(db *gorm.DB, uploadsDir string) error {
	var photos []models.Photo
	if err := db.Where("url = '' OR url IS NULL").Find(&photos).Error; err != nil {
		return err
	}
	for _, p := range photos {
		url := "/" + path.Join("uploads", p.Filename)
		if err := db.Model(&models.Photo{}).Where("id = ?", p.ID).
			Update("url", url).Error; err != nil {
			return err
		}
	}
	return nil
}
