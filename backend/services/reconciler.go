package services

import (
	"log"

	"lectoria/backend/models"

	"gorm.io/gorm"
)

// ReconcilerService recomputes per-discipline module counts. The count is a
// derived aggregate: always a fresh COUNT(*) over published modules, written
// unconditionally, never incremented in place. Safe to call redundantly or
// concurrently; the computed value is deterministic given the module table.
type ReconcilerService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReconcilerService(db *gorm.DB, logger *log.Logger) *ReconcilerService {
	return &ReconcilerService{DB: db, Logger: logger}
}

// ReconcileDiscipline recomputes one discipline's module_count and returns
// the fresh value.
func (s *ReconcilerService) ReconcileDiscipline(disciplineID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Module{}).
		Where("discipline_id = ? AND draft = ?", disciplineID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	err = s.DB.Model(&models.Discipline{}).Where("id = ?", disciplineID).
		Update("module_count", count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ReconcileAll sweeps the whole catalog. Usable as a maintenance operation;
// it self-heals any prior drift.
func (s *ReconcilerService) ReconcileAll() error {
	var ids []string
	if err := s.DB.Model(&models.Discipline{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.ReconcileDiscipline(id); err != nil {
			s.Logger.Printf("reconcile %s: %v", id, err)
			return err
		}
	}
	return nil
}
