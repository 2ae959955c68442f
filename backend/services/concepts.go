package services

import (
	"fmt"

	"lectoria/backend/models"

	"gorm.io/gorm"
)

// ConceptService manages the concept registry: creation under a discipline,
// parent links and prerequisite edges. Both link kinds are cycle-checked on
// write; the schema itself does not prevent cycles.
type ConceptService struct {
	DB *gorm.DB
}

func NewConceptService(db *gorm.DB) *ConceptService {
	return &ConceptService{DB: db}
}

// Create registers a concept. A parent must exist, belong to the same
// discipline, and not descend from the new concept (trivially true on
// create, but the same walk guards Reparent-style updates).
func (s *ConceptService) Create(name, disciplineID string, parentID *uint) (*models.Concept, error) {
	concept := models.Concept{Name: name, DisciplineID: disciplineID}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			var parent models.Concept
			if err := tx.First(&parent, *parentID).Error; err != nil {
				return err
			}
			if parent.DisciplineID != disciplineID {
				return &ValidationError{
					Reason: ReasonDisciplineMismatch,
					Message: fmt.Sprintf("parent concept %q belongs to discipline %q, not %q",
						parent.Name, parent.DisciplineID, disciplineID),
				}
			}
			concept.ParentConceptID = parentID
		}
		return tx.Where("name = ? AND discipline_id = ?", name, disciplineID).
			FirstOrCreate(&concept).Error
	})
	if err != nil {
		return nil, err
	}
	return &concept, nil
}

// SetParent re-links a concept under a new parent, rejecting links that
// would close a cycle in the parent chain.
func (s *ConceptService) SetParent(conceptID, parentID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var concept, parent models.Concept
		if err := tx.First(&concept, conceptID).Error; err != nil {
			return err
		}
		if err := tx.First(&parent, parentID).Error; err != nil {
			return err
		}
		if parent.DisciplineID != concept.DisciplineID {
			return &ValidationError{
				Reason:  ReasonDisciplineMismatch,
				Message: "parent concept belongs to a different discipline",
			}
		}

		// Walk up from the proposed parent; reaching the concept itself
		// means the link would close a cycle.
		cursor := &parent
		for {
			if cursor.ID == conceptID {
				return &ValidationError{
					Reason:  ReasonConceptCycle,
					Message: fmt.Sprintf("linking %q under %q would create a cycle", concept.Name, parent.Name),
				}
			}
			if cursor.ParentConceptID == nil {
				break
			}
			var next models.Concept
			if err := tx.First(&next, *cursor.ParentConceptID).Error; err != nil {
				return err
			}
			cursor = &next
		}

		return tx.Model(&models.Concept{}).Where("id = ?", conceptID).
			Update("parent_concept_id", parentID).Error
	})
}

// AddPrerequisite adds a directed prerequisite edge, rejecting edges that
// would make the prerequisite graph cyclic.
func (s *ConceptService) AddPrerequisite(conceptID, prerequisiteID uint) error {
	if conceptID == prerequisiteID {
		return &ValidationError{Reason: ReasonConceptCycle, Message: "a concept cannot require itself"}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var concept, prereq models.Concept
		if err := tx.First(&concept, conceptID).Error; err != nil {
			return err
		}
		if err := tx.First(&prereq, prerequisiteID).Error; err != nil {
			return err
		}
		if concept.DisciplineID != prereq.DisciplineID {
			return &ValidationError{
				Reason:  ReasonDisciplineMismatch,
				Message: "prerequisite belongs to a different discipline",
			}
		}

		reachable, err := s.reaches(tx, prerequisiteID, conceptID)
		if err != nil {
			return err
		}
		if reachable {
			return &ValidationError{
				Reason:  ReasonConceptCycle,
				Message: fmt.Sprintf("%q already requires %q, directly or transitively", prereq.Name, concept.Name),
			}
		}

		edge := models.ConceptPrerequisite{ConceptID: conceptID, PrerequisiteID: prerequisiteID}
		return tx.Where(&edge).FirstOrCreate(&edge).Error
	})
}

// reaches reports whether `to` is reachable from `from` over prerequisite
// edges.
func (s *ConceptService) reaches(tx *gorm.DB, from, to uint) (bool, error) {
	visited := map[uint]bool{}
	stack := []uint{from}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == to {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		var next []uint
		err := tx.Model(&models.ConceptPrerequisite{}).
			Where("concept_id = ?", current).
			Pluck("prerequisite_id", &next).Error
		if err != nil {
			return false, err
		}
		stack = append(stack, next...)
	}
	return false, nil
}
