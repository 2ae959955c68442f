package models

import "gorm.io/gorm"

// Concept belongs to exactly one discipline. The parent link forms a tree;
// acyclicity is enforced on write, not by the schema.
type Concept struct {
	gorm.Model
	Name            string `gorm:"not null;index:idx_concept_name_discipline,unique" json:"name"`
	DisciplineID    string `gorm:"not null;index:idx_concept_name_discipline,unique" json:"discipline"`
	ParentConceptID *uint  `gorm:"index" json:"parentConceptId,omitempty"`
}

// ModuleConcept joins modules to registered concepts.
type ModuleConcept struct {
	ModuleID  uint `gorm:"primaryKey" json:"moduleId"`
	ConceptID uint `gorm:"primaryKey" json:"conceptId"`
}

// ConceptPrerequisite is a directed edge: ConceptID requires PrerequisiteID.
type ConceptPrerequisite struct {
	ConceptID      uint `gorm:"primaryKey" json:"conceptId"`
	PrerequisiteID uint `gorm:"primaryKey" json:"prerequisiteId"`
}
