package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Consolidation actions a generated draft may declare.
const (
	ActionCreateNew = "create-new"
	ActionAppendTo  = "append-to"
)

type Lesson struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

type Exercise struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"` // beginner, intermediate, advanced
	Solution    string `json:"solution,omitempty"`
}

// Consolidation is the generator's self-declared decision about whether its
// output starts a new module or extends an existing one.
type Consolidation struct {
	Action           string `json:"action"` // create-new, append-to
	TargetModuleSlug string `json:"targetModuleSlug,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// Module is identified by its slug. Lessons, exercises and the string sets
// live in JSON columns; photo groups are weak references (ids only, no
// ownership, no cascade).
type Module struct {
	gorm.Model
	Slug             string                         `gorm:"uniqueIndex;not null" json:"slug"`
	Title            string                         `gorm:"not null" json:"title"`
	Description      string                         `json:"description"`
	DisciplineID     *string                        `gorm:"index" json:"discipline,omitempty"`
	Draft            bool                           `gorm:"index" json:"draft"`
	Version          string                         `json:"version,omitempty"`
	EstimatedTime    int                            `json:"estimatedTime"` // minutes
	Lessons          datatypes.JSONSlice[Lesson]    `json:"lessons"`
	Exercises        datatypes.JSONSlice[Exercise]  `json:"exercises"`
	Concepts         datatypes.JSONSlice[string]    `json:"concepts"`
	Tags             datatypes.JSONSlice[string]    `json:"tags"`
	Prerequisites    datatypes.JSONSlice[string]    `json:"prerequisites"`
	LearningOutcomes datatypes.JSONSlice[string]    `json:"learningOutcomes"`
	PhotoGroupIDs    datatypes.JSONSlice[uuid.UUID] `json:"photoGroupIds"`
	CreatedBy        uint                           `gorm:"index" json:"createdBy"`
	LastUpdatedBy    uint                           `json:"lastUpdatedBy"`
	LastAppendDigest string                         `json:"-"` // digest of the last applied append draft
	Consolidation    Consolidation                  `gorm:"embedded;embeddedPrefix:consolidation_" json:"consolidation"`
}

// DisciplineSelection is carried by drafts generated without a fixed
// discipline, where the generator picked one from the catalog.
type DisciplineSelection struct {
	SelectedDisciplineID string `json:"selectedDisciplineId"`
	Reason               string `json:"reason,omitempty"`
}

// ModuleDraft is the wire shape produced by the generator. It is untrusted
// input: everything here is validated before any write.
type ModuleDraft struct {
	Slug                string               `json:"slug"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	Discipline          string               `json:"discipline,omitempty"`
	Concepts            []string             `json:"concepts"`
	Tags                []string             `json:"tags"`
	Prerequisites       []string             `json:"prerequisites,omitempty"`
	LearningOutcomes    []string             `json:"learningOutcomes"`
	EstimatedTime       int                  `json:"estimatedTime"`
	Lessons             []Lesson             `json:"lessons"`
	Exercises           []Exercise           `json:"exercises"`
	Version             string               `json:"version,omitempty"`
	Consolidation       Consolidation        `json:"consolidation"`
	DisciplineSelection *DisciplineSelection `json:"disciplineSelection,omitempty"`
}
