package models

import "time"

// Discipline is a pre-seeded catalog entry; the generator never creates one.
// ModuleCount is a derived aggregate owned by the reconciler: it is always
// recomputed from the modules table, never incremented in place.
type Discipline struct {
	ID          string    `gorm:"primaryKey" json:"id"` // catalog key, e.g. "statistics"
	Name        string    `gorm:"not null" json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ModuleCount int       `gorm:"default:0" json:"moduleCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
