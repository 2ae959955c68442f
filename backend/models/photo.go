package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhotoGroup is owned (in the attribution sense) by the user who created it.
// Modules reference groups weakly through Module.PhotoGroupIDs.
type PhotoGroup struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DisciplineID *string   `gorm:"index" json:"discipline,omitempty"`
	CreatedBy    uint      `gorm:"index;not null" json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (g *PhotoGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Photo is immutable once written, except for the URL backfill migration.
type Photo struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PhotoGroupID uuid.UUID `gorm:"type:uuid;index;not null" json:"photoGroupId"`
	UploadedBy   uint      `gorm:"index;not null" json:"uploadedBy"`
	Filename     string    `json:"filename"`
	FileSize     int64     `json:"fileSize"`
	MimeType     string    `json:"mimeType"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
