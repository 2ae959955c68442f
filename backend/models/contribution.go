package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contribution kinds.
const (
	ContributionPhoto  = "photo"
	ContributionModule = "module"
	ContributionEdit   = "edit"
)

// UserContribution is an append-only ledger row; entries are never updated
// or deleted. TargetID is a photo/group uuid or a module slug depending on
// the kind.
type UserContribution struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"userId"`
	Kind      string         `gorm:"index;not null" json:"kind"` // photo, module, edit
	TargetID  string         `gorm:"index" json:"targetId"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (uc *UserContribution) BeforeCreate(tx *gorm.DB) error {
	if uc.ID == uuid.Nil {
		uc.ID = uuid.New()
	}
	return nil
}
