package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Harvest records crop yield for a project. HarvestID is the external display
// identifier minted from the harvests sequence.
type Harvest struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	HarvestID int64     `gorm:"not null;uniqueIndex" json:"harvest_id"`

	ProjectID uint    `gorm:"not null;index" json:"project_id"`
	Project   Project `json:"project,omitempty"`
	TeamID    *uint   `gorm:"index" json:"team_id,omitempty"`
	Team      *Team   `json:"team,omitempty"`

	CropName    string    `gorm:"size:120;not null;index" json:"crop_name"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	Unit        string    `gorm:"size:20;not null" json:"unit"`
	HarvestDate time.Time `gorm:"type:date;not null;index" json:"harvest_date"`

	RecordedBy uint `gorm:"not null" json:"recorded_by"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Harvest) TableName() string { return "harvests" }

// BeforeCreate ensures UUID is set
func (h *Harvest) BeforeCreate(tx *gorm.DB) error {
	if h.UUID == uuid.Nil {
		h.UUID = uuid.New()
	}
	return nil
}

// HarvestFilter represents filter criteria for harvest queries
type HarvestFilter struct {
	ID            *uint      `json:"id,omitempty"`
	HarvestID     *int64     `json:"harvest_id,omitempty"`
	ProjectID     *uint      `json:"project_id,omitempty"`
	TeamID        *uint      `json:"team_id,omitempty"`
	CropName      *string    `json:"crop_name,omitempty"`
	HarvestAfter  *time.Time `json:"harvest_after,omitempty"`
	HarvestBefore *time.Time `json:"harvest_before,omitempty"`
}
