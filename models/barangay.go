package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Barangay is a locality administered by the platform. BarangayID is the
// external display identifier minted from the barangays sequence.
type Barangay struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	BarangayID int64     `gorm:"not null;uniqueIndex" json:"barangay_id"`

	Name         string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Municipality string `gorm:"size:120;not null" json:"municipality"`
	Province     string `gorm:"size:120;not null" json:"province"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Barangay) TableName() string { return "barangays" }

// BeforeCreate ensures UUID is set
func (b *Barangay) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	return nil
}

// BarangayFilter represents filter criteria for barangay queries
type BarangayFilter struct {
	ID           *uint   `json:"id,omitempty"`
	BarangayID   *int64  `json:"barangay_id,omitempty"`
	Name         *string `json:"name,omitempty"`
	Municipality *string `json:"municipality,omitempty"`
}
