package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus represents the lifecycle state of a farm project.
type ProjectStatus string

const (
	ProjectStatusOngoing   ProjectStatus = "Ongoing"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusCancelled ProjectStatus = "Cancelled"
)

// Project is a cultivation effort in a barangay, led by a farm president or
// head farmer. ProjectID is the external display identifier minted from the
// projects sequence; ProjectCode is what usage logs reference.
type Project struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	ProjectID int64     `gorm:"not null;uniqueIndex" json:"project_id"`

	Title    string        `gorm:"size:160;not null" json:"title"`
	Status   ProjectStatus `gorm:"type:varchar(20);not null;default:'Ongoing';index" json:"status"`
	CropName string        `gorm:"size:120;not null" json:"crop_name"`

	BarangayID   uint     `gorm:"not null;index" json:"barangay_id"`
	Barangay     Barangay `json:"barangay,omitempty"`
	LeadFarmerID uint     `gorm:"not null;index" json:"lead_farmer_id"`
	LeadFarmer   User     `gorm:"foreignKey:LeadFarmerID;references:ID" json:"lead_farmer,omitempty"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "projects" }

// BeforeCreate ensures UUID is set
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the project still accepts tasks, harvests, and
// inventory attribution.
func (p *Project) IsOpen() bool {
	return p.Status == ProjectStatusOngoing
}

// ProjectFilter represents filter criteria for project queries
type ProjectFilter struct {
	ID           *uint          `json:"id,omitempty"`
	ProjectID    *int64         `json:"project_id,omitempty"`
	Status       *ProjectStatus `json:"status,omitempty"`
	BarangayID   *uint          `json:"barangay_id,omitempty"`
	LeadFarmerID *uint          `json:"lead_farmer_id,omitempty"`
	CropName     *string        `json:"crop_name,omitempty"`
}
