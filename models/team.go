package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team groups farmers under a head farmer within a barangay. TeamID is the
// external display identifier minted from the teams sequence.
type Team struct {
	ID     uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	TeamID int64     `gorm:"not null;uniqueIndex" json:"team_id"`

	TeamName     string   `gorm:"size:120;not null" json:"team_name"`
	BarangayID   uint     `gorm:"not null;index" json:"barangay_id"`
	Barangay     Barangay `json:"barangay,omitempty"`
	HeadFarmerID uint     `gorm:"not null;index" json:"head_farmer_id"`
	HeadFarmer   User     `gorm:"foreignKey:HeadFarmerID;references:ID" json:"head_farmer,omitempty"`

	Members []TeamMember `gorm:"foreignKey:TeamID;references:ID" json:"members,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Team) TableName() string { return "teams" }

// BeforeCreate ensures UUID is set
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	return nil
}

// TeamMember links a farmer to a team. A farmer belongs to at most one team
// at a time.
type TeamMember struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TeamID   uint      `gorm:"not null;index;uniqueIndex:idx_team_members_member" json:"team_id"`
	FarmerID uint      `gorm:"not null;uniqueIndex:idx_team_members_member" json:"farmer_id"`
	Farmer   User      `gorm:"foreignKey:FarmerID;references:ID" json:"farmer,omitempty"`
	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

func (TeamMember) TableName() string { return "team_members" }

// TeamFilter represents filter criteria for team queries
type TeamFilter struct {
	ID           *uint   `json:"id,omitempty"`
	TeamID       *int64  `json:"team_id,omitempty"`
	TeamName     *string `json:"team_name,omitempty"`
	BarangayID   *uint   `json:"barangay_id,omitempty"`
	HeadFarmerID *uint   `json:"head_farmer_id,omitempty"`
}
