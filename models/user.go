package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a platform account: administrators, supervisors, farm presidents,
// head farmers, and regular farmers.
type User struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	RoleID uint     `gorm:"not null;index" json:"role_id"`
	Role   UserRole `gorm:"foreignKey:RoleID;references:ID" json:"role,omitempty"`

	FirstName string `gorm:"size:80;not null" json:"first_name"`
	LastName  string `gorm:"size:80;not null" json:"last_name"`
	Username  string `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email     string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Contact   string `gorm:"size:40" json:"contact"`

	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// BarangayID scopes non-admin users to a locality.
	BarangayID *uint     `gorm:"index" json:"barangay_id,omitempty"`
	Barangay   *Barangay `json:"barangay,omitempty"`

	IsActive    *bool      `gorm:"default:true;index" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

// BeforeCreate ensures UUID is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	return nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UUID       *uuid.UUID `json:"uuid,omitempty"`
	RoleID     *uint      `json:"role_id,omitempty"`
	Username   *string    `json:"username,omitempty"`
	Email      *string    `json:"email,omitempty"`
	BarangayID *uint      `json:"barangay_id,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
}
