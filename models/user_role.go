// Package models contains domain entities and business models for the farm operations system
package models

import "time"

// Role name constants
const (
	RoleAdmin         = "admin"
	RoleSupervisor    = "supervisor"
	RoleFarmPresident = "farm_president"
	RoleHeadFarmer    = "head_farmer"
	RoleFarmer        = "farmer"
)

// UserRole defines an access level within the platform.
type UserRole struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string    `gorm:"size:40;not null;uniqueIndex" json:"role_name"`
	DisplayName string    `gorm:"size:80;not null" json:"display_name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserRoleFilter represents filter criteria for role queries
type UserRoleFilter struct {
	ID       *uint   `json:"id,omitempty"`
	RoleName *string `json:"role_name,omitempty"`
}

// CanManageInventory reports whether the role may register resource types and
// replenish stock. Regular farmers only consume.
func CanManageInventory(roleName string) bool {
	switch roleName {
	case RoleAdmin, RoleSupervisor, RoleFarmPresident:
		return true
	}
	return false
}
