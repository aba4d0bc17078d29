package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageStatus classifies a consumption event.
type UsageStatus string

const (
	UsageStatusUsed    UsageStatus = "Used"
	UsageStatusDamaged UsageStatus = "Damaged"
	UsageStatusMissing UsageStatus = "Missing"
)

// ValidUsageStatus reports whether status is one of the accepted values.
func ValidUsageStatus(status UsageStatus) bool {
	switch status {
	case UsageStatusUsed, UsageStatusDamaged, UsageStatusMissing:
		return true
	}
	return false
}

// RequiresDetails reports whether a usage status demands a free-text
// explanation. Used consumption needs none; Damaged and Missing do.
func (s UsageStatus) RequiresDetails() bool {
	return s == UsageStatusDamaged || s == UsageStatusMissing
}

// DeductsStock reports whether recording this status reduces available stock.
// Used items return through their own replenishment cycle and are not
// deducted; Damaged and Missing represent unplanned loss and are.
func (s UsageStatus) DeductsStock() bool {
	return s == UsageStatusDamaged || s == UsageStatusMissing
}

// InventoryUsageLog is an immutable record of a single consumption event.
// Rows are appended by the inventory flow and never updated or deleted.
type InventoryUsageLog struct {
	ID    uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LogID int64     `gorm:"not null;uniqueIndex" json:"log_id"` // minted from the usage_logs sequence
	UUID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	ResourceName string       `gorm:"size:120;not null;index:idx_usage_logs_resource" json:"resource_name"`
	Kind         ResourceKind `gorm:"type:varchar(20);not null;index:idx_usage_logs_resource" json:"kind"`
	Quantity     float64      `gorm:"not null" json:"quantity"`
	Unit         string       `gorm:"size:20;not null" json:"unit"`
	Status       UsageStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	Details      string       `gorm:"type:text;not null;default:''" json:"details"`

	ActorID   uint   `gorm:"not null;index" json:"actor_id"`
	ActorName string `gorm:"size:120;not null" json:"actor_name"`
	ProjectID string `gorm:"size:60;not null;index" json:"project_id"` // project code or the General sentinel

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (InventoryUsageLog) TableName() string { return "inventory_usage_logs" }

// BeforeCreate ensures UUID is set
func (l *InventoryUsageLog) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	return nil
}

// InventoryUsageLogFilter represents filter criteria for usage log queries
type InventoryUsageLogFilter struct {
	ID            *uint         `json:"id,omitempty"`
	LogID         *int64        `json:"log_id,omitempty"`
	ResourceName  *string       `json:"resource_name,omitempty"`
	Kind          *ResourceKind `json:"kind,omitempty"`
	Status        *UsageStatus  `json:"status,omitempty"`
	ActorID       *uint         `json:"actor_id,omitempty"`
	ProjectID     *string       `json:"project_id,omitempty"`
	CreatedAfter  *time.Time    `json:"created_after,omitempty"`
	CreatedBefore *time.Time    `json:"created_before,omitempty"`
}
