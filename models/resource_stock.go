package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceKind identifies which inventory a stock record belongs to.
type ResourceKind string

const (
	ResourceKindCrop       ResourceKind = "crop"
	ResourceKindFertilizer ResourceKind = "fertilizer"
	ResourceKindEquipment  ResourceKind = "equipment"
)

// ValidResourceKind reports whether kind names a known inventory.
func ValidResourceKind(kind ResourceKind) bool {
	switch kind {
	case ResourceKindCrop, ResourceKindFertilizer, ResourceKindEquipment:
		return true
	}
	return false
}

// ResourceStock is one stock partition of a registered resource type.
// Fertilizer and equipment stock is split per owner role (OwnedBy); crop stock
// and any shared partition use an empty OwnedBy. The unique index on
// (kind, name, owned_by) gives constant-time lookup per owner partition.
type ResourceStock struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID       uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	ResourceID int64        `gorm:"not null;index:idx_resource_stocks_resource_id" json:"resource_id"` // minted from the per-kind sequence
	Kind       ResourceKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_resource_stocks_key" json:"kind"`
	Category   string       `gorm:"size:120;not null" json:"category"` // e.g. crop type name, fertilizer type, equipment category
	Name       string       `gorm:"size:120;not null;uniqueIndex:idx_resource_stocks_key" json:"name"`
	OwnedBy    string       `gorm:"size:40;not null;default:'';uniqueIndex:idx_resource_stocks_key" json:"owned_by"`

	CurrentStock float64   `gorm:"not null;default:0" json:"current_stock"`
	Unit         string    `gorm:"size:20;not null" json:"unit"`
	StockDate    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"stock_date"` // last replenishment

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ResourceStock) TableName() string { return "resource_stocks" }

// BeforeCreate ensures UUID is set
func (r *ResourceStock) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	return nil
}

// SequenceName returns the counter that mints display ids for this kind.
func (k ResourceKind) SequenceName() string {
	switch k {
	case ResourceKindCrop:
		return "crop_types"
	case ResourceKindFertilizer:
		return "fertilizers"
	case ResourceKindEquipment:
		return "equipment"
	}
	return ""
}

// ResourceStockFilter represents filter criteria for stock queries
type ResourceStockFilter struct {
	ID         *uint         `json:"id,omitempty"`
	ResourceID *int64        `json:"resource_id,omitempty"`
	Kind       *ResourceKind `json:"kind,omitempty"`
	Category   *string       `json:"category,omitempty"`
	Name       *string       `json:"name,omitempty"`
	OwnedBy    *string       `json:"owned_by,omitempty"`
}
