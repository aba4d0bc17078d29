package models

import (
	"time"
)

// AttendanceRecord marks one farmer present or absent on a task for a given
// day. The unique index prevents double entries per farmer per task per day.
type AttendanceRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID   uint      `gorm:"not null;index;uniqueIndex:idx_attendance_entry" json:"task_id"`
	Task     Task      `json:"task,omitempty"`
	FarmerID uint      `gorm:"not null;index;uniqueIndex:idx_attendance_entry" json:"farmer_id"`
	Farmer   User      `gorm:"foreignKey:FarmerID;references:ID" json:"farmer,omitempty"`
	Date     time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_entry" json:"date"`

	Present    bool    `gorm:"not null" json:"present"`
	Remarks    *string `gorm:"type:text" json:"remarks,omitempty"`
	RecordedBy uint    `gorm:"not null" json:"recorded_by"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }

// AttendanceFilter represents filter criteria for attendance queries
type AttendanceFilter struct {
	ID       *uint      `json:"id,omitempty"`
	TaskID   *uint      `json:"task_id,omitempty"`
	FarmerID *uint      `json:"farmer_id,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Present  *bool      `json:"present,omitempty"`
}
