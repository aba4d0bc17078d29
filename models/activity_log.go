package models

import (
	"encoding/json"
	"time"
)

type ActivityLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	LogID        int64           `gorm:"not null;uniqueIndex" json:"log_id"` // minted from the activity_logs sequence
	UserID       *uint           `gorm:"index:idx_activity_user_id" json:"user_id,omitempty"`
	User         *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Username     string          `gorm:"size:80;not null;default:''" json:"username"`
	Role         string          `gorm:"size:40;not null;default:''" json:"role"`
	Action       string          `gorm:"size:60;not null;index:idx_activity_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_activity_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_activity_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_activity_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_activity_created_at" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// Activity action constants
const (
	ActivityActionLoginSuccess      = "login_success"
	ActivityActionLoginFailed       = "login_failed"
	ActivityActionLogout            = "logout"
	ActivityActionBarangayCreated   = "barangay_created"
	ActivityActionBarangayUpdated   = "barangay_updated"
	ActivityActionBarangayDeleted   = "barangay_deleted"
	ActivityActionResourceCreated   = "resource_created"
	ActivityActionStockReplenished  = "stock_replenished"
	ActivityActionStockConsumed     = "stock_consumed"
	ActivityActionResourceDeleted   = "resource_deleted"
	ActivityActionProjectCreated    = "project_created"
	ActivityActionProjectUpdated    = "project_updated"
	ActivityActionTeamCreated       = "team_created"
	ActivityActionTeamUpdated       = "team_updated"
	ActivityActionTaskCreated       = "task_created"
	ActivityActionTaskUpdated       = "task_updated"
	ActivityActionAttendanceMarked  = "attendance_marked"
	ActivityActionHarvestRecorded   = "harvest_recorded"
	ActivityActionFeedbackSubmitted = "feedback_submitted"
	ActivityActionFeedbackResolved  = "feedback_resolved"
)

// ActivityLogFilter represents filter criteria for activity log queries
type ActivityLogFilter struct {
	ID            *uint
	UserID        *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *ActivityLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
