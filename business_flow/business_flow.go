// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for activity logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// Actor identifies the authenticated user driving a flow operation. Handlers
// build it from the session attached by the auth middleware.
type Actor struct {
	UserID     uint
	Username   string
	FullName   string
	Role       string
	BarangayID *uint
}

// CanManageInventory reports whether the actor may register resources and
// replenish stock.
func (a *Actor) CanManageInventory() bool {
	return models.CanManageInventory(a.Role)
}

// logActivity appends an activity log entry, minting its display id from the
// activity_logs sequence. Failures are reported to the caller, which usually
// ignores them so logging never blocks the main operation.
func logActivity(
	ctx context.Context,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	actor *Actor,
	action, description string,
	success bool,
	errMsg *string,
	metadata *ClientMetadata,
) error {
	logID, err := seqRepo.Next(ctx, utils.SeqActivityLogs)
	if err != nil {
		return err
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	entry := &models.ActivityLog{
		LogID:        logID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}
	if actor != nil {
		entry.UserID = &actor.UserID
		entry.Username = actor.Username
		entry.Role = actor.Role
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			entry.RequestID = &requestIDStr
		}
	}

	return activityRepo.Save(ctx, entry)
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	return dto.AuthUserDTO{
		ID:         user.ID,
		UUID:       user.UUID.String(),
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role.RoleName,
		BarangayID: user.BarangayID,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}

func ToUserSessionDTO(session models.UserSession) dto.UserSessionDTO {
	return dto.UserSessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToResourceStockDTO converts a stock model for API responses
func ToResourceStockDTO(stock models.ResourceStock) dto.ResourceStockDTO {
	return dto.ResourceStockDTO{
		ResourceID:   stock.ResourceID,
		UUID:         stock.UUID.String(),
		Kind:         string(stock.Kind),
		Category:     stock.Category,
		Name:         stock.Name,
		OwnedBy:      stock.OwnedBy,
		CurrentStock: stock.CurrentStock,
		Unit:         stock.Unit,
		StockDate:    stock.StockDate,
	}
}

// ToUsageLogDTO converts a usage log model for API responses
func ToUsageLogDTO(log models.InventoryUsageLog) dto.UsageLogDTO {
	return dto.UsageLogDTO{
		LogID:        log.LogID,
		ResourceName: log.ResourceName,
		Kind:         string(log.Kind),
		Quantity:     log.Quantity,
		Unit:         log.Unit,
		Status:       string(log.Status),
		Details:      log.Details,
		ActorName:    log.ActorName,
		ProjectID:    log.ProjectID,
		Timestamp:    log.CreatedAt,
	}
}

// ToBarangayDTO converts a barangay model for API responses
func ToBarangayDTO(barangay models.Barangay) dto.BarangayDTO {
	return dto.BarangayDTO{
		BarangayID:   barangay.BarangayID,
		UUID:         barangay.UUID.String(),
		Name:         barangay.Name,
		Municipality: barangay.Municipality,
		Province:     barangay.Province,
		CreatedAt:    barangay.CreatedAt.Format(time.RFC3339),
	}
}

// ToProjectDTO converts a project model for API responses
func ToProjectDTO(project models.Project) dto.ProjectDTO {
	return dto.ProjectDTO{
		ProjectID:    project.ProjectID,
		UUID:         project.UUID.String(),
		Title:        project.Title,
		Status:       string(project.Status),
		CropName:     project.CropName,
		BarangayID:   project.BarangayID,
		LeadFarmerID: project.LeadFarmerID,
		StartDate:    project.StartDate,
		EndDate:      project.EndDate,
		CreatedAt:    project.CreatedAt.Format(time.RFC3339),
	}
}

// ToTeamDTO converts a team model for API responses
func ToTeamDTO(team models.Team) dto.TeamDTO {
	out := dto.TeamDTO{
		TeamID:       team.TeamID,
		UUID:         team.UUID.String(),
		TeamName:     team.TeamName,
		BarangayID:   team.BarangayID,
		HeadFarmerID: team.HeadFarmerID,
		CreatedAt:    team.CreatedAt.Format(time.RFC3339),
	}
	for _, m := range team.Members {
		member := dto.TeamMemberDTO{FarmerID: m.FarmerID}
		if m.Farmer.ID != 0 {
			member.FarmerName = m.Farmer.FullName()
		}
		out.Members = append(out.Members, member)
	}
	return out
}

// ToTaskDTO converts a task model for API responses
func ToTaskDTO(task models.Task) dto.TaskDTO {
	out := dto.TaskDTO{
		TaskID:      task.TaskID,
		UUID:        task.UUID.String(),
		TaskName:    task.TaskName,
		Status:      string(task.Status),
		ProjectID:   task.ProjectID,
		TeamID:      task.TeamID,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
	}
	for _, s := range task.Subtasks {
		out.Subtasks = append(out.Subtasks, dto.SubtaskDTO{
			ID:          s.ID,
			Name:        s.Name,
			Status:      string(s.Status),
			CompletedAt: s.CompletedAt,
		})
	}
	return out
}

// ToAttendanceDTO converts an attendance record for API responses
func ToAttendanceDTO(record models.AttendanceRecord) dto.AttendanceDTO {
	out := dto.AttendanceDTO{
		ID:         record.ID,
		TaskID:     record.TaskID,
		FarmerID:   record.FarmerID,
		Date:       record.Date,
		Present:    record.Present,
		RecordedBy: record.RecordedBy,
	}
	if record.Remarks != nil {
		out.Remarks = *record.Remarks
	}
	return out
}

// ToHarvestDTO converts a harvest model for API responses
func ToHarvestDTO(harvest models.Harvest) dto.HarvestDTO {
	return dto.HarvestDTO{
		HarvestID:   harvest.HarvestID,
		UUID:        harvest.UUID.String(),
		ProjectID:   harvest.ProjectID,
		TeamID:      harvest.TeamID,
		CropName:    harvest.CropName,
		Quantity:    harvest.Quantity,
		Unit:        harvest.Unit,
		HarvestDate: harvest.HarvestDate,
		RecordedBy:  harvest.RecordedBy,
	}
}

// ToFeedbackDTO converts a feedback model for API responses
func ToFeedbackDTO(feedback models.Feedback) dto.FeedbackDTO {
	return dto.FeedbackDTO{
		FeedbackID:     feedback.FeedbackID,
		UUID:           feedback.UUID.String(),
		TaskID:         feedback.TaskID,
		FarmerID:       feedback.FarmerID,
		Content:        feedback.Content,
		Status:         string(feedback.Status),
		AcknowledgedBy: feedback.AcknowledgedBy,
		AcknowledgedAt: feedback.AcknowledgedAt,
		CreatedAt:      feedback.CreatedAt.Format(time.RFC3339),
	}
}

// ToActivityLogDTO converts an activity log entry for API responses
func ToActivityLogDTO(log models.ActivityLog) dto.ActivityLogDTO {
	out := dto.ActivityLogDTO{
		LogID:     log.LogID,
		Username:  log.Username,
		Role:      log.Role,
		Action:    log.Action,
		Success:   log.Success,
		Timestamp: log.CreatedAt.Format(time.RFC3339),
	}
	if log.Description != nil {
		out.Description = *log.Description
	}
	return out
}
