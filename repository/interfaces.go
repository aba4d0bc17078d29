// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// SequenceCounterRepository mints monotonically increasing integer identifiers
// per named sequence. Next is atomic: concurrent callers never observe the
// same value for one sequence.
type SequenceCounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
	Initialize(ctx context.Context, names []string) error
	Current(ctx context.Context, name string) (int64, error)
}

// ResourceStockRepository defines operations for inventory stock partitions
type ResourceStockRepository interface {
	Repository[models.ResourceStock, models.ResourceStockFilter]
	ByResourceID(ctx context.Context, kind models.ResourceKind, resourceID int64) (*models.ResourceStock, error)
	ByKey(ctx context.Context, kind models.ResourceKind, name, ownedBy string) (*models.ResourceStock, error)
	ListByOwner(ctx context.Context, kind models.ResourceKind, ownedBy string) ([]*models.ResourceStock, error)
	ListByKind(ctx context.Context, kind models.ResourceKind, limit, offset int) ([]*models.ResourceStock, error)
	UpdateStock(ctx context.Context, id uint, newStock float64, unit string, stockDate time.Time) error
	UpdateMetadata(ctx context.Context, id uint, category, name string) error
	Delete(ctx context.Context, id uint) error
}

// InventoryUsageLogRepository defines operations for the append-only usage log
type InventoryUsageLogRepository interface {
	Repository[models.InventoryUsageLog, models.InventoryUsageLogFilter]
	ByLogID(ctx context.Context, logID int64) (*models.InventoryUsageLog, error)
	ListByResource(ctx context.Context, kind models.ResourceKind, resourceName string, limit, offset int) ([]*models.InventoryUsageLog, error)
	ListByActor(ctx context.Context, actorID uint, limit, offset int) ([]*models.InventoryUsageLog, error)
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]*models.InventoryUsageLog, error)
}

// UserRoleRepository defines operations for user roles
type UserRoleRepository interface {
	Repository[models.UserRole, models.UserRoleFilter]
	ByRoleName(ctx context.Context, roleName string) (*models.UserRole, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	ListByBarangay(ctx context.Context, barangayID uint) ([]*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllUserSessions(ctx context.Context, userID uint) error
	GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.UserSession, error)
}

// ActivityLogRepository defines operations for activity logs
type ActivityLogRepository interface {
	Repository[models.ActivityLog, models.ActivityLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.ActivityLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.ActivityLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.ActivityLog, error)
}

// BarangayRepository defines operations for barangays
type BarangayRepository interface {
	Repository[models.Barangay, models.BarangayFilter]
	ByBarangayID(ctx context.Context, barangayID int64) (*models.Barangay, error)
	ByName(ctx context.Context, name string) (*models.Barangay, error)
	List(ctx context.Context, limit, offset int) ([]*models.Barangay, error)
	CountReferences(ctx context.Context, id uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// ProjectRepository defines operations for projects
type ProjectRepository interface {
	Repository[models.Project, models.ProjectFilter]
	ByProjectID(ctx context.Context, projectID int64) (*models.Project, error)
	ListByBarangay(ctx context.Context, barangayID uint, limit, offset int) ([]*models.Project, error)
	ListByLeadFarmer(ctx context.Context, leadFarmerID uint) ([]*models.Project, error)
	UpdateStatus(ctx context.Context, id uint, status models.ProjectStatus, endDate *time.Time) error
}

// TeamRepository defines operations for teams
type TeamRepository interface {
	Repository[models.Team, models.TeamFilter]
	ByTeamID(ctx context.Context, teamID int64) (*models.Team, error)
	ListByBarangay(ctx context.Context, barangayID uint) ([]*models.Team, error)
	AddMember(ctx context.Context, teamID, farmerID uint) error
	RemoveMember(ctx context.Context, teamID, farmerID uint) error
	ListMembers(ctx context.Context, teamID uint) ([]*models.TeamMember, error)
	MemberTeam(ctx context.Context, farmerID uint) (*models.Team, error)
}

// TaskRepository defines operations for tasks and subtasks
type TaskRepository interface {
	Repository[models.Task, models.TaskFilter]
	ByTaskID(ctx context.Context, taskID int64) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]*models.Task, error)
	ListByTeam(ctx context.Context, teamID uint, limit, offset int) ([]*models.Task, error)
	UpdateStatus(ctx context.Context, id uint, status models.TaskStatus, completedAt *time.Time) error
	SaveSubtask(ctx context.Context, subtask *models.Subtask) error
	ListSubtasks(ctx context.Context, taskID uint) ([]*models.Subtask, error)
	UpdateSubtaskStatus(ctx context.Context, subtaskID uint, status models.TaskStatus, completedAt *time.Time) error
}

// AttendanceRepository defines operations for attendance records
type AttendanceRepository interface {
	Repository[models.AttendanceRecord, models.AttendanceFilter]
	ByTaskFarmerDate(ctx context.Context, taskID, farmerID uint, date time.Time) (*models.AttendanceRecord, error)
	ListByTask(ctx context.Context, taskID uint, date *time.Time) ([]*models.AttendanceRecord, error)
	ListByFarmer(ctx context.Context, farmerID uint, limit, offset int) ([]*models.AttendanceRecord, error)
	Update(ctx context.Context, record *models.AttendanceRecord) error
}

// HarvestRepository defines operations for harvest records
type HarvestRepository interface {
	Repository[models.Harvest, models.HarvestFilter]
	ByHarvestID(ctx context.Context, harvestID int64) (*models.Harvest, error)
	ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]*models.Harvest, error)
	ListByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*models.Harvest, error)
	TotalByCrop(ctx context.Context, cropName string) (float64, error)
}

// FeedbackRepository defines operations for feedback entries
type FeedbackRepository interface {
	Repository[models.Feedback, models.FeedbackFilter]
	ByFeedbackID(ctx context.Context, feedbackID int64) (*models.Feedback, error)
	ListByTask(ctx context.Context, taskID uint, limit, offset int) ([]*models.Feedback, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.Feedback, error)
	Acknowledge(ctx context.Context, id uint, acknowledgedBy uint, at time.Time) error
}
