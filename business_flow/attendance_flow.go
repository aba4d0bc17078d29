// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"gorm.io/gorm"
)

// AttendanceFlow records farmer presence per task day. Re-recording the same
// farmer, task, and day overwrites the earlier entry instead of duplicating it.
type AttendanceFlow interface {
	Record(ctx context.Context, request *dto.RecordAttendanceRequest, actor *Actor, metadata *ClientMetadata) (*dto.AttendanceDTO, error)
	ListByTask(ctx context.Context, taskID int64, date *time.Time) (*dto.ListAttendanceResponse, error)
	ListByFarmer(ctx context.Context, farmerID uint, limit, offset int) (*dto.ListAttendanceResponse, error)
}

// AttendanceFlowImpl implements the attendance business flow
type AttendanceFlowImpl struct {
	attendanceRepo repository.AttendanceRepository
	taskRepo       repository.TaskRepository
	userRepo       repository.UserRepository
	seqRepo        repository.SequenceCounterRepository
	activityRepo   repository.ActivityLogRepository
	db             *gorm.DB
}

// NewAttendanceFlow creates a new attendance flow instance
func NewAttendanceFlow(
	attendanceRepo repository.AttendanceRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) AttendanceFlow {
	return &AttendanceFlowImpl{
		attendanceRepo: attendanceRepo,
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		seqRepo:        seqRepo,
		activityRepo:   activityRepo,
		db:             db,
	}
}

// Record marks a farmer present or absent for a task day
func (f *AttendanceFlowImpl) Record(ctx context.Context, request *dto.RecordAttendanceRequest, actor *Actor, metadata *ClientMetadata) (*dto.AttendanceDTO, error) {
	var record *models.AttendanceRecord

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		task, err := f.taskRepo.ByTaskID(ctx, request.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}

		farmer, err := f.userRepo.ByID(ctx, request.FarmerID)
		if err != nil {
			return err
		}
		if farmer == nil {
			return ErrUserNotFound
		}

		var remarks *string
		if request.Remarks != "" {
			remarks = &request.Remarks
		}

		existing, err := f.attendanceRepo.ByTaskFarmerDate(ctx, task.ID, farmer.ID, request.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Present = request.Present
			existing.Remarks = remarks
			record = existing
			return f.attendanceRepo.Update(ctx, existing)
		}

		record = &models.AttendanceRecord{
			TaskID:     task.ID,
			FarmerID:   farmer.ID,
			Date:       request.Date,
			Present:    request.Present,
			Remarks:    remarks,
			RecordedBy: actor.UserID,
		}
		return f.attendanceRepo.Save(ctx, record)
	})

	f.logOutcome(ctx, actor, models.ActivityActionAttendanceMarked,
		fmt.Sprintf("Attendance marked for farmer %d on task %d", request.FarmerID, request.TaskID), err, metadata)

	if err != nil {
		return nil, NewBusinessError("RECORD_ATTENDANCE_FAILED", "Failed to record attendance", err)
	}

	out := ToAttendanceDTO(*record)
	return &out, nil
}

// ListByTask returns the attendance sheet of a task, optionally for one day
func (f *AttendanceFlowImpl) ListByTask(ctx context.Context, taskID int64, date *time.Time) (*dto.ListAttendanceResponse, error) {
	task, err := f.taskRepo.ByTaskID(ctx, taskID)
	if err != nil {
		return nil, NewBusinessError("LIST_ATTENDANCE_FAILED", "Failed to load task", err)
	}
	if task == nil {
		return nil, NewBusinessError("TASK_NOT_FOUND", "Task not found", ErrTaskNotFound)
	}

	records, err := f.attendanceRepo.ListByTask(ctx, task.ID, date)
	if err != nil {
		return nil, NewBusinessError("LIST_ATTENDANCE_FAILED", "Failed to list attendance", err)
	}

	out := &dto.ListAttendanceResponse{Total: int64(len(records))}
	for _, r := range records {
		out.Items = append(out.Items, ToAttendanceDTO(*r))
	}
	return out, nil
}

// ListByFarmer returns a farmer's attendance history, newest first
func (f *AttendanceFlowImpl) ListByFarmer(ctx context.Context, farmerID uint, limit, offset int) (*dto.ListAttendanceResponse, error) {
	records, err := f.attendanceRepo.ListByFarmer(ctx, farmerID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_ATTENDANCE_FAILED", "Failed to list attendance", err)
	}
	total, err := f.attendanceRepo.Count(ctx, models.AttendanceFilter{FarmerID: &farmerID})
	if err != nil {
		return nil, NewBusinessError("LIST_ATTENDANCE_FAILED", "Failed to count attendance", err)
	}

	out := &dto.ListAttendanceResponse{Total: total}
	for _, r := range records {
		out.Items = append(out.Items, ToAttendanceDTO(*r))
	}
	return out, nil
}

func (f *AttendanceFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}
