// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// FeedbackFlow lets farmers raise issues on tasks and supervisors acknowledge
// them. Acknowledgement is one-way.
type FeedbackFlow interface {
	Submit(ctx context.Context, request *dto.SubmitFeedbackRequest, actor *Actor, metadata *ClientMetadata) (*dto.FeedbackDTO, error)
	Acknowledge(ctx context.Context, feedbackID int64, actor *Actor, metadata *ClientMetadata) (*dto.FeedbackDTO, error)
	ListByTask(ctx context.Context, taskID int64, limit, offset int) (*dto.ListFeedbackResponse, error)
	ListPending(ctx context.Context, limit, offset int) (*dto.ListFeedbackResponse, error)
}

// FeedbackFlowImpl implements the feedback business flow
type FeedbackFlowImpl struct {
	feedbackRepo repository.FeedbackRepository
	taskRepo     repository.TaskRepository
	seqRepo      repository.SequenceCounterRepository
	activityRepo repository.ActivityLogRepository
	db           *gorm.DB
}

// NewFeedbackFlow creates a new feedback flow instance
func NewFeedbackFlow(
	feedbackRepo repository.FeedbackRepository,
	taskRepo repository.TaskRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) FeedbackFlow {
	return &FeedbackFlowImpl{
		feedbackRepo: feedbackRepo,
		taskRepo:     taskRepo,
		seqRepo:      seqRepo,
		activityRepo: activityRepo,
		db:           db,
	}
}

// Submit files a new feedback entry on a task. The submitting actor is
// recorded as the farmer.
func (f *FeedbackFlowImpl) Submit(ctx context.Context, request *dto.SubmitFeedbackRequest, actor *Actor, metadata *ClientMetadata) (*dto.FeedbackDTO, error) {
	var feedback *models.Feedback

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		task, err := f.taskRepo.ByTaskID(ctx, request.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}

		feedbackID, err := f.seqRepo.Next(ctx, utils.SeqFeedback)
		if err != nil {
			return err
		}

		feedback = &models.Feedback{
			FeedbackID: feedbackID,
			TaskID:     task.ID,
			FarmerID:   actor.UserID,
			Content:    request.Content,
			Status:     models.FeedbackStatusPending,
		}
		return f.feedbackRepo.Save(ctx, feedback)
	})

	f.logOutcome(ctx, actor, models.ActivityActionFeedbackSubmitted,
		fmt.Sprintf("Feedback submitted on task %d", request.TaskID), err, metadata)

	if err != nil {
		return nil, NewBusinessError("SUBMIT_FEEDBACK_FAILED", "Failed to submit feedback", err)
	}

	out := ToFeedbackDTO(*feedback)
	return &out, nil
}

// Acknowledge marks a pending feedback entry as seen by a manager. Already
// acknowledged entries are rejected.
func (f *FeedbackFlowImpl) Acknowledge(ctx context.Context, feedbackID int64, actor *Actor, metadata *ClientMetadata) (*dto.FeedbackDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not acknowledge feedback", ErrAccessDenied)
	}

	var feedback *models.Feedback

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		var err error
		feedback, err = f.feedbackRepo.ByFeedbackID(ctx, feedbackID)
		if err != nil {
			return err
		}
		if feedback == nil {
			return ErrFeedbackNotFound
		}
		if feedback.Status != models.FeedbackStatusPending {
			return ErrFeedbackAlreadyAcknowledged
		}

		now := utils.UTCNow()
		if err := f.feedbackRepo.Acknowledge(ctx, feedback.ID, actor.UserID, now); err != nil {
			return err
		}

		feedback.Status = models.FeedbackStatusAcknowledged
		ackBy := actor.UserID
		feedback.AcknowledgedBy = &ackBy
		feedback.AcknowledgedAt = &now
		return nil
	})

	f.logOutcome(ctx, actor, models.ActivityActionFeedbackResolved,
		fmt.Sprintf("Feedback %d acknowledged", feedbackID), err, metadata)

	if err != nil {
		return nil, NewBusinessError("ACKNOWLEDGE_FEEDBACK_FAILED", "Failed to acknowledge feedback", err)
	}

	out := ToFeedbackDTO(*feedback)
	return &out, nil
}

// ListByTask returns the feedback entries of a task, newest first
func (f *FeedbackFlowImpl) ListByTask(ctx context.Context, taskID int64, limit, offset int) (*dto.ListFeedbackResponse, error) {
	task, err := f.taskRepo.ByTaskID(ctx, taskID)
	if err != nil {
		return nil, NewBusinessError("LIST_FEEDBACK_FAILED", "Failed to load task", err)
	}
	if task == nil {
		return nil, NewBusinessError("TASK_NOT_FOUND", "Task not found", ErrTaskNotFound)
	}

	entries, err := f.feedbackRepo.ListByTask(ctx, task.ID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_FEEDBACK_FAILED", "Failed to list feedback", err)
	}
	total, err := f.feedbackRepo.Count(ctx, models.FeedbackFilter{TaskID: &task.ID})
	if err != nil {
		return nil, NewBusinessError("LIST_FEEDBACK_FAILED", "Failed to count feedback", err)
	}

	out := &dto.ListFeedbackResponse{Total: total}
	for _, e := range entries {
		out.Items = append(out.Items, ToFeedbackDTO(*e))
	}
	return out, nil
}

// ListPending returns unacknowledged feedback, oldest first so the queue is
// worked in order.
func (f *FeedbackFlowImpl) ListPending(ctx context.Context, limit, offset int) (*dto.ListFeedbackResponse, error) {
	entries, err := f.feedbackRepo.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_FEEDBACK_FAILED", "Failed to list pending feedback", err)
	}
	pending := models.FeedbackStatusPending
	total, err := f.feedbackRepo.Count(ctx, models.FeedbackFilter{Status: &pending})
	if err != nil {
		return nil, NewBusinessError("LIST_FEEDBACK_FAILED", "Failed to count pending feedback", err)
	}

	out := &dto.ListFeedbackResponse{Total: total}
	for _, e := range entries {
		out.Items = append(out.Items, ToFeedbackDTO(*e))
	}
	return out, nil
}

func (f *FeedbackFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}
