// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
)

// ActivityLogFlow exposes the audit trail to administrators
type ActivityLogFlow interface {
	List(ctx context.Context, filter models.ActivityLogFilter, limit, offset int) (*dto.ListActivityLogsResponse, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) (*dto.ListActivityLogsResponse, error)
	ListFailed(ctx context.Context, limit, offset int) (*dto.ListActivityLogsResponse, error)
}

// ActivityLogFlowImpl implements the activity log flow
type ActivityLogFlowImpl struct {
	activityRepo repository.ActivityLogRepository
}

// NewActivityLogFlow creates a new activity log flow instance
func NewActivityLogFlow(activityRepo repository.ActivityLogRepository) ActivityLogFlow {
	return &ActivityLogFlowImpl{activityRepo: activityRepo}
}

// List returns a filtered page of audit entries, newest first
func (f *ActivityLogFlowImpl) List(ctx context.Context, filter models.ActivityLogFilter, limit, offset int) (*dto.ListActivityLogsResponse, error) {
	logs, err := f.activityRepo.ByFilter(ctx, filter, "created_at DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_ACTIVITY_LOGS_FAILED", "Failed to list activity logs", err)
	}
	total, err := f.activityRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_ACTIVITY_LOGS_FAILED", "Failed to count activity logs", err)
	}

	out := &dto.ListActivityLogsResponse{Total: total}
	for _, l := range logs {
		out.Items = append(out.Items, ToActivityLogDTO(*l))
	}
	return out, nil
}

// ListByUser returns one user's audit entries, newest first
func (f *ActivityLogFlowImpl) ListByUser(ctx context.Context, userID uint, limit, offset int) (*dto.ListActivityLogsResponse, error) {
	logs, err := f.activityRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_ACTIVITY_LOGS_FAILED", "Failed to list activity logs", err)
	}

	out := &dto.ListActivityLogsResponse{Total: int64(len(logs))}
	for _, l := range logs {
		out.Items = append(out.Items, ToActivityLogDTO(*l))
	}
	return out, nil
}

// ListFailed returns audit entries for failed operations, newest first
func (f *ActivityLogFlowImpl) ListFailed(ctx context.Context, limit, offset int) (*dto.ListActivityLogsResponse, error) {
	logs, err := f.activityRepo.ListFailedActions(ctx, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_ACTIVITY_LOGS_FAILED", "Failed to list activity logs", err)
	}

	out := &dto.ListActivityLogsResponse{Total: int64(len(logs))}
	for _, l := range logs {
		out.Items = append(out.Items, ToActivityLogDTO(*l))
	}
	return out, nil
}
