// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/config"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProjectFlow handles farm project lifecycle. Opening a project caches it as
// the lead farmer's active project so inventory consumption attributes to it.
type ProjectFlow interface {
	Create(ctx context.Context, request *dto.CreateProjectRequest, actor *Actor, metadata *ClientMetadata) (*dto.ProjectDTO, error)
	UpdateStatus(ctx context.Context, projectID int64, request *dto.UpdateProjectStatusRequest, actor *Actor, metadata *ClientMetadata) (*dto.ProjectDTO, error)
	Get(ctx context.Context, projectID int64) (*dto.ProjectDTO, error)
	ListByBarangay(ctx context.Context, barangayID int64, limit, offset int) (*dto.ListProjectsResponse, error)
}

// ProjectFlowImpl implements the project business flow
type ProjectFlowImpl struct {
	projectRepo  repository.ProjectRepository
	barangayRepo repository.BarangayRepository
	userRepo     repository.UserRepository
	seqRepo      repository.SequenceCounterRepository
	activityRepo repository.ActivityLogRepository
	rc           *redis.Client
	cacheConfig  *config.CacheConfig
	db           *gorm.DB
}

// NewProjectFlow creates a new project flow instance
func NewProjectFlow(
	projectRepo repository.ProjectRepository,
	barangayRepo repository.BarangayRepository,
	userRepo repository.UserRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) ProjectFlow {
	return &ProjectFlowImpl{
		projectRepo:  projectRepo,
		barangayRepo: barangayRepo,
		userRepo:     userRepo,
		seqRepo:      seqRepo,
		activityRepo: activityRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
		db:           db,
	}
}

// Create opens a project, mints its display id, and caches it as the lead
// farmer's active project.
func (f *ProjectFlowImpl) Create(ctx context.Context, request *dto.CreateProjectRequest, actor *Actor, metadata *ClientMetadata) (*dto.ProjectDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not open projects", ErrAccessDenied)
	}
	if request.EndDate != nil && request.EndDate.Before(request.StartDate) {
		return nil, NewBusinessError("INVALID_DATE_RANGE", "Start date cannot be after end date", ErrStartDateAfterEndDate)
	}

	var project *models.Project

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		barangay, err := f.barangayRepo.ByBarangayID(ctx, request.BarangayID)
		if err != nil {
			return err
		}
		if barangay == nil {
			return ErrBarangayNotFound
		}

		lead, err := f.userRepo.ByID(ctx, request.LeadFarmerID)
		if err != nil {
			return err
		}
		if lead == nil {
			return ErrUserNotFound
		}

		projectID, err := f.seqRepo.Next(ctx, utils.SeqProjects)
		if err != nil {
			return err
		}

		project = &models.Project{
			ProjectID:    projectID,
			Title:        request.Title,
			Status:       models.ProjectStatusOngoing,
			CropName:     request.CropName,
			BarangayID:   barangay.ID,
			LeadFarmerID: lead.ID,
			StartDate:    request.StartDate,
			EndDate:      request.EndDate,
		}
		return f.projectRepo.Save(ctx, project)
	})

	f.logOutcome(ctx, actor, models.ActivityActionProjectCreated,
		fmt.Sprintf("Opened project %q", request.Title), err, metadata)

	if err != nil {
		return nil, NewBusinessError("CREATE_PROJECT_FAILED", "Failed to create project", err)
	}

	f.cacheActiveProject(ctx, project.LeadFarmerID, project.ProjectID)

	out := ToProjectDTO(*project)
	return &out, nil
}

// UpdateStatus transitions a project and drops the active-project cache entry
// when the project closes.
func (f *ProjectFlowImpl) UpdateStatus(ctx context.Context, projectID int64, request *dto.UpdateProjectStatusRequest, actor *Actor, metadata *ClientMetadata) (*dto.ProjectDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not update projects", ErrAccessDenied)
	}

	status := models.ProjectStatus(request.Status)
	switch status {
	case models.ProjectStatusOngoing, models.ProjectStatusCompleted, models.ProjectStatusCancelled:
	default:
		return nil, NewBusinessError("INVALID_PROJECT_STATUS", "Invalid project status", ErrInvalidProjectStatus)
	}

	var project *models.Project

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		var err error
		project, err = f.projectRepo.ByProjectID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return ErrProjectNotFound
		}

		closedAt := project.EndDate
		if status != models.ProjectStatusOngoing && closedAt == nil {
			closedAt = utils.UTCNowPtr()
		}

		if err := f.projectRepo.UpdateStatus(ctx, project.ID, status, closedAt); err != nil {
			return err
		}

		project.Status = status
		project.EndDate = closedAt
		return nil
	})

	f.logOutcome(ctx, actor, models.ActivityActionProjectUpdated,
		fmt.Sprintf("Project %d transitioned to %s", projectID, request.Status), err, metadata)

	if err != nil {
		return nil, NewBusinessError("UPDATE_PROJECT_FAILED", "Failed to update project", err)
	}

	if status != models.ProjectStatusOngoing {
		f.dropActiveProject(ctx, project.LeadFarmerID)
	}

	out := ToProjectDTO(*project)
	return &out, nil
}

// Get returns a single project by display id
func (f *ProjectFlowImpl) Get(ctx context.Context, projectID int64) (*dto.ProjectDTO, error) {
	project, err := f.projectRepo.ByProjectID(ctx, projectID)
	if err != nil {
		return nil, NewBusinessError("GET_PROJECT_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, NewBusinessError("PROJECT_NOT_FOUND", "Project not found", ErrProjectNotFound)
	}

	out := ToProjectDTO(*project)
	return &out, nil
}

// ListByBarangay returns projects of a barangay, newest first
func (f *ProjectFlowImpl) ListByBarangay(ctx context.Context, barangayID int64, limit, offset int) (*dto.ListProjectsResponse, error) {
	barangay, err := f.barangayRepo.ByBarangayID(ctx, barangayID)
	if err != nil {
		return nil, NewBusinessError("LIST_PROJECTS_FAILED", "Failed to load barangay", err)
	}
	if barangay == nil {
		return nil, NewBusinessError("BARANGAY_NOT_FOUND", "Barangay not found", ErrBarangayNotFound)
	}

	projects, err := f.projectRepo.ListByBarangay(ctx, barangay.ID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_PROJECTS_FAILED", "Failed to list projects", err)
	}
	total, err := f.projectRepo.Count(ctx, models.ProjectFilter{BarangayID: &barangay.ID})
	if err != nil {
		return nil, NewBusinessError("LIST_PROJECTS_FAILED", "Failed to count projects", err)
	}

	out := &dto.ListProjectsResponse{Total: total}
	for _, p := range projects {
		out.Items = append(out.Items, ToProjectDTO(*p))
	}
	return out, nil
}

func (f *ProjectFlowImpl) cacheActiveProject(ctx context.Context, leadFarmerID uint, projectID int64) {
	if f.rc == nil {
		return
	}
	key := activeProjectCacheKey(f.cacheConfig, leadFarmerID)
	_ = f.rc.Set(ctx, key, strconv.FormatInt(projectID, 10), utils.ActiveProjectCacheTTL).Err()
}

func (f *ProjectFlowImpl) dropActiveProject(ctx context.Context, leadFarmerID uint) {
	if f.rc == nil {
		return
	}
	key := activeProjectCacheKey(f.cacheConfig, leadFarmerID)
	_ = f.rc.Del(ctx, key).Err()
}

func (f *ProjectFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}
