// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// HarvestFlow records crop yield against ongoing projects
type HarvestFlow interface {
	Record(ctx context.Context, request *dto.RecordHarvestRequest, actor *Actor, metadata *ClientMetadata) (*dto.HarvestDTO, error)
	ListByProject(ctx context.Context, projectID int64, limit, offset int) (*dto.ListHarvestsResponse, error)
	SummaryByCrop(ctx context.Context, cropName, unit string) (*dto.HarvestSummaryResponse, error)
	Export(ctx context.Context, projectID int64) (string, []byte, error)
}

// HarvestFlowImpl implements the harvest business flow
type HarvestFlowImpl struct {
	harvestRepo  repository.HarvestRepository
	projectRepo  repository.ProjectRepository
	teamRepo     repository.TeamRepository
	seqRepo      repository.SequenceCounterRepository
	activityRepo repository.ActivityLogRepository
	db           *gorm.DB
}

// NewHarvestFlow creates a new harvest flow instance
func NewHarvestFlow(
	harvestRepo repository.HarvestRepository,
	projectRepo repository.ProjectRepository,
	teamRepo repository.TeamRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) HarvestFlow {
	return &HarvestFlowImpl{
		harvestRepo:  harvestRepo,
		projectRepo:  projectRepo,
		teamRepo:     teamRepo,
		seqRepo:      seqRepo,
		activityRepo: activityRepo,
		db:           db,
	}
}

// Record logs harvested produce against an ongoing project. The crop name is
// inherited from the project.
func (f *HarvestFlowImpl) Record(ctx context.Context, request *dto.RecordHarvestRequest, actor *Actor, metadata *ClientMetadata) (*dto.HarvestDTO, error) {
	if request.Quantity <= 0 {
		return nil, NewBusinessError("INVALID_QUANTITY", "Harvest quantity must be greater than zero", ErrInvalidQuantity)
	}

	var harvest *models.Harvest

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		project, err := f.projectRepo.ByProjectID(ctx, request.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return ErrProjectNotFound
		}
		if !project.IsOpen() {
			return ErrProjectClosed
		}

		var teamPK *uint
		if request.TeamID != nil {
			team, err := f.teamRepo.ByTeamID(ctx, *request.TeamID)
			if err != nil {
				return err
			}
			if team == nil {
				return ErrTeamNotFound
			}
			teamPK = &team.ID
		}

		harvestID, err := f.seqRepo.Next(ctx, utils.SeqHarvests)
		if err != nil {
			return err
		}

		harvest = &models.Harvest{
			HarvestID:   harvestID,
			ProjectID:   project.ID,
			TeamID:      teamPK,
			CropName:    project.CropName,
			Quantity:    request.Quantity,
			Unit:        request.Unit,
			HarvestDate: request.HarvestDate,
			RecordedBy:  actor.UserID,
		}
		return f.harvestRepo.Save(ctx, harvest)
	})

	f.logOutcome(ctx, actor, models.ActivityActionHarvestRecorded,
		fmt.Sprintf("Recorded %.2f %s harvest for project %d", request.Quantity, request.Unit, request.ProjectID), err, metadata)

	if err != nil {
		return nil, NewBusinessError("RECORD_HARVEST_FAILED", "Failed to record harvest", err)
	}

	out := ToHarvestDTO(*harvest)
	return &out, nil
}

// ListByProject returns the harvests of a project, newest first
func (f *HarvestFlowImpl) ListByProject(ctx context.Context, projectID int64, limit, offset int) (*dto.ListHarvestsResponse, error) {
	project, err := f.projectRepo.ByProjectID(ctx, projectID)
	if err != nil {
		return nil, NewBusinessError("LIST_HARVESTS_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, NewBusinessError("PROJECT_NOT_FOUND", "Project not found", ErrProjectNotFound)
	}

	harvests, err := f.harvestRepo.ListByProject(ctx, project.ID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_HARVESTS_FAILED", "Failed to list harvests", err)
	}
	total, err := f.harvestRepo.Count(ctx, models.HarvestFilter{ProjectID: &project.ID})
	if err != nil {
		return nil, NewBusinessError("LIST_HARVESTS_FAILED", "Failed to count harvests", err)
	}

	out := &dto.ListHarvestsResponse{Total: total}
	for _, h := range harvests {
		out.Items = append(out.Items, ToHarvestDTO(*h))
	}
	return out, nil
}

// SummaryByCrop aggregates total harvested quantity for one crop
func (f *HarvestFlowImpl) SummaryByCrop(ctx context.Context, cropName, unit string) (*dto.HarvestSummaryResponse, error) {
	total, err := f.harvestRepo.TotalByCrop(ctx, cropName)
	if err != nil {
		return nil, NewBusinessError("HARVEST_SUMMARY_FAILED", "Failed to aggregate harvests", err)
	}

	return &dto.HarvestSummaryResponse{
		CropName: cropName,
		Total:    total,
		Unit:     unit,
	}, nil
}

// Export builds an Excel workbook of a project's harvests and returns the
// file name and contents.
func (f *HarvestFlowImpl) Export(ctx context.Context, projectID int64) (string, []byte, error) {
	project, err := f.projectRepo.ByProjectID(ctx, projectID)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_HARVESTS_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return "", nil, NewBusinessError("PROJECT_NOT_FOUND", "Project not found", ErrProjectNotFound)
	}

	harvests, err := f.harvestRepo.ListByProject(ctx, project.ID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_HARVESTS_FAILED", "Failed to fetch harvests", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"harvest_id", "crop_name", "quantity", "unit", "harvest_date", "recorded_by"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, h := range harvests {
		record := []string{
			strconv.FormatInt(h.HarvestID, 10),
			h.CropName,
			strconv.FormatFloat(h.Quantity, 'f', -1, 64),
			h.Unit,
			h.HarvestDate.UTC().Format(time.RFC3339),
			strconv.FormatUint(uint64(h.RecordedBy), 10),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("harvests_%d.xlsx", projectID)
	return filename, buf.Bytes(), nil
}

func (f *HarvestFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}
