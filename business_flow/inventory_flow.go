// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/config"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// InventoryFlow handles stock registration, replenishment, and consumption.
// Consumption appends an immutable usage log entry in the same transaction
// that adjusts the stock level.
type InventoryFlow interface {
	RegisterResource(ctx context.Context, request *dto.RegisterResourceRequest, actor *Actor, metadata *ClientMetadata) (*dto.RegisterResourceResponse, error)
	Replenish(ctx context.Context, request *dto.ReplenishStockRequest, actor *Actor, metadata *ClientMetadata) (*dto.ReplenishStockResponse, error)
	Consume(ctx context.Context, request *dto.ConsumeStockRequest, actor *Actor, metadata *ClientMetadata) (*dto.ConsumeStockResponse, error)
	GetStock(ctx context.Context, kind string, resourceID int64) (*dto.GetStockResponse, error)
	ListByOwner(ctx context.Context, kind, ownedBy string) (*dto.ListStockResponse, error)
	ListUsageLogs(ctx context.Context, filter models.InventoryUsageLogFilter, limit, offset int) (*dto.ListUsageLogsResponse, error)
	ExportUsageLogs(ctx context.Context, projectID string) (string, []byte, error)
	DeleteResource(ctx context.Context, kind string, resourceID int64, actor *Actor, metadata *ClientMetadata) error
}

// InventoryFlowImpl implements the inventory business flow
type InventoryFlowImpl struct {
	stockRepo    repository.ResourceStockRepository
	usageRepo    repository.InventoryUsageLogRepository
	seqRepo      repository.SequenceCounterRepository
	activityRepo repository.ActivityLogRepository
	projectRepo  repository.ProjectRepository
	rc           *redis.Client
	cacheConfig  *config.CacheConfig
	db           *gorm.DB
}

// NewInventoryFlow creates a new inventory flow instance
func NewInventoryFlow(
	stockRepo repository.ResourceStockRepository,
	usageRepo repository.InventoryUsageLogRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	projectRepo repository.ProjectRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) InventoryFlow {
	return &InventoryFlowImpl{
		stockRepo:    stockRepo,
		usageRepo:    usageRepo,
		seqRepo:      seqRepo,
		activityRepo: activityRepo,
		projectRepo:  projectRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
		db:           db,
	}
}

// RegisterResource creates a stock record for a resource type not yet tracked
// and mints its display id from the per-kind sequence.
func (f *InventoryFlowImpl) RegisterResource(ctx context.Context, request *dto.RegisterResourceRequest, actor *Actor, metadata *ClientMetadata) (*dto.RegisterResourceResponse, error) {
	kind := models.ResourceKind(request.Kind)
	if !models.ValidResourceKind(kind) {
		return nil, NewBusinessError("INVALID_RESOURCE_KIND", "Invalid resource kind", ErrInvalidResourceKind)
	}
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not register resources", ErrAccessDenied)
	}
	if request.Quantity < 0 || !finiteQuantity(request.Quantity) {
		return nil, NewBusinessError("INVALID_QUANTITY", "Initial quantity must be a finite non-negative number", ErrInvalidQuantity)
	}

	resp, err := runInTx(ctx, f.db, func(ctx context.Context) (*dto.RegisterResourceResponse, error) {
		existing, err := f.stockRepo.ByKey(ctx, kind, request.Name, request.OwnedBy)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateResource
		}

		resourceID, err := f.seqRepo.Next(ctx, kind.SequenceName())
		if err != nil {
			return nil, err
		}

		stock := &models.ResourceStock{
			ResourceID:   resourceID,
			Kind:         kind,
			Category:     request.Category,
			Name:         request.Name,
			OwnedBy:      request.OwnedBy,
			CurrentStock: request.Quantity,
			Unit:         request.Unit,
			StockDate:    utils.UTCNow(),
		}
		if err := f.stockRepo.Save(ctx, stock); err != nil {
			return nil, err
		}

		return &dto.RegisterResourceResponse{
			Message: "Resource registered",
			Stock:   ToResourceStockDTO(*stock),
		}, nil
	})

	f.logOutcome(ctx, actor, models.ActivityActionResourceCreated,
		fmt.Sprintf("Registered %s %q owned by %s", request.Kind, request.Name, request.OwnedBy), err, metadata)

	if err != nil {
		return nil, NewBusinessError("REGISTER_RESOURCE_FAILED", "Failed to register resource", err)
	}
	return resp, nil
}

// Replenish adds quantity to an existing stock record and refreshes its stock
// date. The quantity must be strictly positive.
func (f *InventoryFlowImpl) Replenish(ctx context.Context, request *dto.ReplenishStockRequest, actor *Actor, metadata *ClientMetadata) (*dto.ReplenishStockResponse, error) {
	kind := models.ResourceKind(request.Kind)
	if !models.ValidResourceKind(kind) {
		return nil, NewBusinessError("INVALID_RESOURCE_KIND", "Invalid resource kind", ErrInvalidResourceKind)
	}
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not replenish stock", ErrAccessDenied)
	}
	if request.Quantity <= 0 || !finiteQuantity(request.Quantity) {
		return nil, NewBusinessError("INVALID_QUANTITY", "Replenish quantity must be a finite number greater than zero", ErrInvalidQuantity)
	}

	resp, err := runInTx(ctx, f.db, func(ctx context.Context) (*dto.ReplenishStockResponse, error) {
		stock, err := f.stockRepo.ByResourceID(ctx, kind, request.ResourceID)
		if err != nil {
			return nil, err
		}
		if stock == nil {
			return nil, ErrResourceNotFound
		}

		previous := stock.CurrentStock
		newStock := previous + request.Quantity
		unit := stock.Unit
		if request.Unit != "" {
			unit = request.Unit
		}
		stockDate := utils.UTCNow()

		if err := f.stockRepo.UpdateStock(ctx, stock.ID, newStock, unit, stockDate); err != nil {
			return nil, err
		}

		// A replenishment may carry corrections to the descriptive fields
		if request.Category != "" || request.Name != "" {
			if err := f.stockRepo.UpdateMetadata(ctx, stock.ID, request.Category, request.Name); err != nil {
				return nil, err
			}
			if request.Category != "" {
				stock.Category = request.Category
			}
			if request.Name != "" {
				stock.Name = request.Name
			}
		}

		stock.CurrentStock = newStock
		stock.Unit = unit
		stock.StockDate = stockDate

		return &dto.ReplenishStockResponse{
			Message:  "Stock replenished",
			Stock:    ToResourceStockDTO(*stock),
			Previous: previous,
		}, nil
	})

	f.logOutcome(ctx, actor, models.ActivityActionStockReplenished,
		fmt.Sprintf("Replenished %s resource %d by %.2f", request.Kind, request.ResourceID, request.Quantity), err, metadata)

	if err != nil {
		return nil, NewBusinessError("REPLENISH_FAILED", "Failed to replenish stock", err)
	}
	return resp, nil
}

// Consume validates a consumption request, deducts stock for loss statuses,
// and appends the immutable usage log entry. Stock write and log append share
// one transaction so the ledger never drifts from the stock level.
//
// Used items are logged but not deducted; they return through their own
// replenishment cycle. Damaged and Missing represent loss and are deducted.
func (f *InventoryFlowImpl) Consume(ctx context.Context, request *dto.ConsumeStockRequest, actor *Actor, metadata *ClientMetadata) (*dto.ConsumeStockResponse, error) {
	kind := models.ResourceKind(request.Kind)
	status := models.UsageStatus(request.Status)

	if !models.ValidResourceKind(kind) {
		return nil, NewBusinessError("INVALID_RESOURCE_KIND", "Invalid resource kind", ErrInvalidResourceKind)
	}
	if !models.ValidUsageStatus(status) {
		return nil, NewBusinessError("INVALID_USAGE_STATUS", "Invalid usage status", ErrInvalidUsageStatus)
	}
	if request.Quantity <= 0 || !finiteQuantity(request.Quantity) {
		return nil, NewBusinessError("INVALID_QUANTITY", "Consume quantity must be a finite number greater than zero", ErrInvalidQuantity)
	}
	if status.RequiresDetails() && request.Details == "" {
		return nil, NewBusinessError("MISSING_DETAILS", "Details are required for damaged or missing items", ErrMissingDetails)
	}

	// Resolve project attribution outside the transaction; a cache miss falls
	// back to the database and must not hold locks.
	projectID := f.activeProject(ctx, actor)

	resp, err := runInTx(ctx, f.db, func(ctx context.Context) (*dto.ConsumeStockResponse, error) {
		stock, err := f.stockRepo.ByResourceID(ctx, kind, request.ResourceID)
		if err != nil {
			return nil, err
		}
		if stock == nil {
			return nil, ErrResourceNotFound
		}
		if request.Quantity > stock.CurrentStock {
			return nil, ErrInsufficientStock
		}

		if status.DeductsStock() {
			newStock := stock.CurrentStock - request.Quantity
			if err := f.stockRepo.UpdateStock(ctx, stock.ID, newStock, stock.Unit, stock.StockDate); err != nil {
				return nil, err
			}
			stock.CurrentStock = newStock
		}

		logID, err := f.seqRepo.Next(ctx, utils.SeqUsageLogs)
		if err != nil {
			return nil, err
		}

		entry := &models.InventoryUsageLog{
			LogID:        logID,
			ResourceName: stock.Name,
			Kind:         stock.Kind,
			Quantity:     request.Quantity,
			Unit:         stock.Unit,
			Status:       status,
			Details:      request.Details,
			ActorID:      actor.UserID,
			ActorName:    actor.FullName,
			ProjectID:    projectID,
		}
		if err := f.usageRepo.Save(ctx, entry); err != nil {
			return nil, err
		}

		return &dto.ConsumeStockResponse{
			Message:  "Stock updated",
			Stock:    ToResourceStockDTO(*stock),
			UsageLog: ToUsageLogDTO(*entry),
		}, nil
	})

	f.logOutcome(ctx, actor, models.ActivityActionStockConsumed,
		fmt.Sprintf("Consumed %.2f of %s resource %d as %s", request.Quantity, request.Kind, request.ResourceID, request.Status), err, metadata)

	if err != nil {
		return nil, NewBusinessError("CONSUME_FAILED", "Failed to consume stock", err)
	}
	return resp, nil
}

// GetStock returns a single stock record by kind and display id
func (f *InventoryFlowImpl) GetStock(ctx context.Context, kind string, resourceID int64) (*dto.GetStockResponse, error) {
	k := models.ResourceKind(kind)
	if !models.ValidResourceKind(k) {
		return nil, NewBusinessError("INVALID_RESOURCE_KIND", "Invalid resource kind", ErrInvalidResourceKind)
	}

	stock, err := f.stockRepo.ByResourceID(ctx, k, resourceID)
	if err != nil {
		return nil, NewBusinessError("GET_STOCK_FAILED", "Failed to load stock", err)
	}
	if stock == nil {
		return nil, NewBusinessError("RESOURCE_NOT_FOUND", "Resource not found", ErrResourceNotFound)
	}

	return &dto.GetStockResponse{Stock: ToResourceStockDTO(*stock)}, nil
}

// ListByOwner returns the stock partition of one owner, ordered by name
func (f *InventoryFlowImpl) ListByOwner(ctx context.Context, kind, ownedBy string) (*dto.ListStockResponse, error) {
	k := models.ResourceKind(kind)
	if !models.ValidResourceKind(k) {
		return nil, NewBusinessError("INVALID_RESOURCE_KIND", "Invalid resource kind", ErrInvalidResourceKind)
	}

	stocks, err := f.stockRepo.ListByOwner(ctx, k, ownedBy)
	if err != nil {
		return nil, NewBusinessError("LIST_STOCK_FAILED", "Failed to list stock", err)
	}

	out := &dto.ListStockResponse{Total: int64(len(stocks))}
	for _, s := range stocks {
		out.Items = append(out.Items, ToResourceStockDTO(*s))
	}
	return out, nil
}

// ListUsageLogs returns usage log entries matching the filter, newest first
func (f *InventoryFlowImpl) ListUsageLogs(ctx context.Context, filter models.InventoryUsageLogFilter, limit, offset int) (*dto.ListUsageLogsResponse, error) {
	logs, err := f.usageRepo.ByFilter(ctx, filter, "created_at DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_USAGE_LOGS_FAILED", "Failed to list usage logs", err)
	}
	total, err := f.usageRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_USAGE_LOGS_FAILED", "Failed to count usage logs", err)
	}

	out := &dto.ListUsageLogsResponse{Total: total}
	for _, l := range logs {
		out.Items = append(out.Items, ToUsageLogDTO(*l))
	}
	return out, nil
}

// ExportUsageLogs builds an Excel workbook of the usage log entries attributed
// to one project and returns the file name and contents.
func (f *InventoryFlowImpl) ExportUsageLogs(ctx context.Context, projectID string) (string, []byte, error) {
	logs, err := f.usageRepo.ListByProject(ctx, projectID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_USAGE_LOGS_FAILED", "Failed to fetch usage logs", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"log_id", "resource_name", "kind", "quantity", "unit", "status", "details", "actor", "project_id", "timestamp"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, l := range logs {
		record := []string{
			strconv.FormatInt(l.LogID, 10),
			l.ResourceName,
			string(l.Kind),
			strconv.FormatFloat(l.Quantity, 'f', -1, 64),
			l.Unit,
			string(l.Status),
			l.Details,
			l.ActorName,
			l.ProjectID,
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("usage_logs_%s.xlsx", projectID)
	return filename, buf.Bytes(), nil
}

// DeleteResource soft-deletes a stock record. Usage logs referencing the
// resource remain untouched.
func (f *InventoryFlowImpl) DeleteResource(ctx context.Context, kind string, resourceID int64, actor *Actor, metadata *ClientMetadata) error {
	k := models.ResourceKind(kind)
	if !models.ValidResourceKind(k) {
		return NewBusinessError("INVALID_RESOURCE_KIND", "Invalid resource kind", ErrInvalidResourceKind)
	}
	if !actor.CanManageInventory() {
		return NewBusinessError("ACCESS_DENIED", "Role may not delete resources", ErrAccessDenied)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		stock, err := f.stockRepo.ByResourceID(ctx, k, resourceID)
		if err != nil {
			return err
		}
		if stock == nil {
			return ErrResourceNotFound
		}
		return f.stockRepo.Delete(ctx, stock.ID)
	})

	f.logOutcome(ctx, actor, models.ActivityActionResourceDeleted,
		fmt.Sprintf("Deleted %s resource %d", kind, resourceID), err, metadata)

	if err != nil {
		return NewBusinessError("DELETE_RESOURCE_FAILED", "Failed to delete resource", err)
	}
	return nil
}

// activeProject resolves the project a consumption is attributed to. It reads
// the cached active project for the actor, falls back to the newest ongoing
// project the actor leads, and settles on the General sentinel when neither
// exists. The fallback result is cached with a bounded TTL.
func (f *InventoryFlowImpl) activeProject(ctx context.Context, actor *Actor) string {
	key := activeProjectCacheKey(f.cacheConfig, actor.UserID)

	if f.rc != nil {
		if v, err := f.rc.Get(ctx, key).Result(); err == nil && v != "" {
			return v
		}
	}

	status := models.ProjectStatusOngoing
	projects, err := f.projectRepo.ByFilter(ctx, models.ProjectFilter{
		LeadFarmerID: &actor.UserID,
		Status:       &status,
	}, "created_at DESC", 1, 0)
	if err != nil || len(projects) == 0 {
		return utils.GeneralProject
	}

	projectID := strconv.FormatInt(projects[0].ProjectID, 10)
	if f.rc != nil {
		_ = f.rc.Set(ctx, key, projectID, utils.ActiveProjectCacheTTL).Err()
	}
	return projectID
}

func (f *InventoryFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}

// runInTx runs fn inside one transaction and returns its response once the
// commit succeeds.
func runInTx[T any](ctx context.Context, db *gorm.DB, fn func(context.Context) (*T, error)) (*T, error) {
	var result *T

	err := repository.WithTransaction(ctx, db, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// finiteQuantity rejects NaN and the infinities; either written into
// current_stock would poison every later comparison against it.
func finiteQuantity(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0)
}

// activeProjectCacheKey derives the per-user cache key, honoring the
// configured redis prefix when present.
func activeProjectCacheKey(cfg *config.CacheConfig, userID uint) string {
	base := utils.ActiveProjectCacheKey
	if cfg != nil && cfg.RedisPrefix != "" {
		base = cfg.RedisPrefix + ":" + base
	}
	return fmt.Sprintf("%s:%d", base, userID)
}
