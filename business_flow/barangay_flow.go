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

// BarangayFlow handles barangay registration and maintenance
type BarangayFlow interface {
	Create(ctx context.Context, request *dto.CreateBarangayRequest, actor *Actor, metadata *ClientMetadata) (*dto.BarangayDTO, error)
	Update(ctx context.Context, barangayID int64, request *dto.UpdateBarangayRequest, actor *Actor, metadata *ClientMetadata) (*dto.BarangayDTO, error)
	Delete(ctx context.Context, barangayID int64, actor *Actor, metadata *ClientMetadata) error
	Get(ctx context.Context, barangayID int64) (*dto.BarangayDTO, error)
	List(ctx context.Context, limit, offset int) (*dto.ListBarangaysResponse, error)
}

// BarangayFlowImpl implements the barangay business flow
type BarangayFlowImpl struct {
	barangayRepo repository.BarangayRepository
	seqRepo      repository.SequenceCounterRepository
	activityRepo repository.ActivityLogRepository
	db           *gorm.DB
}

// NewBarangayFlow creates a new barangay flow instance
func NewBarangayFlow(
	barangayRepo repository.BarangayRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) BarangayFlow {
	return &BarangayFlowImpl{
		barangayRepo: barangayRepo,
		seqRepo:      seqRepo,
		activityRepo: activityRepo,
		db:           db,
	}
}

// Create registers a barangay and mints its display id
func (f *BarangayFlowImpl) Create(ctx context.Context, request *dto.CreateBarangayRequest, actor *Actor, metadata *ClientMetadata) (*dto.BarangayDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not manage barangays", ErrAccessDenied)
	}

	var barangay *models.Barangay

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		existing, err := f.barangayRepo.ByName(ctx, request.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrBarangayNameTaken
		}

		barangayID, err := f.seqRepo.Next(ctx, utils.SeqBarangays)
		if err != nil {
			return err
		}

		barangay = &models.Barangay{
			BarangayID:   barangayID,
			Name:         request.Name,
			Municipality: request.Municipality,
			Province:     request.Province,
		}
		return f.barangayRepo.Save(ctx, barangay)
	})

	f.logOutcome(ctx, actor, models.ActivityActionBarangayCreated,
		fmt.Sprintf("Created barangay %q", request.Name), err, metadata)

	if err != nil {
		return nil, NewBusinessError("CREATE_BARANGAY_FAILED", "Failed to create barangay", err)
	}

	out := ToBarangayDTO(*barangay)
	return &out, nil
}

// Update renames a barangay or moves it administratively
func (f *BarangayFlowImpl) Update(ctx context.Context, barangayID int64, request *dto.UpdateBarangayRequest, actor *Actor, metadata *ClientMetadata) (*dto.BarangayDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not manage barangays", ErrAccessDenied)
	}

	var barangay *models.Barangay

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		var err error
		barangay, err = f.barangayRepo.ByBarangayID(ctx, barangayID)
		if err != nil {
			return err
		}
		if barangay == nil {
			return ErrBarangayNotFound
		}

		if request.Name != nil && *request.Name != barangay.Name {
			taken, err := f.barangayRepo.ByName(ctx, *request.Name)
			if err != nil {
				return err
			}
			if taken != nil {
				return ErrBarangayNameTaken
			}
			barangay.Name = *request.Name
		}
		if request.Municipality != nil {
			barangay.Municipality = *request.Municipality
		}
		if request.Province != nil {
			barangay.Province = *request.Province
		}
		barangay.UpdatedAt = utils.UTCNow()

		return f.barangayRepo.Save(ctx, barangay)
	})

	f.logOutcome(ctx, actor, models.ActivityActionBarangayUpdated,
		fmt.Sprintf("Updated barangay %d", barangayID), err, metadata)

	if err != nil {
		return nil, NewBusinessError("UPDATE_BARANGAY_FAILED", "Failed to update barangay", err)
	}

	out := ToBarangayDTO(*barangay)
	return &out, nil
}

// Delete removes a barangay that no user or project references
func (f *BarangayFlowImpl) Delete(ctx context.Context, barangayID int64, actor *Actor, metadata *ClientMetadata) error {
	if !actor.CanManageInventory() {
		return NewBusinessError("ACCESS_DENIED", "Role may not manage barangays", ErrAccessDenied)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		barangay, err := f.barangayRepo.ByBarangayID(ctx, barangayID)
		if err != nil {
			return err
		}
		if barangay == nil {
			return ErrBarangayNotFound
		}

		refs, err := f.barangayRepo.CountReferences(ctx, barangay.ID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrBarangayReferenced
		}

		return f.barangayRepo.Delete(ctx, barangay.ID)
	})

	f.logOutcome(ctx, actor, models.ActivityActionBarangayDeleted,
		fmt.Sprintf("Deleted barangay %d", barangayID), err, metadata)

	if err != nil {
		return NewBusinessError("DELETE_BARANGAY_FAILED", "Failed to delete barangay", err)
	}
	return nil
}

// Get returns a single barangay by display id
func (f *BarangayFlowImpl) Get(ctx context.Context, barangayID int64) (*dto.BarangayDTO, error) {
	barangay, err := f.barangayRepo.ByBarangayID(ctx, barangayID)
	if err != nil {
		return nil, NewBusinessError("GET_BARANGAY_FAILED", "Failed to load barangay", err)
	}
	if barangay == nil {
		return nil, NewBusinessError("BARANGAY_NOT_FOUND", "Barangay not found", ErrBarangayNotFound)
	}

	out := ToBarangayDTO(*barangay)
	return &out, nil
}

// List returns barangays ordered by name
func (f *BarangayFlowImpl) List(ctx context.Context, limit, offset int) (*dto.ListBarangaysResponse, error) {
	barangays, err := f.barangayRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_BARANGAYS_FAILED", "Failed to list barangays", err)
	}
	total, err := f.barangayRepo.Count(ctx, models.BarangayFilter{})
	if err != nil {
		return nil, NewBusinessError("LIST_BARANGAYS_FAILED", "Failed to count barangays", err)
	}

	out := &dto.ListBarangaysResponse{Total: total}
	for _, b := range barangays {
		out.Items = append(out.Items, ToBarangayDTO(*b))
	}
	return out, nil
}

func (f *BarangayFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}
