package repository

import (
	"context"
	"errors"

	"github.com/Zarcastral/farmops/models"
	"gorm.io/gorm"
)

// TeamRepositoryImpl implements TeamRepository
type TeamRepositoryImpl struct {
	*BaseRepository[models.Team, models.TeamFilter]
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &TeamRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Team, models.TeamFilter](db),
	}
}

// ByTeamID finds a team by its minted display id
func (r *TeamRepositoryImpl) ByTeamID(ctx context.Context, teamID int64) (*models.Team, error) {
	db := r.getDB(ctx)
	var team models.Team
	err := db.Preload("Members").Where("team_id = ?", teamID).Last(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

// ListByBarangay returns teams of a barangay ordered by name
func (r *TeamRepositoryImpl) ListByBarangay(ctx context.Context, barangayID uint) ([]*models.Team, error) {
	db := r.getDB(ctx)
	var teams []*models.Team
	err := db.Where("barangay_id = ?", barangayID).
		Order("team_name ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember links a farmer to a team
func (r *TeamRepositoryImpl) AddMember(ctx context.Context, teamID, farmerID uint) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	member := &models.TeamMember{TeamID: teamID, FarmerID: farmerID}
	err = db.Create(member).Error
	return err
}

// RemoveMember unlinks a farmer from a team
func (r *TeamRepositoryImpl) RemoveMember(ctx context.Context, teamID, farmerID uint) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	err = db.Where("team_id = ? AND farmer_id = ?", teamID, farmerID).
		Delete(&models.TeamMember{}).Error
	return err
}

// ListMembers returns the member links of a team
func (r *TeamRepositoryImpl) ListMembers(ctx context.Context, teamID uint) ([]*models.TeamMember, error) {
	db := r.getDB(ctx)
	var members []*models.TeamMember
	err := db.Preload("Farmer").Where("team_id = ?", teamID).Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// MemberTeam returns the team a farmer currently belongs to, nil when none
func (r *TeamRepositoryImpl) MemberTeam(ctx context.Context, farmerID uint) (*models.Team, error) {
	db := r.getDB(ctx)

	var member models.TeamMember
	err := db.Where("farmer_id = ?", farmerID).Last(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.ByID(ctx, member.TeamID)
}

// ByFilter retrieves teams matching the filter criteria
func (r *TeamRepositoryImpl) ByFilter(ctx context.Context, filter models.TeamFilter, orderBy string, limit, offset int) ([]*models.Team, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db, filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var teams []*models.Team
	if err := query.Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Count returns the number of teams matching the filter
func (r *TeamRepositoryImpl) Count(ctx context.Context, filter models.TeamFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.Team{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any team matches the filter
func (r *TeamRepositoryImpl) Exists(ctx context.Context, filter models.TeamFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TeamRepositoryImpl) applyFilter(db *gorm.DB, filter models.TeamFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.TeamID != nil {
		db = db.Where("team_id = ?", *filter.TeamID)
	}
	if filter.TeamName != nil {
		db = db.Where("team_name = ?", *filter.TeamName)
	}
	if filter.BarangayID != nil {
		db = db.Where("barangay_id = ?", *filter.BarangayID)
	}
	if filter.HeadFarmerID != nil {
		db = db.Where("head_farmer_id = ?", *filter.HeadFarmerID)
	}
	return db
}
