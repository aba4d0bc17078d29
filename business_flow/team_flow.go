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

// TeamFlow handles team formation and membership. A farmer belongs to at most
// one team at a time.
type TeamFlow interface {
	Create(ctx context.Context, request *dto.CreateTeamRequest, actor *Actor, metadata *ClientMetadata) (*dto.TeamDTO, error)
	AddMember(ctx context.Context, teamID int64, request *dto.AddTeamMemberRequest, actor *Actor, metadata *ClientMetadata) (*dto.TeamDTO, error)
	RemoveMember(ctx context.Context, teamID int64, farmerID uint, actor *Actor, metadata *ClientMetadata) error
	Get(ctx context.Context, teamID int64) (*dto.TeamDTO, error)
	ListByBarangay(ctx context.Context, barangayID int64) (*dto.ListTeamsResponse, error)
}

// TeamFlowImpl implements the team business flow
type TeamFlowImpl struct {
	teamRepo     repository.TeamRepository
	barangayRepo repository.BarangayRepository
	userRepo     repository.UserRepository
	seqRepo      repository.SequenceCounterRepository
	activityRepo repository.ActivityLogRepository
	db           *gorm.DB
}

// NewTeamFlow creates a new team flow instance
func NewTeamFlow(
	teamRepo repository.TeamRepository,
	barangayRepo repository.BarangayRepository,
	userRepo repository.UserRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) TeamFlow {
	return &TeamFlowImpl{
		teamRepo:     teamRepo,
		barangayRepo: barangayRepo,
		userRepo:     userRepo,
		seqRepo:      seqRepo,
		activityRepo: activityRepo,
		db:           db,
	}
}

// Create forms a team under a head farmer and enrolls the initial members
func (f *TeamFlowImpl) Create(ctx context.Context, request *dto.CreateTeamRequest, actor *Actor, metadata *ClientMetadata) (*dto.TeamDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not form teams", ErrAccessDenied)
	}

	var team *models.Team

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		barangay, err := f.barangayRepo.ByBarangayID(ctx, request.BarangayID)
		if err != nil {
			return err
		}
		if barangay == nil {
			return ErrBarangayNotFound
		}

		head, err := f.userRepo.ByID(ctx, request.HeadFarmerID)
		if err != nil {
			return err
		}
		if head == nil {
			return ErrUserNotFound
		}

		teamID, err := f.seqRepo.Next(ctx, utils.SeqTeams)
		if err != nil {
			return err
		}

		team = &models.Team{
			TeamID:       teamID,
			TeamName:     request.TeamName,
			BarangayID:   barangay.ID,
			HeadFarmerID: head.ID,
		}
		if err := f.teamRepo.Save(ctx, team); err != nil {
			return err
		}

		for _, farmerID := range request.MemberIDs {
			if err := f.enroll(ctx, team.ID, farmerID); err != nil {
				return err
			}
		}
		return nil
	})

	f.logOutcome(ctx, actor, models.ActivityActionTeamCreated,
		fmt.Sprintf("Formed team %q", request.TeamName), err, metadata)

	if err != nil {
		return nil, NewBusinessError("CREATE_TEAM_FAILED", "Failed to create team", err)
	}

	return f.Get(ctx, team.TeamID)
}

// AddMember links a farmer to the team
func (f *TeamFlowImpl) AddMember(ctx context.Context, teamID int64, request *dto.AddTeamMemberRequest, actor *Actor, metadata *ClientMetadata) (*dto.TeamDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not manage team membership", ErrAccessDenied)
	}

	var team *models.Team

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		var err error
		team, err = f.teamRepo.ByTeamID(ctx, teamID)
		if err != nil {
			return err
		}
		if team == nil {
			return ErrTeamNotFound
		}

		return f.enroll(ctx, team.ID, request.FarmerID)
	})

	f.logOutcome(ctx, actor, models.ActivityActionTeamUpdated,
		fmt.Sprintf("Added farmer %d to team %d", request.FarmerID, teamID), err, metadata)

	if err != nil {
		return nil, NewBusinessError("ADD_MEMBER_FAILED", "Failed to add team member", err)
	}

	return f.Get(ctx, teamID)
}

// RemoveMember unlinks a farmer from the team
func (f *TeamFlowImpl) RemoveMember(ctx context.Context, teamID int64, farmerID uint, actor *Actor, metadata *ClientMetadata) error {
	if !actor.CanManageInventory() {
		return NewBusinessError("ACCESS_DENIED", "Role may not manage team membership", ErrAccessDenied)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		team, err := f.teamRepo.ByTeamID(ctx, teamID)
		if err != nil {
			return err
		}
		if team == nil {
			return ErrTeamNotFound
		}

		current, err := f.teamRepo.MemberTeam(ctx, farmerID)
		if err != nil {
			return err
		}
		if current == nil || current.ID != team.ID {
			return ErrFarmerNotInTeam
		}

		return f.teamRepo.RemoveMember(ctx, team.ID, farmerID)
	})

	f.logOutcome(ctx, actor, models.ActivityActionTeamUpdated,
		fmt.Sprintf("Removed farmer %d from team %d", farmerID, teamID), err, metadata)

	if err != nil {
		return NewBusinessError("REMOVE_MEMBER_FAILED", "Failed to remove team member", err)
	}
	return nil
}

// Get returns a single team with its members
func (f *TeamFlowImpl) Get(ctx context.Context, teamID int64) (*dto.TeamDTO, error) {
	team, err := f.teamRepo.ByTeamID(ctx, teamID)
	if err != nil {
		return nil, NewBusinessError("GET_TEAM_FAILED", "Failed to load team", err)
	}
	if team == nil {
		return nil, NewBusinessError("TEAM_NOT_FOUND", "Team not found", ErrTeamNotFound)
	}

	members, err := f.teamRepo.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, NewBusinessError("GET_TEAM_FAILED", "Failed to load team members", err)
	}
	team.Members = team.Members[:0]
	for _, m := range members {
		team.Members = append(team.Members, *m)
	}

	out := ToTeamDTO(*team)
	return &out, nil
}

// ListByBarangay returns teams of a barangay ordered by name
func (f *TeamFlowImpl) ListByBarangay(ctx context.Context, barangayID int64) (*dto.ListTeamsResponse, error) {
	barangay, err := f.barangayRepo.ByBarangayID(ctx, barangayID)
	if err != nil {
		return nil, NewBusinessError("LIST_TEAMS_FAILED", "Failed to load barangay", err)
	}
	if barangay == nil {
		return nil, NewBusinessError("BARANGAY_NOT_FOUND", "Barangay not found", ErrBarangayNotFound)
	}

	teams, err := f.teamRepo.ListByBarangay(ctx, barangay.ID)
	if err != nil {
		return nil, NewBusinessError("LIST_TEAMS_FAILED", "Failed to list teams", err)
	}

	out := &dto.ListTeamsResponse{Total: int64(len(teams))}
	for _, t := range teams {
		out.Items = append(out.Items, ToTeamDTO(*t))
	}
	return out, nil
}

// enroll verifies the farmer exists and is not already on a team, then links
// them.
func (f *TeamFlowImpl) enroll(ctx context.Context, teamPK uint, farmerID uint) error {
	farmer, err := f.userRepo.ByID(ctx, farmerID)
	if err != nil {
		return err
	}
	if farmer == nil {
		return ErrUserNotFound
	}

	current, err := f.teamRepo.MemberTeam(ctx, farmerID)
	if err != nil {
		return err
	}
	if current != nil {
		return ErrFarmerAlreadyInTeam
	}

	return f.teamRepo.AddMember(ctx, teamPK, farmerID)
}

func (f *TeamFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}
