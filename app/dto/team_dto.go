package dto

// CreateTeamRequest represents the request to form a farming team
type CreateTeamRequest struct {
	TeamName     string `json:"team_name" validate:"required,min=2,max=150" example:"Team Masipag"`
	BarangayID   int64  `json:"barangay_id" validate:"required,gt=0" example:"4"`
	HeadFarmerID uint   `json:"head_farmer_id" validate:"required,gt=0" example:"15"`
	MemberIDs    []uint `json:"member_ids" validate:"omitempty,dive,gt=0" example:"16,17,18"`
}

// AddTeamMemberRequest links a farmer to a team
type AddTeamMemberRequest struct {
	FarmerID uint `json:"farmer_id" validate:"required,gt=0" example:"19"`
}

// TeamMemberDTO represents a team member in API responses
type TeamMemberDTO struct {
	FarmerID   uint   `json:"farmer_id" example:"16"`
	FarmerName string `json:"farmer_name" example:"Maria Santos"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	TeamID       int64           `json:"team_id" example:"5"`
	UUID         string          `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	TeamName     string          `json:"team_name" example:"Team Masipag"`
	BarangayID   uint            `json:"barangay_id" example:"4"`
	HeadFarmerID uint            `json:"head_farmer_id" example:"15"`
	Members      []TeamMemberDTO `json:"members,omitempty"`
	CreatedAt    string          `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ListTeamsResponse wraps a page of teams
type ListTeamsResponse struct {
	Items []TeamDTO `json:"items"`
	Total int64     `json:"total" example:"2"`
}

// Common error codes for team operations
const (
	ErrorTeamNotFound        = "TEAM_NOT_FOUND"
	ErrorFarmerAlreadyInTeam = "FARMER_ALREADY_IN_TEAM"
	ErrorFarmerNotInTeam     = "FARMER_NOT_IN_TEAM"
)
