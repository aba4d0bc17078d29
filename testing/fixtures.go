// Package testing provides test utilities and database setup for testing the farm operations system
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// InsertDefaultRoles inserts the built-in access levels
func (tf *TestFixtures) InsertDefaultRoles() error {
	roles := []*models.UserRole{
		{RoleName: models.RoleAdmin, DisplayName: "Administrator"},
		{RoleName: models.RoleSupervisor, DisplayName: "Supervisor"},
		{RoleName: models.RoleFarmPresident, DisplayName: "Farm President"},
		{RoleName: models.RoleHeadFarmer, DisplayName: "Head Farmer"},
		{RoleName: models.RoleFarmer, DisplayName: "Farmer"},
	}

	for _, role := range roles {
		if err := tf.DB.DB.Create(role).Error; err != nil {
			return fmt.Errorf("failed to insert role %s: %w", role.RoleName, err)
		}
	}

	return nil
}

// CreateTestBarangay creates a barangay with a unique name and display id
func (tf *TestFixtures) CreateTestBarangay() (*models.Barangay, error) {
	n := mrand.Intn(900000) + 100000
	barangay := &models.Barangay{
		BarangayID:   int64(n),
		Name:         fmt.Sprintf("Barangay %d", n),
		Municipality: "Santa Rosa",
		Province:     "Laguna",
	}

	if err := tf.DB.DB.Create(barangay).Error; err != nil {
		return nil, fmt.Errorf("failed to create test barangay: %w", err)
	}

	return barangay, nil
}

// CreateTestUser creates an active user with the given role, scoped to the
// barangay when one is provided
func (tf *TestFixtures) CreateTestUser(roleName string, barangayID *uint) (*models.User, error) {
	var role models.UserRole
	err := tf.DB.DB.Where("role_name = ?", roleName).Last(&role).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find role %s: %w", roleName, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", mrand.Intn(900000000)+100000000)

	user := &models.User{
		RoleID:       role.ID,
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Username:     fmt.Sprintf("juan.%s.%s", roleName, randomDigits),
		Email:        fmt.Sprintf("juan.%s.%s@example.com", roleName, randomDigits),
		Contact:      fmt.Sprintf("+639%s", randomDigits),
		PasswordHash: string(hashedPassword),
		BarangayID:   barangayID,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	// Reload with role preloaded for callers that inspect permissions
	if err := tf.DB.DB.Preload("Role").Last(user, user.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload test user: %w", err)
	}

	return user, nil
}

// CreateTestStock creates a stock partition with the given balance
func (tf *TestFixtures) CreateTestStock(kind models.ResourceKind, name, ownedBy string, current float64) (*models.ResourceStock, error) {
	stock := &models.ResourceStock{
		ResourceID:   int64(mrand.Intn(900000) + 100000),
		Kind:         kind,
		Category:     "General",
		Name:         name,
		OwnedBy:      ownedBy,
		CurrentStock: current,
		Unit:         "kg",
		StockDate:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(stock).Error; err != nil {
		return nil, fmt.Errorf("failed to create test stock: %w", err)
	}

	return stock, nil
}

// CreateTestProject creates an ongoing project in the given barangay
func (tf *TestFixtures) CreateTestProject(barangayID, leadFarmerID uint) (*models.Project, error) {
	n := mrand.Intn(900000) + 100000
	project := &models.Project{
		ProjectID:    int64(n),
		Title:        fmt.Sprintf("Palay Planting %d", n),
		Status:       models.ProjectStatusOngoing,
		CropName:     "Palay",
		BarangayID:   barangayID,
		LeadFarmerID: leadFarmerID,
		StartDate:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create test project: %w", err)
	}

	return project, nil
}

// CreateTestTeam creates a team led by the given head farmer
func (tf *TestFixtures) CreateTestTeam(barangayID, headFarmerID uint) (*models.Team, error) {
	n := mrand.Intn(900000) + 100000
	team := &models.Team{
		TeamID:       int64(n),
		TeamName:     fmt.Sprintf("Team %d", n),
		BarangayID:   barangayID,
		HeadFarmerID: headFarmerID,
	}

	if err := tf.DB.DB.Create(team).Error; err != nil {
		return nil, fmt.Errorf("failed to create test team: %w", err)
	}

	return team, nil
}

// CreateTestTask creates a pending task under the given project
func (tf *TestFixtures) CreateTestTask(projectID uint, teamID *uint) (*models.Task, error) {
	n := mrand.Intn(900000) + 100000
	task := &models.Task{
		TaskID:    int64(n),
		TaskName:  fmt.Sprintf("Land Preparation %d", n),
		Status:    models.TaskStatusPending,
		ProjectID: projectID,
		TeamID:    teamID,
	}

	if err := tf.DB.DB.Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create test task: %w", err)
	}

	return task, nil
}

// GenerateSecureToken returns a URL-safe random token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for the given user
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}
