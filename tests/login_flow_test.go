// Package tests contains integration tests for login flow
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/app/services"
	businessflow "github.com/Zarcastral/farmops/business_flow"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	testingutil "github.com/Zarcastral/farmops/testing"
	"github.com/Zarcastral/farmops/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		require.NoError(t, fixtures.InsertDefaultRoles())

		userRepo := repository.NewUserRepository(testDB.DB)
		sessionRepo := repository.NewUserSessionRepository(testDB.DB)
		activityRepo := repository.NewActivityLogRepository(testDB.DB)
		seqRepo := repository.NewSequenceCounterRepository(testDB.DB)

		require.NoError(t, seqRepo.Initialize(context.Background(), utils.AllSequences))

		tokenService, err := services.NewTokenService(
			1*time.Hour, 24*time.Hour,
			"farmops-test", "farmops-test-api",
			false, "", "",
			"test-secret-key-that-is-long-enough-123",
		)
		require.NoError(t, err)

		loginFlow := businessflow.NewLoginFlow(
			userRepo,
			sessionRepo,
			activityRepo,
			seqRepo,
			tokenService,
			testDB.DB,
		)

		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("SuccessfulLoginWithUsername", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			loginReq := &dto.LoginRequest{
				Identifier: user.Username,
				Password:   "TestPass123!",
			}

			result, err := loginFlow.Login(context.Background(), loginReq, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, user.ID, result.User.ID)
			assert.Equal(t, user.Username, result.User.Username)
			assert.Equal(t, models.RoleFarmer, result.User.Role)
			assert.True(t, utils.IsTrue(result.User.IsActive))

			assert.NotEmpty(t, result.Session.SessionToken)
			require.NotNil(t, result.Session.RefreshToken)
			assert.NotEmpty(t, *result.Session.RefreshToken)
			assert.Equal(t, "Bearer", result.Session.TokenType)

			// Last login is stamped inside the same transaction
			fresh, err := userRepo.ByID(context.Background(), user.ID)
			require.NoError(t, err)
			require.NotNil(t, fresh.LastLoginAt)
		})

		t.Run("SuccessfulLoginWithEmail", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleSupervisor, nil)
			require.NoError(t, err)

			result, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Identifier: user.Email,
				Password:   "TestPass123!",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, user.ID, result.User.ID)
		})

		t.Run("UserNotFound", func(t *testing.T) {
			_, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Identifier: "nonexistent@example.com",
				Password:   "TestPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("IncorrectPassword", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			_, err = loginFlow.Login(context.Background(), &dto.LoginRequest{
				Identifier: user.Username,
				Password:   "WrongPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("InactiveAccountRejected", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			err = testDB.DB.Model(&models.User{}).Where("id = ?", user.ID).
				Update("is_active", false).Error
			require.NoError(t, err)

			_, err = loginFlow.Login(context.Background(), &dto.LoginRequest{
				Identifier: user.Username,
				Password:   "TestPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("FailedLoginIsAudited", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			_, err = loginFlow.Login(context.Background(), &dto.LoginRequest{
				Identifier: user.Username,
				Password:   "WrongPass123!",
			}, metadata)
			require.Error(t, err)

			logs, err := activityRepo.ListByUser(context.Background(), user.ID, 10, 0)
			require.NoError(t, err)
			require.NotEmpty(t, logs)
			assert.Equal(t, models.ActivityActionLoginFailed, logs[0].Action)
			assert.False(t, utils.IsTrue(logs[0].Success))
		})

		t.Run("RefreshRotatesSession", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleHeadFarmer, nil)
			require.NoError(t, err)

			loginResult, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Identifier: user.Username,
				Password:   "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			refreshResult, err := loginFlow.Refresh(context.Background(), &dto.RefreshTokenRequest{
				RefreshToken: *loginResult.Session.RefreshToken,
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, user.ID, refreshResult.User.ID)
			assert.NotEqual(t, loginResult.Session.SessionToken, refreshResult.Session.SessionToken)

			// The old session row is retired on rotation
			old, err := sessionRepo.BySessionToken(context.Background(), loginResult.Session.SessionToken)
			require.NoError(t, err)
			if old != nil {
				assert.False(t, old.IsValid())
			}
		})

		t.Run("RefreshWithUnknownTokenRejected", func(t *testing.T) {
			_, err := loginFlow.Refresh(context.Background(), &dto.RefreshTokenRequest{
				RefreshToken: "not-a-real-refresh-token",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		t.Run("LogoutExpiresSession", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleFarmer, nil)
			require.NoError(t, err)

			loginResult, err := loginFlow.Login(context.Background(), &dto.LoginRequest{
				Identifier: user.Username,
				Password:   "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			logoutResult, err := loginFlow.Logout(context.Background(), loginResult.Session.SessionToken, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Logged out", logoutResult.Message)

			session, err := sessionRepo.BySessionToken(context.Background(), loginResult.Session.SessionToken)
			require.NoError(t, err)
			if session != nil {
				assert.False(t, session.IsValid())
			}
		})

		t.Run("LogoutWithUnknownTokenRejected", func(t *testing.T) {
			_, err := loginFlow.Logout(context.Background(), "unknown-session-token", metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		return nil
	})

	require.NoError(t, err)
}
