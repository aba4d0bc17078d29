// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/app/services"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginFlow handles user authentication and session management
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	activityRepo repository.ActivityLogRepository
	seqRepo      repository.SequenceCounterRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	activityRepo repository.ActivityLogRepository,
	seqRepo repository.SequenceCounterRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		seqRepo:      seqRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a user with username/email and password
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if err := lf.validateLoginRequest(request); err != nil {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", err)
	}

	var user *models.User

	resp, err := lf.withLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResponse, error) {
		var err error
		user, err = lf.findUserByIdentifier(ctx, request.Identifier)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		session, err := lf.createSession(ctx, user, metadata)
		if err != nil {
			return nil, err
		}

		if err := lf.userRepo.UpdateLastLogin(ctx, user.ID, utils.UTCNow()); err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			User:    ToAuthUserDTO(*user),
			Session: ToUserSessionDTO(*session),
		}, nil
	})

	actor := actorFromUser(user)
	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = logActivity(ctx, lf.seqRepo, lf.activityRepo, actor, models.ActivityActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("User logged in successfully: %d", resp.User.ID)
	_ = logActivity(ctx, lf.seqRepo, lf.activityRepo, actor, models.ActivityActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// Refresh rotates session tokens using a valid refresh token
func (lf *LoginFlowImpl) Refresh(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	if request.RefreshToken == "" {
		return nil, NewBusinessError("REFRESH_VALIDATION_FAILED", "Refresh token is required", ErrSessionNotFound)
	}

	resp, err := lf.withRefreshTransaction(ctx, func(ctx context.Context) (*dto.RefreshTokenResponse, error) {
		session, err := lf.sessionRepo.ByRefreshToken(ctx, request.RefreshToken)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		if !session.IsValid() {
			return nil, ErrSessionExpired
		}

		user, err := lf.userRepo.ByID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		// Retire the old session record; sessions are immutable, rotation
		// appends a fresh row under the same correlation id.
		if err := lf.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, err
		}

		accessToken, refreshToken, err := lf.tokenService.RefreshToken(request.RefreshToken)
		if err != nil {
			return nil, ErrSessionExpired
		}

		fresh := &models.UserSession{
			UserID:        user.ID,
			CorrelationID: session.CorrelationID,
			SessionToken:  accessToken,
			RefreshToken:  &refreshToken,
			ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
			IsActive:      utils.ToPtr(true),
			IPAddress:     session.IPAddress,
			UserAgent:     session.UserAgent,
		}
		if err := lf.sessionRepo.Save(ctx, fresh); err != nil {
			return nil, err
		}

		return &dto.RefreshTokenResponse{
			User:    ToAuthUserDTO(*user),
			Session: ToUserSessionDTO(*fresh),
		}, nil
	})

	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}
	return resp, nil
}

// Logout expires the session bound to the given token
func (lf *LoginFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	if sessionToken == "" {
		return nil, NewBusinessError("LOGOUT_VALIDATION_FAILED", "Session token is required", ErrSessionNotFound)
	}

	var user *models.User

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		session, err := lf.sessionRepo.BySessionToken(ctx, sessionToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}

		user, err = lf.userRepo.ByID(ctx, session.UserID)
		if err != nil {
			return err
		}

		return lf.sessionRepo.ExpireSession(ctx, session.ID)
	})

	actor := actorFromUser(user)
	if err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	_ = lf.tokenService.RevokeToken(sessionToken)
	_ = logActivity(ctx, lf.seqRepo, lf.activityRepo, actor, models.ActivityActionLogout, "User logged out", true, nil, metadata)

	return &dto.LogoutResponse{
		Message:  "Logged out",
		LoggedAt: utils.UTCNow(),
	}, nil
}

// Private helper methods

func (lf *LoginFlowImpl) findUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	if strings.Contains(identifier, "@") {
		return lf.userRepo.ByEmail(ctx, identifier)
	}
	return lf.userRepo.ByUsername(ctx, identifier)
}

func (lf *LoginFlowImpl) createSession(ctx context.Context, user *models.User, metadata *ClientMetadata) (*models.UserSession, error) {
	accessToken, refreshToken, err := lf.tokenService.GenerateTokens(user.ID, user.Role.RoleName)
	if err != nil {
		return nil, err
	}

	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		UserID:        user.ID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	err = lf.sessionRepo.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func actorFromUser(user *models.User) *Actor {
	if user == nil {
		return nil
	}
	return &Actor{
		UserID:     user.ID,
		Username:   user.Username,
		FullName:   user.FullName(),
		Role:       user.Role.RoleName,
		BarangayID: user.BarangayID,
	}
}

func (lf *LoginFlowImpl) withLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.LoginResponse, error)) (*dto.LoginResponse, error) {
	var result *dto.LoginResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LoginFlowImpl) withRefreshTransaction(ctx context.Context, fn func(context.Context) (*dto.RefreshTokenResponse, error)) (*dto.RefreshTokenResponse, error) {
	var result *dto.RefreshTokenResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LoginFlowImpl) validateLoginRequest(request *dto.LoginRequest) error {
	if request.Identifier == "" {
		return ErrUserNotFound
	}
	if request.Password == "" {
		return ErrIncorrectPassword
	}
	return nil
}
