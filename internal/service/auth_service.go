package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/classroom-service/internal/auth"
	"github.com/spec-kit/classroom-service/internal/config"
	"github.com/spec-kit/classroom-service/internal/domain"
	"github.com/spec-kit/classroom-service/internal/events"
	"github.com/spec-kit/classroom-service/internal/repository"
	apperrors "github.com/spec-kit/classroom-service/pkg/util"
)

// AuthService coordinates registration, login and token refresh flows.
// Credential verification happens here; the token layer only mints and
// validates tokens for identities this service has already checked.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. Unknown role tags are rejected here,
// before anything is persisted or a token minted.
func (s *AuthService) Register(ctx context.Context, username, email, password, displayName, roleTag string) (*domain.User, string, time.Time, error) {
	role := domain.RoleStudent
	if roleTag != "" {
		parsed, err := domain.ParseRole(roleTag)
		if err != nil {
			return nil, "", time.Time{}, apperrors.NewValidationError("unknown role", map[string]any{"role": roleTag})
		}
		role = parsed
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("username already taken", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if displayName == "" {
		displayName = username
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, "", time.Time{}, auth.WireError(err)
	}

	s.publish(ctx, events.EventUserRegistered, user, nil)
	return user, token, exp, nil
}

// Login authenticates by username or email and mints a token bound to
// the account's current role.
func (s *AuthService) Login(ctx context.Context, account, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, account)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err = s.users.GetByEmail(ctx, account)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if user.Status != domain.UserStatusActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, "", time.Time{}, auth.WireError(err)
	}

	s.publish(ctx, events.EventUserLoggedIn, user, &events.TokenIssuedPayload{ExpiresAt: exp})
	return user, token, exp, nil
}

// Refresh exchanges an in-grace token for a fresh one. No store lookup:
// identity and role are trusted from the original grant.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (string, time.Time, error) {
	claims, err := s.tokenMgr.VerifyForRefresh(oldToken)
	if err != nil {
		return "", time.Time{}, auth.WireError(err)
	}

	token, exp, err := s.tokenMgr.Issue(claims.Subject, claims.Username, claims.UserRole())
	if err != nil {
		return "", time.Time{}, auth.WireError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:   uuid.NewString(),
			Type: events.EventTokenRefreshed,
			Actor: events.Actor{
				UserID:   claims.Subject,
				Username: claims.Username,
				Role:     claims.UserRole(),
			},
			Timestamp: time.Now(),
			Payload:   &events.TokenIssuedPayload{ExpiresAt: exp},
		})
	}
	return token, exp, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// GetUser loads an account by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:   uuid.NewString(),
		Type: eventType,
		Actor: events.Actor{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
