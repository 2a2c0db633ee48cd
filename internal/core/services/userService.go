package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
)

const revokedKeyPrefix = "revoked:"

type UserService struct {
	userRepo      ports.UserRepository
	tokenService  ports.TokenService
	logger        ports.LoggerPort
	validate      *validator.Validate
	cache         ports.CachePort
	tokenDuration time.Duration
}

func NewUserService(
	userRepo ports.UserRepository,
	tokenService ports.TokenService,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	tokenDuration time.Duration,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		tokenService:  tokenService,
		logger:        logger,
		validate:      validate,
		cache:         cache,
		tokenDuration: tokenDuration,
	}
}

// Register creates a user with role=user. Elevation to admin only happens
// through SetUserRole, driven by an existing admin.
func (s *UserService) Register(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	if err := s.validate.Struct(user); err != nil {
		s.logger.Error("User validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("validation error: password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if user.UserID == uuid.Nil {
		user.UserID = uuid.New()
	}
	user.Role = domain.AppUser
	user.PasswordHash = string(hash)

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		s.logger.Error("Failed to create user", map[string]interface{}{
			"error": err.Error(),
			"email": user.Email,
		})
		return nil, err
	}

	s.logger.Info("User registered", map[string]interface{}{
		"user_id": created.UserID,
	})

	return created, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("Login failed: unknown email", map[string]interface{}{
			"email": email,
		})
		return nil, "", "", domain.ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Login failed: bad password", map[string]interface{}{
			"user_id": user.UserID,
		})
		return nil, "", "", domain.ErrBadCredentials
	}

	access, refresh, err := s.tokenService.IssueTokens(user)
	if err != nil {
		s.logger.Error("Failed to issue tokens", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.UserID,
		})
		return nil, "", "", err
	}

	s.logger.Info("User logged in", map[string]interface{}{
		"user_id": user.UserID,
	})

	return user, access, refresh, nil
}

// Logout revokes the presented token server-side by denylisting its ID for
// the remainder of its lifetime.
func (s *UserService) Logout(ctx context.Context, payload *domain.TokenPayload) error {
	key := revokedKeyPrefix + payload.ID.String()
	if err := s.cache.Set(key, []byte("1"), s.tokenDuration); err != nil {
		s.logger.Error("Failed to revoke token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		return err
	}

	s.logger.Info("User logged out", map[string]interface{}{
		"user_id": payload.UserID,
	})

	return nil
}

// IsTokenRevoked reports whether the token ID is on the logout denylist.
func (s *UserService) IsTokenRevoked(tokenID uuid.UUID) bool {
	_, err := s.cache.Get(revokedKeyPrefix + tokenID.String())
	return err == nil
}

// RequestPasswordReset issues a short-lived reset token for the account.
// Sending it by mail is the caller's concern; an unknown email returns
// success with an empty token so account existence is not probeable.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("Password reset for unknown email", map[string]interface{}{
			"email": email,
		})
		return "", nil
	}

	token, err := s.tokenService.IssueResetToken(user)
	if err != nil {
		s.logger.Error("Failed to issue reset token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.UserID,
		})
		return "", err
	}

	s.logger.Info("Password reset token issued", map[string]interface{}{
		"user_id": user.UserID,
	})

	return token, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userUUID)
	if err != nil {
		s.logger.Error("Failed to get user", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	updated, err := s.userRepo.UpdateUser(ctx, user)
	if err != nil {
		s.logger.Error("Failed to update user", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.UserID,
		})
		return nil, err
	}

	s.logger.Info("User updated", map[string]interface{}{
		"user_id": user.UserID,
	})

	return updated, nil
}

// SetUserRole elevates or demotes an account. Callers must have already
// passed the admin policy check.
func (s *UserService) SetUserRole(ctx context.Context, userID string, role domain.UserRole) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}

	if err := s.userRepo.SetUserRole(ctx, userUUID, role); err != nil {
		s.logger.Error("Failed to set user role", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
			"role":    string(role),
		})
		return err
	}

	s.logger.Info("User role changed", map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
	})

	return nil
}
