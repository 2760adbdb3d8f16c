// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"github.com/your-org/saree-store/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles registration, sign-in and profiles
type Service struct {
	db              *gorm.DB
	logger          *logrus.Logger
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:              db,
		logger:          logger,
		passwordManager: auth.NewPasswordManager(cfg.Security.BcryptCost),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required,max=100"`
	LastName        string `json:"last_name" binding:"max=100"`
	Phone           string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User *User `json:"user"`
	*auth.TokenPair
}

// Register creates a new customer account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperror.NewValidationError("confirm_password", "passwords do not match")
	}

	hashed, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		var verr *apperror.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, apperror.NewValidationError("password", err.Error())
	}

	db := s.db.WithContext(ctx)
	email := NormalizeEmail(req.Email)

	var existing int64
	if err := db.Model(&User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("user with this email already exists: %w", apperror.ErrConflict)
	}

	now := time.Now().UTC()
	user := User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		IsActive:     true,
		LastLoginAt:  &now,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return s.issue(&user)
}

// Login verifies credentials and returns fresh tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	db := s.db.WithContext(ctx)

	var user User
	err := db.Where("email = ? AND is_active = ?", NormalizeEmail(req.Email), true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return s.issue(&user)
}

// RefreshToken exchanges a refresh token for a new pair
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperror.ErrUnauthorized)
	}

	var user User
	err = s.db.WithContext(ctx).Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found or inactive: %w", apperror.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issue(&user)
}

// GetProfile retrieves a user by id
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}

// JWTManager exposes the token manager for the auth middleware
func (s *Service) JWTManager() *auth.JWTManager {
	return s.jwtManager
}

func (s *Service) issue(user *User) (*AuthResponse, error) {
	pair, err := s.jwtManager.IssuePair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, TokenPair: pair}, nil
}
