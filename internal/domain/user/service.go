// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles authentication and the signed-in user's own account
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	logger          *logrus.Logger
	newSessionID    func() string
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		logger:          logger,
		newSessionID:    uuid.NewString,
	}
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change by the account owner
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User      *User  `json:"user"`
	SessionID string `json:"session_id"`
	auth.TokenPair
}

// Login authenticates a user and opens a new cart session
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user User
	result := s.db.Where("email = ? AND is_active = ?", email, true).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", result.Error)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		s.logger.WithField("user_id", user.ID).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	sessionID := s.newSessionID()
	tokens, err := s.jwtManager.GenerateTokenPair(identityOf(&user, sessionID))
	if err != nil {
		return nil, err
	}

	// Update last login
	now := time.Now().UTC()
	if err := s.db.Model(&User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"role":       user.Role,
		"session_id": sessionID,
	}).Info("User logged in")

	return &AuthResponse{
		User:      &user,
		SessionID: sessionID,
		TokenPair: *tokens,
	}, nil
}

// RefreshToken issues new tokens for the session carried by the refresh token.
// The role is read again so role changes apply on the next refresh.
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	var user User
	result := s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserInactive
		}
		return nil, fmt.Errorf("failed to find user: %w", result.Error)
	}

	tokens, err := s.jwtManager.GenerateTokenPair(identityOf(&user, claims.SessionID))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:      &user,
		SessionID: claims.SessionID,
		TokenPair: *tokens,
	}, nil
}

// ValidateAccessToken parses an access token for the auth middleware
func (s *Service) ValidateAccessToken(token string) (*auth.Claims, error) {
	return s.jwtManager.ValidateAccessToken(token)
}

// GetProfile gets an active user by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var user User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", result.Error)
	}
	return &user, nil
}

// ChangePassword changes user password after verifying current password
func (s *Service) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if err := s.passwordManager.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.db.Model(&User{}).Where("id = ?", userID).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("Password changed")
	return nil
}

func identityOf(user *User, sessionID string) auth.Identity {
	return auth.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		SessionID: sessionID,
	}
}
