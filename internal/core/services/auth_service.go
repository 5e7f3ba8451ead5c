package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loan-backend/internal/adapters/persistence/repositories"
	"loan-backend/internal/config"
	"loan-backend/internal/core/domain"
	"loan-backend/internal/pkg/jwt"
	"loan-backend/internal/pkg/password"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthService handles operator authentication
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      config.JWTConfig
	log      *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg config.JWTConfig, log *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		log:      log,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput represents an issued access token
type LoginOutput struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

// Login checks the operator's credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithField("username", input.Username).Warn("Login failed, unknown user")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !password.Verify(input.Password, user.Password) {
		s.log.WithField("username", input.Username).Warn("Login failed, wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	ttl := time.Duration(s.cfg.AccessTokenMins) * time.Minute
	token, expiresAt, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Role, s.cfg.Secret, ttl)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.log.WithField("username", user.Username).Info("Operator logged in")
	return &LoginOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Username:    user.Username,
		Role:        user.Role,
	}, nil
}
