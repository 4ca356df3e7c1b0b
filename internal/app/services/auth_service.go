package services

import (
	"context"

	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/pkg/apperrors"
	"github.com/yigit/unitime/internal/pkg/auth"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// AuthService handles login and token issuance
type AuthService struct {
	userRepo   *repositories.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repositories.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login verifies credentials and returns a signed access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	// Same error for unknown email, wrong password and inactive account
	if user == nil || !user.IsActive || !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to update last login timestamp")
	}

	logger.Info().Int64("userId", user.ID).Str("roleType", string(user.RoleType)).Msg("User logged in")

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		User:        user,
	}, nil
}
