package dto

import "github.com/yigit/unitime/internal/app/models"

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"instructor@school.edu.tr"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// TokenResponse returns the issued access token
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int          `json:"expiresIn" example:"3600"`
	User        *models.User `json:"user"`
}
