package dto

import (
	"time"

	"github.com/google/uuid"
)

type GoogleAuthURLResponse struct {
	URL string `json:"url"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Account      AccountResponse `json:"account"`
}

type AccountResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

// SessionInfo describes the caller's sign-in state. CredentialValid turns
// false once Google rejects the stored refresh token.
type SessionInfo struct {
	Authenticated   bool      `json:"authenticated"`
	UserID          uuid.UUID `json:"user_id"`
	UserEmail       string    `json:"user_email"`
	DisplayName     string    `json:"display_name"`
	CredentialValid bool      `json:"credential_valid"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}
