package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is a user who signed in with Google. The Google tokens are stored
// sealed and are never returned to clients.
type Account struct {
	ID              uuid.UUID  `db:"id"`
	Email           string     `db:"email"`
	DisplayName     string     `db:"display_name"`
	GoogleSubject   string     `db:"google_subject"`
	AccessToken     []byte     `db:"access_token"`
	RefreshToken    []byte     `db:"refresh_token"`
	TokenExpiresAt  *time.Time `db:"token_expires_at"`
	CredentialValid bool       `db:"credential_valid"`
	LastLoginAt     *time.Time `db:"last_login_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}
