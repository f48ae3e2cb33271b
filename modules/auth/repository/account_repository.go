package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"slotshare/core/logger"
	"slotshare/modules/auth/entity"

	"github.com/google/uuid"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// nullBytes sends an empty token as NULL so COALESCE keeps the stored value.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// UpsertAccount creates the account on first sign-in and refreshes the
// profile and tokens on later ones. An empty refresh token keeps the stored one.
func (r *AuthRepository) UpsertAccount(ctx context.Context, account *entity.Account) (*entity.Account, error) {
	query := `
		INSERT INTO accounts (id, email, display_name, google_subject, access_token, refresh_token,
			token_expires_at, credential_valid, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET
			display_name     = EXCLUDED.display_name,
			google_subject   = EXCLUDED.google_subject,
			access_token     = EXCLUDED.access_token,
			refresh_token    = COALESCE(EXCLUDED.refresh_token, accounts.refresh_token),
			token_expires_at = EXCLUDED.token_expires_at,
			credential_valid = TRUE,
			last_login_at    = NOW(),
			updated_at       = NOW()
		RETURNING id, email, display_name, google_subject, access_token, refresh_token,
			token_expires_at, credential_valid, last_login_at, created_at, updated_at
	`
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	var saved entity.Account
	err := r.DB.GetContext(ctx, &saved, query,
		account.ID,
		account.Email,
		account.DisplayName,
		account.GoogleSubject,
		account.AccessToken,
		nullBytes(account.RefreshToken),
		account.TokenExpiresAt,
	)
	if err != nil {
		logger.Error("AuthRepository:UpsertAccount:Error", "error", err, "email", account.Email)
		return nil, err
	}
	return &saved, nil
}

func (r *AuthRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var account entity.Account
	query := `
		SELECT id, email, display_name, google_subject, access_token, refresh_token,
			token_expires_at, credential_valid, last_login_at, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	err := r.DB.GetContext(ctx, &account, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		logger.Error("AuthRepository:GetAccountByID:Error", "error", err, "id", id)
		return nil, err
	}
	return &account, nil
}

// UpdateGoogleToken stores a refreshed token pair. An empty refresh token
// keeps the stored one.
func (r *AuthRepository) UpdateGoogleToken(ctx context.Context, id uuid.UUID, accessToken, refreshToken []byte, expiresAt time.Time) error {
	query := `
		UPDATE accounts SET
			access_token     = $2,
			refresh_token    = COALESCE($3, refresh_token),
			token_expires_at = $4,
			updated_at       = NOW()
		WHERE id = $1
	`
	err := r.DB.ExecContext(ctx, query, id, accessToken, nullBytes(refreshToken), expiresAt)
	if err != nil {
		logger.Error("AuthRepository:UpdateGoogleToken:Error", "error", err, "id", id)
		return err
	}
	return nil
}

func (r *AuthRepository) MarkCredentialInvalid(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE accounts SET credential_valid = FALSE, updated_at = NOW() WHERE id = $1`
	err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("AuthRepository:MarkCredentialInvalid:Error", "error", err, "id", id)
		return err
	}
	return nil
}
