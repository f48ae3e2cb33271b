package repository

import (
	"context"
	"time"

	"slotshare/core/logger"
)

// SaveOAuthState saves OAuth state token to database
func (r *AuthRepository) SaveOAuthState(ctx context.Context, state string, expiresAt time.Time) error {
	query := `
		INSERT INTO oauth_states (state, expires_at, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (state)
		DO UPDATE SET expires_at = $2
	`
	err := r.DB.ExecContext(ctx, query, state, expiresAt)
	if err != nil {
		logger.Error("AuthRepository:SaveOAuthState:Error", "error", err)
		return err
	}
	return nil
}

// ConsumeOAuthState deletes the state and reports whether it existed and had
// not expired. Each state can be consumed once.
func (r *AuthRepository) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	query := `DELETE FROM oauth_states WHERE state = $1 RETURNING expires_at > NOW()`
	var valid bool
	err := r.DB.QueryRowContext(ctx, query, state).Scan(&valid)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		logger.Error("AuthRepository:ConsumeOAuthState:Error", "error", err)
		return false, err
	}
	return valid, nil
}

// CleanupExpiredOAuthStates removes expired OAuth state tokens
func (r *AuthRepository) CleanupExpiredOAuthStates(ctx context.Context) (int64, error) {
	result, err := r.DB.NamedExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at < :now`, map[string]any{"now": time.Now()})
	if err != nil {
		logger.Error("AuthRepository:CleanupExpiredOAuthStates:Error", "error", err)
		return 0, err
	}
	n, _ := result.RowsAffected()
	return n, nil
}
