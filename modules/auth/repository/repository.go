package repository

import (
	"context"
	"time"

	"slotshare/core/database"
	"slotshare/modules/auth/entity"

	"github.com/google/uuid"
)

// AuthRepository handles account and OAuth state persistence
type AuthRepository struct {
	DB database.IDatabase
}

func NewAuthRepository(db database.IDatabase) *AuthRepository {
	return &AuthRepository{DB: db}
}

type AuthRepositoryInterface interface {
	// ========================================
	// Account Operations
	// ========================================
	UpsertAccount(ctx context.Context, account *entity.Account) (*entity.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	UpdateGoogleToken(ctx context.Context, id uuid.UUID, accessToken, refreshToken []byte, expiresAt time.Time) error
	MarkCredentialInvalid(ctx context.Context, id uuid.UUID) error

	// ========================================
	// OAuth State Operations
	// ========================================
	SaveOAuthState(ctx context.Context, state string, expiresAt time.Time) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
	CleanupExpiredOAuthStates(ctx context.Context) (int64, error)
}
