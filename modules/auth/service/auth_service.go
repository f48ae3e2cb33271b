package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"slotshare/core/cache"
	"slotshare/core/config"
	"slotshare/core/constants"
	"slotshare/core/errors"
	"slotshare/core/logger"
	"slotshare/core/utils"
	"slotshare/modules/auth/dto"
	"slotshare/modules/auth/entity"
	"slotshare/modules/auth/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"
)

type AuthServiceInterface interface {
	GetGoogleAuthURL(ctx context.Context) (*dto.GoogleAuthURLResponse, *errors.AppError)
	HandleGoogleCallback(ctx context.Context, code string, state string) (*dto.LoginResponse, *errors.AppError)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, *errors.AppError)
	Session(ctx context.Context, userID uuid.UUID) (*dto.SessionInfo, *errors.AppError)
	Logout(ctx context.Context, claims *utils.TokenClaims, token string) *errors.AppError
	TokenSource(ctx context.Context, userID uuid.UUID) (oauth2.TokenSource, *errors.AppError)
	MarkCredentialInvalid(ctx context.Context, userID uuid.UUID)
	CleanupExpiredOAuthStates(ctx context.Context) (int64, error)
	OnLogout(fn func(userID uuid.UUID))
}

type AuthService struct {
	repo   repository.AuthRepositoryInterface
	cache  cache.Cache
	sealer *utils.Sealer
	oauth  *oauth2.Config

	// extra client options for the userinfo call, set by tests
	profileOptions []option.ClientOption

	hooksMu     sync.RWMutex
	logoutHooks []func(uuid.UUID)
}

// Scopes requested at sign-in. Offline access is requested separately.
var Scopes = []string{
	oauth2api.OpenIDScope,
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	calendar.CalendarReadonlyScope,
	people.DirectoryReadonlyScope,
}

func NewAuthService(repo repository.AuthRepositoryInterface, cache cache.Cache, sealer *utils.Sealer, cfg config.GoogleAPIConfig) *AuthService {
	return &AuthService{
		repo:   repo,
		cache:  cache,
		sealer: sealer,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

func (service *AuthService) configured() bool {
	return service.oauth.ClientID != "" && service.oauth.ClientSecret != "" && service.oauth.RedirectURL != ""
}

// OnLogout registers fn to run after a user signs out.
func (service *AuthService) OnLogout(fn func(userID uuid.UUID)) {
	service.hooksMu.Lock()
	defer service.hooksMu.Unlock()
	service.logoutHooks = append(service.logoutHooks, fn)
}

func (service *AuthService) GetGoogleAuthURL(ctx context.Context) (*dto.GoogleAuthURLResponse, *errors.AppError) {
	if !service.configured() {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Google OAuth configuration is missing", nil)
	}

	// Generate state token for CSRF protection
	state := utils.GenerateRandomString(32)
	expiresAt := time.Now().Add(constants.OAuthStateTTL)
	if err := service.repo.SaveOAuthState(ctx, state, expiresAt); err != nil {
		logger.Error("AuthService:GetGoogleAuthURL:SaveOAuthState:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to store state token", err)
	}

	authURL := service.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return &dto.GoogleAuthURLResponse{URL: authURL}, nil
}

// HandleGoogleCallback completes the OAuth flow, stores the sealed Google
// tokens on the account and issues our own JWT pair.
func (service *AuthService) HandleGoogleCallback(ctx context.Context, code string, state string) (*dto.LoginResponse, *errors.AppError) {
	valid, err := service.repo.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to validate state token", err)
	}
	if !valid {
		logger.Warn("AuthService:HandleGoogleCallback:InvalidState")
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid or expired state token. Please sign in again", nil)
	}

	token, err := service.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:Exchange:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "failed to exchange authorization code", err)
	}

	profile, err := service.fetchProfile(ctx, token)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:FetchProfile:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to get user info", err)
	}
	if profile.Email == "" {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Google account has no email address", nil)
	}

	sealedAccess, err := service.sealer.Seal(token.AccessToken)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to seal access token", err)
	}
	sealedRefresh, err := service.sealer.Seal(token.RefreshToken)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to seal refresh token", err)
	}

	expiresAt := token.Expiry
	account, err := service.repo.UpsertAccount(ctx, &entity.Account{
		Email:          strings.ToLower(profile.Email),
		DisplayName:    profile.Name,
		GoogleSubject:  profile.Id,
		AccessToken:    sealedAccess,
		RefreshToken:   sealedRefresh,
		TokenExpiresAt: &expiresAt,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to save account", err)
	}

	logger.Info("AuthService:HandleGoogleCallback:SignedIn",
		"user_id", account.ID,
		"has_refresh_token", token.RefreshToken != "",
		"expires_at", expiresAt)

	return service.issueTokens(account.ID, account.Email, account.DisplayName)
}

func (service *AuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*oauth2api.Userinfo, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(service.oauth.TokenSource(ctx, token)),
	}, service.profileOptions...)

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return svc.Userinfo.Get().Context(ctx).Do()
}

func (service *AuthService) issueTokens(userID uuid.UUID, email, displayName string) (*dto.LoginResponse, *errors.AppError) {
	accessToken, err := utils.GenerateToken(userID, email, constants.ScopeTokenAccess)
	if err != nil {
		logger.Error("AuthService:IssueTokens:GenerateAccessToken:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate access token", err)
	}
	refreshToken, err := utils.GenerateToken(userID, email, constants.ScopeTokenRefresh)
	if err != nil {
		logger.Error("AuthService:IssueTokens:GenerateRefreshToken:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate refresh token", err)
	}

	var expiresAt time.Time
	if claims, err := utils.ValidateAndParseToken(accessToken); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Account: dto.AccountResponse{
			ID:          userID,
			Email:       email,
			DisplayName: displayName,
		},
	}, nil
}

// RefreshToken trades a refresh token for a new pair. The old refresh token
// is revoked.
func (service *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, *errors.AppError) {
	claims, err := utils.ValidateAndParseToken(refreshToken)
	if err != nil || claims.Scope != constants.ScopeTokenRefresh {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid refresh token", nil)
	}

	blacklisted, err := service.cache.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		logger.Error("AuthService:RefreshToken:IsTokenBlacklisted:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check token blacklist", err)
	}
	if blacklisted {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "token is blacklisted", nil)
	}

	account, err := service.repo.GetAccountByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get account", err)
	}
	if account == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "account not found", nil)
	}

	if err := service.cache.AddToTokenBlacklist(ctx, refreshToken, claims.TokenTTL()); err != nil {
		logger.Error("AuthService:RefreshToken:AddToBlacklist:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to revoke refresh token", err)
	}

	return service.issueTokens(account.ID, account.Email, account.DisplayName)
}

func (service *AuthService) Session(ctx context.Context, userID uuid.UUID) (*dto.SessionInfo, *errors.AppError) {
	account, err := service.repo.GetAccountByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get account", err)
	}
	if account == nil {
		return &dto.SessionInfo{Authenticated: false}, nil
	}

	return &dto.SessionInfo{
		Authenticated:   true,
		UserID:          account.ID,
		UserEmail:       account.Email,
		DisplayName:     account.DisplayName,
		CredentialValid: account.CredentialValid && len(account.RefreshToken) > 0,
	}, nil
}

func (service *AuthService) Logout(ctx context.Context, claims *utils.TokenClaims, token string) *errors.AppError {
	if err := service.cache.AddToTokenBlacklist(ctx, token, claims.TokenTTL()); err != nil {
		logger.Error("AuthService:Logout:AddToBlacklist:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to add token to blacklist", err)
	}

	service.hooksMu.RLock()
	hooks := append([]func(uuid.UUID){}, service.logoutHooks...)
	service.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(claims.UserID)
	}

	logger.Info("AuthService:Logout:Success", "user_id", claims.UserID)
	return nil
}

func (service *AuthService) MarkCredentialInvalid(ctx context.Context, userID uuid.UUID) {
	if err := service.repo.MarkCredentialInvalid(ctx, userID); err != nil {
		logger.Error("AuthService:MarkCredentialInvalid:Error", "error", err, "user_id", userID)
		return
	}
	logger.Warn("AuthService:MarkCredentialInvalid", "user_id", userID)
}

func (service *AuthService) CleanupExpiredOAuthStates(ctx context.Context) (int64, error) {
	n, err := service.repo.CleanupExpiredOAuthStates(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("AuthService:CleanupExpiredOAuthStates", "deleted", n)
	}
	return n, nil
}
