package service

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"

	"slotshare/core/errors"
	"slotshare/core/logger"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// TokenSource returns a Google token source for the user. Refreshed tokens
// are sealed and written back; a refresh Google rejects marks the stored
// credential invalid and surfaces as ErrAuthExpired.
func (service *AuthService) TokenSource(ctx context.Context, userID uuid.UUID) (oauth2.TokenSource, *errors.AppError) {
	account, err := service.repo.GetAccountByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get account", err)
	}
	if account == nil || !account.CredentialValid {
		return nil, errors.NewAppError(errors.ErrAuthExpired, "Google credential expired. Please sign in again", nil)
	}

	accessToken, err := service.sealer.Open(account.AccessToken)
	if err != nil {
		logger.Error("AuthService:TokenSource:OpenAccessToken:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrAuthExpired, "stored Google credential is unreadable. Please sign in again", err)
	}
	refreshToken, err := service.sealer.Open(account.RefreshToken)
	if err != nil {
		logger.Error("AuthService:TokenSource:OpenRefreshToken:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrAuthExpired, "stored Google credential is unreadable. Please sign in again", err)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if account.TokenExpiresAt != nil {
		token.Expiry = *account.TokenExpiresAt
	}

	return &persistingTokenSource{
		service: service,
		ctx:     context.WithoutCancel(ctx),
		userID:  userID,
		base:    service.oauth.TokenSource(ctx, token),
		last:    token.AccessToken,
	}, nil
}

type persistingTokenSource struct {
	service *AuthService
	ctx     context.Context
	userID  uuid.UUID
	base    oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		if refreshRejected(err) {
			s.service.MarkCredentialInvalid(s.ctx, s.userID)
			return nil, errors.NewAppError(errors.ErrAuthExpired, "Google credential expired. Please sign in again", err)
		}
		logger.Warn("AuthService:TokenSource:Refresh:Error", "error", err, "user_id", s.userID)
		return nil, errors.NewAppError(errors.ErrTransportFailure, "failed to refresh Google credential", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken == s.last {
		return token, nil
	}
	s.last = token.AccessToken

	sealedAccess, err := s.service.sealer.Seal(token.AccessToken)
	if err != nil {
		logger.Error("AuthService:TokenSource:Seal:Error", "error", err)
		return token, nil
	}
	sealedRefresh, err := s.service.sealer.Seal(token.RefreshToken)
	if err != nil {
		logger.Error("AuthService:TokenSource:Seal:Error", "error", err)
		return token, nil
	}
	if err := s.service.repo.UpdateGoogleToken(s.ctx, s.userID, sealedAccess, sealedRefresh, token.Expiry); err != nil {
		// The refreshed token is still usable for this request.
		logger.Warn("AuthService:TokenSource:Persist:Error", "error", err, "user_id", s.userID)
	}
	return token, nil
}

// refreshRejected reports whether the token endpoint refused the refresh
// token itself. Outages and other non-2xx answers leave the credential alone.
func refreshRejected(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !stderrors.As(err, &retrieveErr) {
		return false
	}
	if retrieveErr.ErrorCode == "invalid_grant" {
		return true
	}
	if retrieveErr.Response == nil {
		return false
	}
	switch retrieveErr.Response.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return true
	}
	return false
}
