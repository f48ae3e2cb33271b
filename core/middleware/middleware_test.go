package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slotshare/core/cache"
	"slotshare/core/config"
	"slotshare/core/constants"
	"slotshare/core/errors"
	"slotshare/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestAuthMiddleware(t *testing.T) {
	config.Set(&config.Config{JWT: config.JWTConfig{Secret: "test-secret"}})
	t.Cleanup(func() { config.Set(nil) })

	userID := uuid.New()
	access, err := utils.GenerateToken(userID, "me@x.com", constants.ScopeTokenAccess)
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := utils.GenerateToken(userID, "me@x.com", constants.ScopeTokenRefresh)
	if err != nil {
		t.Fatal(err)
	}
	revoked, err := utils.GenerateToken(userID, "me@x.com", constants.ScopeTokenAccess)
	if err != nil {
		t.Fatal(err)
	}

	blacklist := cache.NewMemoryCache()
	if err := blacklist.AddToTokenBlacklist(context.Background(), revoked, 0); err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	mw := NewMiddleware(blacklist)
	e.GET("/me", func(c echo.Context) error {
		claims, ok := GetTokenClaims(c)
		if !ok || GetRawToken(c) == "" {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, claims.Email)
	}, mw.AuthMiddleware())

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "valid", header: "Bearer " + access, wantCode: http.StatusOK, wantBody: "me@x.com"},
		{name: "missing header", wantCode: http.StatusUnauthorized, wantBody: string(errors.ErrMissingAuthorizationHeader)},
		{name: "not bearer", header: "Basic abc", wantCode: http.StatusUnauthorized, wantBody: string(errors.ErrInvalidTokenFormat)},
		{name: "garbage", header: "Bearer not-a-jwt", wantCode: http.StatusUnauthorized, wantBody: string(errors.ErrUnauthorized)},
		{name: "refresh token", header: "Bearer " + refresh, wantCode: http.StatusUnauthorized, wantBody: "access token required"},
		{name: "revoked", header: "Bearer " + revoked, wantCode: http.StatusUnauthorized, wantBody: "revoked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
