package middleware

import (
	"context"
	stderrors "errors"
	"net/http"

	"slotshare/core/constants"
	"slotshare/core/controller"
	"slotshare/core/errors"
	"slotshare/core/logger"
	"slotshare/core/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const contextRawToken = "raw_token"

type TokenBlacklist interface {
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

type Middleware struct {
	blacklist TokenBlacklist
}

func NewMiddleware(blacklist TokenBlacklist) *Middleware {
	return &Middleware{blacklist: blacklist}
}

// AuthMiddleware requires a valid, non-revoked access token.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				code := errors.ErrInvalidTokenFormat
				if stderrors.Is(err, utils.ErrMissingBearerToken) {
					code = errors.ErrMissingAuthorizationHeader
				}
				return controller.NewErrorResponse(http.StatusUnauthorized, code, err.Error())
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				if stderrors.Is(err, jwt.ErrTokenExpired) {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrTokenExpired, "token expired")
				}
				logger.Warn("Middleware:AuthMiddleware:ValidateToken:Error", "error", err)
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "invalid token")
			}
			if claims.Scope != constants.ScopeTokenAccess {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "access token required")
			}

			if m.blacklist != nil {
				revoked, err := m.blacklist.IsTokenBlacklisted(c.Request().Context(), token)
				if err != nil {
					logger.Error("Middleware:AuthMiddleware:IsTokenBlacklisted:Error", "error", err)
					return controller.NewErrorResponse(http.StatusInternalServerError, errors.ErrInternalServer, "failed to check token")
				}
				if revoked {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "token has been revoked")
				}
			}

			c.Set(constants.ContextTokenData, claims)
			c.Set(contextRawToken, token)
			return next(c)
		}
	}
}

func GetTokenClaims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok && claims != nil
}

func GetRawToken(c echo.Context) string {
	token, _ := c.Get(contextRawToken).(string)
	return token
}
