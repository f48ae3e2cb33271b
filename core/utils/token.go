package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"slotshare/core/config"
	"slotshare/core/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret       = errors.New("jwt secret is not configured")
	ErrMissingBearerToken  = errors.New("missing bearer token")
	ErrInvalidBearerFormat = errors.New("authorization header must be 'Bearer <token>'")
)

type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

func jwtSettings() (string, time.Duration, time.Duration) {
	cfg, ok := config.GetSafe()
	if !ok {
		return "", constants.AccessTokenTTL, constants.RefreshTokenTTL
	}
	access, refresh := cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL
	if access <= 0 {
		access = constants.AccessTokenTTL
	}
	if refresh <= 0 {
		refresh = constants.RefreshTokenTTL
	}
	return cfg.JWT.Secret, access, refresh
}

func GenerateToken(userID uuid.UUID, email string, scope string) (string, error) {
	secret, accessTTL, refreshTTL := jwtSettings()
	if secret == "" {
		return "", ErrMissingSecret
	}

	ttl := accessTTL
	if scope == constants.ScopeTokenRefresh {
		ttl = refreshTTL
	}

	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        GenerateIDOfLength(16),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ValidateAndParseToken(token string) (*TokenClaims, error) {
	secret, _, _ := jwtSettings()
	if secret == "" {
		return nil, ErrMissingSecret
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// TokenTTL returns the time left before the token expires, or zero.
func (c *TokenClaims) TokenTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := time.Until(c.ExpiresAt.Time)
	if d < 0 {
		return 0
	}
	return d
}

func GetTokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingBearerToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidBearerFormat
	}
	return strings.TrimSpace(parts[1]), nil
}
