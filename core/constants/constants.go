package constants

import "time"

const (
	DefaultTimeout = 15 * time.Second

	ContextTokenData = "token_data"

	// HeaderClientTimezone carries the browser's IANA zone.
	HeaderClientTimezone = "X-Timezone"

	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"

	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
	OAuthStateTTL   = 10 * time.Minute
)

const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

const (
	RedisKeyTokenBlacklist  = "slotshare:blacklist:"
	RedisKeyDirectorySearch = "slotshare:directory:"
)

const (
	TaskCleanupOAuthStates  = "auth:cleanup_oauth_states"
	TaskEvictIdleWorkspaces = "availability:evict_idle_workspaces"
)
