package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"slotshare/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	GoogleAPI    GoogleAPIConfig    `mapstructure:"google_api"`
	Security     SecurityConfig     `mapstructure:"security"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	Directory    DirectoryConfig    `mapstructure:"directory"`
	Share        ShareConfig        `mapstructure:"share"`
	Queue        QueueConfig        `mapstructure:"queue"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type GoogleAPIConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	// Frontend URL the OAuth callback redirects to with the issued tokens.
	PostLoginRedirect string `mapstructure:"post_login_redirect"`
}

type SecurityConfig struct {
	// 32 bytes, hex encoded. Used to seal stored Google tokens.
	TokenEncryptionKey string `mapstructure:"token_encryption_key"`
}

type AvailabilityConfig struct {
	DayStart               string        `mapstructure:"day_start"`
	DayEnd                 string        `mapstructure:"day_end"`
	IncludeWeekends        bool          `mapstructure:"include_weekends"`
	SlotGranularityMinutes int           `mapstructure:"slot_granularity_minutes"`
	AllDayBlocks           bool          `mapstructure:"all_day_blocks"`
	DefaultTimezone        string        `mapstructure:"default_timezone"`
	WeekStart              string        `mapstructure:"week_start"`
	WorkspaceIdleTTL       time.Duration `mapstructure:"workspace_idle_ttl"`
}

type DirectoryConfig struct {
	DebounceMs     int           `mapstructure:"debounce_ms"`
	MinQueryLength int           `mapstructure:"min_query_length"`
	PageSize       int64         `mapstructure:"page_size"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type ShareConfig struct {
	Bucket     string        `mapstructure:"bucket"`
	Region     string        `mapstructure:"region"`
	Endpoint   string        `mapstructure:"endpoint"`
	AccessKey  string        `mapstructure:"access_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

func (s ShareConfig) Enabled() bool {
	return s.Bucket != "" && s.Region != ""
}

type QueueConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
	EvictSchedule   string `mapstructure:"evict_schedule"`
}

var (
	mu       sync.RWMutex
	instance *Config

	replacer = strings.NewReplacer(".", "_")
)

// Init loads .env (if present), an optional config.yaml and SLOTSHARE_*
// environment variables, in increasing precedence.
func Init() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("Config:Init:DotenvSkipped", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SLOTSHARE")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	cfg, err := load(v)
	if err != nil {
		return nil, err
	}

	Set(cfg)
	return cfg, nil
}

func load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "slotshare")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", 24*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 30*24*time.Hour)

	v.SetDefault("google_api.client_id", "")
	v.SetDefault("google_api.client_secret", "")
	v.SetDefault("google_api.redirect_uri", "")
	v.SetDefault("google_api.post_login_redirect", "")

	v.SetDefault("security.token_encryption_key", "")

	v.SetDefault("availability.day_start", "09:00")
	v.SetDefault("availability.day_end", "17:00")
	v.SetDefault("availability.include_weekends", false)
	v.SetDefault("availability.slot_granularity_minutes", 30)
	v.SetDefault("availability.all_day_blocks", false)
	v.SetDefault("availability.default_timezone", "UTC")
	v.SetDefault("availability.week_start", "sunday")
	v.SetDefault("availability.workspace_idle_ttl", 2*time.Hour)

	v.SetDefault("directory.debounce_ms", 300)
	v.SetDefault("directory.min_query_length", 3)
	v.SetDefault("directory.page_size", 30)
	v.SetDefault("directory.cache_ttl", 5*time.Minute)

	v.SetDefault("share.bucket", "")
	v.SetDefault("share.region", "")
	v.SetDefault("share.endpoint", "")
	v.SetDefault("share.access_key", "")
	v.SetDefault("share.secret_key", "")
	v.SetDefault("share.presign_ttl", 7*24*time.Hour)

	v.SetDefault("queue.concurrency", 2)
	v.SetDefault("queue.cleanup_schedule", "@every 15m")
	v.SetDefault("queue.evict_schedule", "@every 10m")
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Availability.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("availability.slot_granularity_minutes must be positive")
	}
	if c.Directory.MinQueryLength < 1 {
		return fmt.Errorf("directory.min_query_length must be at least 1")
	}
	if c.Directory.DebounceMs < 0 {
		return fmt.Errorf("directory.debounce_ms must not be negative")
	}
	return nil
}

func (c DirectoryConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Get called before Init")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
