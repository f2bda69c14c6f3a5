package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/auth"
	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/session"
)

// devAuthSecret signs session cookies outside production when AUTH_SECRET is
// unset.
const devAuthSecret = "storefront-development-secret-do-not-use"

// Environment keys.
const (
	KeyAPIURL        = "NEXT_PUBLIC_API_URL"
	KeyImageBaseURL  = "NEXT_PUBLIC_IMAGE_BASE_URL"
	KeyNodeEnv       = "NODE_ENV"
	KeyAPIMocking    = "NEXT_PUBLIC_API_MOCKING"
	KeyPort          = "PORT"
	KeyAuthSecret    = "AUTH_SECRET"
	KeySessionCookie = "AUTH_SESSION_COOKIE"
	KeyRoleNamespace = "AUTH_ROLE_NAMESPACE"
	KeyCacheTTL      = "CACHE_TTL"
	KeyCacheCapacity = "CACHE_CAPACITY"
	KeyHTTPTimeout   = "HTTP_TIMEOUT"
	KeyUIStateDir    = "UI_STATE_DIR"
	KeyRedisAddr     = "REDIS_ADDR"
	KeyLogLevel      = "LOG_LEVEL"
	KeyLogFormat     = "LOG_FORMAT"
)

// Config is the process configuration.
type Config struct {
	APIURL        string
	ImageBaseURL  string
	NodeEnv       string
	APIMocking    string
	Port          int
	AuthSecret    string
	SessionCookie string
	RoleNamespace string
	CacheTTL      time.Duration
	CacheCapacity int
	HTTPTimeout   time.Duration
	UIStateDir    string
	RedisAddr     string
	LogLevel      string
	LogFormat     string
}

// Production reports whether NODE_ENV is production.
func (c Config) Production() bool {
	return strings.EqualFold(c.NodeEnv, "production")
}

// MockingEnabled reports whether the in-memory upstream should replace the
// real one. It is never enabled in production.
func (c Config) MockingEnabled() bool {
	return strings.EqualFold(c.APIMocking, "enabled") && !c.Production()
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Cache returns the cache adapter configuration.
func (c Config) Cache() cacheinfra.Config {
	cfg := cacheinfra.DefaultConfig()
	cfg.TTL = c.CacheTTL
	cfg.Capacity = c.CacheCapacity
	return cfg
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, api.DefaultBaseURL)
	v.SetDefault(KeyImageBaseURL, "")
	v.SetDefault(KeyNodeEnv, "development")
	v.SetDefault(KeyAPIMocking, "")
	v.SetDefault(KeyPort, 3000)
	v.SetDefault(KeyAuthSecret, "")
	v.SetDefault(KeySessionCookie, session.DefaultCookieName)
	v.SetDefault(KeyRoleNamespace, auth.DefaultRoleNamespace)
	v.SetDefault(KeyCacheTTL, time.Minute)
	v.SetDefault(KeyCacheCapacity, cacheinfra.DefaultConfig().Capacity)
	v.SetDefault(KeyHTTPTimeout, 10*time.Second)
	v.SetDefault(KeyUIStateDir, "")
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "")
}

// Load reads env files (missing ones are skipped), the environment and v's
// own overrides into a validated Config.
func Load(v *viper.Viper, envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	SetDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		APIURL:        v.GetString(KeyAPIURL),
		ImageBaseURL:  v.GetString(KeyImageBaseURL),
		NodeEnv:       v.GetString(KeyNodeEnv),
		APIMocking:    v.GetString(KeyAPIMocking),
		Port:          v.GetInt(KeyPort),
		AuthSecret:    v.GetString(KeyAuthSecret),
		SessionCookie: v.GetString(KeySessionCookie),
		RoleNamespace: v.GetString(KeyRoleNamespace),
		CacheTTL:      v.GetDuration(KeyCacheTTL),
		CacheCapacity: v.GetInt(KeyCacheCapacity),
		HTTPTimeout:   v.GetDuration(KeyHTTPTimeout),
		UIStateDir:    v.GetString(KeyUIStateDir),
		RedisAddr:     v.GetString(KeyRedisAddr),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
	}

	if cfg.AuthSecret == "" && !cfg.Production() {
		cfg.AuthSecret = devAuthSecret
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.Production() {
			cfg.LogFormat = "json"
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.AuthSecret == "" {
		return &cacheinfra.ConfigError{Field: KeyAuthSecret, Message: "is required in production"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &cacheinfra.ConfigError{Field: KeyPort, Message: "must be between 1 and 65535"}
	}
	if c.HTTPTimeout < 0 {
		return &cacheinfra.ConfigError{Field: KeyHTTPTimeout, Message: "must be non-negative"}
	}
	if err := c.Cache().Validate(); err != nil {
		return err
	}
	return nil
}
