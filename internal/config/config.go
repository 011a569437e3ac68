// Package config loads all process configuration once at startup into an
// immutable Config struct. Components receive the values they need through
// constructors — nothing reads the environment after Load returns.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PasswordPolicy holds the registration/change-password requirements.
// Each character-class rule is independently togglable.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool
}

// UploadLimits caps multipart uploads. Oversized or over-count requests are
// rejected fast with a machine-readable reason code rather than queued.
type UploadLimits struct {
	AvatarDir        string
	AvatarMaxBytes   int64
	CodeFileMaxBytes int64
	CodeFileMaxCount int
}

// Config is the full startup configuration.
type Config struct {
	Port        int
	DBPath      string
	Environment string // "development" enables verbose errors and debug logs

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Password PasswordPolicy
	Uploads  UploadLimits

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Load reads .env (if present) and the environment, applying defaults for
// anything unset. It never fails: a missing .env is normal in containers,
// where the environment is set directly.
func Load(logger *slog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", slog.String("reason", err.Error()))
	}

	return &Config{
		Port:        envInt("PORT", 8080),
		DBPath:      envStr("DB_PATH", "data/devspace.db"),
		Environment: envStr("ENVIRONMENT", "development"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		Password: PasswordPolicy{
			MinLength:        envInt("PASSWORD_MIN_LENGTH", 8),
			RequireUppercase: envBool("PASSWORD_REQUIRE_UPPERCASE", true),
			RequireLowercase: envBool("PASSWORD_REQUIRE_LOWERCASE", true),
			RequireDigit:     envBool("PASSWORD_REQUIRE_DIGIT", true),
			RequireSpecial:   envBool("PASSWORD_REQUIRE_SPECIAL", false),
		},

		Uploads: UploadLimits{
			AvatarDir:        envStr("AVATAR_DIR", "data/avatars"),
			AvatarMaxBytes:   envInt64("AVATAR_MAX_BYTES", 2<<20),
			CodeFileMaxBytes: envInt64("CODE_FILE_MAX_BYTES", 1<<20),
			CodeFileMaxCount: envInt("CODE_FILE_MAX_COUNT", 5),
		},

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
	}
}

// Development reports whether the process runs in development mode.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
