package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

var validStoreDrivers = map[string]bool{
	"memory":   true,
	"postgres": true,
}

type Config struct {
	ServerPort  string
	AppEnv      string
	LogLevel    string
	StoreDriver string
	DB          DBConfig
	Cognito     CognitoConfig
	Features    FeatureConfig
	Mapping     FieldMapping
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if !validStoreDrivers[c.StoreDriver] {
		return fmt.Errorf("invalid TOKEN_STORE_DRIVER %q: must be memory or postgres", c.StoreDriver)
	}
	if c.Cognito.UserPoolID == "" {
		return fmt.Errorf("COGNITO_USER_POOL_ID is required")
	}
	if c.Cognito.AppClientID == "" {
		return fmt.Errorf("COGNITO_APP_CLIENT_ID is required")
	}
	if err := c.Mapping.Validate(); err != nil {
		return err
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
	MFAIssuer       string
}

// FeatureConfig carries the policy flags driving guard and user-service
// behavior.
type FeatureConfig struct {
	AddMissingLocalUser     bool
	ForcePasswordChange     bool
	ForcePasswordAutoUpdate bool
	AllowDeleteUser         bool
	// VerifyTokenSignature additionally checks token signatures against the
	// pool's JWKS on every authenticated request.
	VerifyTokenSignature bool
}

func Load() Config {
	return Config{
		ServerPort:  envOrDefault("SERVER_PORT", "8080"),
		AppEnv:      envOrDefault("APP_ENV", "local"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		StoreDriver: envOrDefault("TOKEN_STORE_DRIVER", "memory"),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "authbridge"),
			Password: envOrDefault("DB_PASSWORD", "authbridge"),
			Name:     envOrDefault("DB_NAME", "authbridge"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "us-east-1"),
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
			MFAIssuer:       envOrDefault("COGNITO_MFA_ISSUER", "authbridge"),
		},
		Features: FeatureConfig{
			AddMissingLocalUser:     envBool("ADD_MISSING_LOCAL_USER", true),
			ForcePasswordChange:     envBool("FORCE_PASSWORD_CHANGE", true),
			ForcePasswordAutoUpdate: envBool("FORCE_PASSWORD_AUTO_UPDATE", false),
			AllowDeleteUser:         envBool("ALLOW_DELETE_USER", false),
			VerifyTokenSignature:    envBool("VERIFY_TOKEN_SIGNATURE", false),
		},
		Mapping: ParseFieldMapping(envOrDefault("COGNITO_FIELD_MAPPING", "email:email,name:name,phone_number:phone_number")),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true")
}
