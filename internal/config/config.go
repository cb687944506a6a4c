package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "CONFIG_PATH"
	EnvPort       = "PORT"
	EnvJWTSecret  = "JWT_SECRET"
	EnvJWTExpiry  = "JWT_EXPIRY"
	EnvExposeOTP  = "EXPOSE_OTP"
	EnvLogLevel   = "LOG_LEVEL"
)

// defaultJWTExpiry is used when the config omits or invalidates the session
// token expiry.
const defaultJWTExpiry = 30 * time.Minute

// JWTConfig holds session token secret and expiry settings.
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// DemoConfig holds prototype-only behavior switches.
type DemoConfig struct {
	// ExposeOTP returns issued codes to the caller instead of delivering
	// them out-of-band. A hardened deployment turns this off.
	ExposeOTP bool
}

// Config holds the resolved application configuration.
type Config struct {
	Port     int
	JWT      JWTConfig
	Demo     DemoConfig
	LogLevel string
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides. A
// missing file yields defaults rather than an error.
func Load(configPath string) (Config, error) {
	cfg := Config{
		Port:     8318,
		JWT:      JWTConfig{Expiry: defaultJWTExpiry},
		Demo:     DemoConfig{ExposeOTP: true},
		LogLevel: "info",
	}

	// fileConfig maps the YAML fields; expiry is parsed as a duration string.
	type fileConfig struct {
		Port *int `yaml:"port"`
		JWT  struct {
			Secret string `yaml:"secret"`
			Expiry string `yaml:"expiry"`
		} `yaml:"jwt"`
		Demo struct {
			ExposeOTP *bool `yaml:"expose-otp"`
		} `yaml:"demo"`
		LogLevel string `yaml:"log-level"`
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var file fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &file); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
		if file.Port != nil && *file.Port > 0 && *file.Port <= 65535 {
			cfg.Port = *file.Port
		}
		if secret := strings.TrimSpace(file.JWT.Secret); secret != "" {
			cfg.JWT.Secret = secret
		}
		if expiryRaw := strings.TrimSpace(file.JWT.Expiry); expiryRaw != "" {
			if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
				cfg.JWT.Expiry = expiry
			}
		}
		if file.Demo.ExposeOTP != nil {
			cfg.Demo.ExposeOTP = *file.Demo.ExposeOTP
		}
		if level := strings.TrimSpace(file.LogLevel); level != "" {
			cfg.LogLevel = level
		}
	}

	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		}
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if exposeRaw := strings.TrimSpace(os.Getenv(EnvExposeOTP)); exposeRaw != "" {
		if expose, errParse := strconv.ParseBool(exposeRaw); errParse == nil {
			cfg.Demo.ExposeOTP = expose
		}
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = level
	}

	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultJWTExpiry
	}
	return cfg, nil
}
