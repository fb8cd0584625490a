// Package config loads nidra settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	HTTPAddr string `validate:"required"`

	CameraSource string `validate:"required"`
	CameraFPS    int    `validate:"min=1,max=120"`
	Detector     string `validate:"oneof=auto mediapipe mock"`

	DataDir   string `validate:"required"`
	StaticDir string
	HookDir   string
	HookTimeoutMS int `validate:"min=100"`

	RedisAddress  string
	RedisPassword string
	RedisDB       int `validate:"min=0,max=15"`

	TrayEnabled bool

	LogLevel string `validate:"oneof=trace debug info warn warning error"`
	LogDir   string
	AppEnv   string
}

// DBPath is the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "nidra.db")
}

// HookTimeout returns HookTimeoutMS as a duration.
func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.HookTimeoutMS) * time.Millisecond
}

// RedisEnabled reports whether the status mirror should run.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

// IsTest reports whether APP_ENV=test.
func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

// Load reads .env (if present) and the environment, fills defaults and validates.
func Load() (*Config, error) {
	// A missing .env is fine; the process environment is used as is
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := getEnv("DATA_DIR", filepath.Join(home, ".nidra"))

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		CameraSource:  getEnv("CAMERA_SOURCE", "0"),
		CameraFPS:     getEnvInt("CAMERA_FPS", 15),
		Detector:      strings.ToLower(getEnv("DETECTOR", "auto")),
		DataDir:       dataDir,
		StaticDir:     getEnv("STATIC_DIR", FindWebDir(dataDir)),
		HookDir:       getEnv("HOOK_DIR", filepath.Join(dataDir, "hooks")),
		HookTimeoutMS: getEnvInt("HOOK_TIMEOUT_MS", 5000),
		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		TrayEnabled:   getEnvBool("TRAY_ENABLED", false),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogDir:        getEnv("LOG_DIR", filepath.Join(dataDir, "logs")),
		AppEnv:        getEnv("APP_ENV", "production"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FindWebDir returns the first existing web directory among "web",
// "../web", "../../web" and dataDir/web, or "" if there is none.
func FindWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
