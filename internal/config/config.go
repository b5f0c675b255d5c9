// Package config loads configuration from environment variables and an
// optional .env file.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all browser configuration.
type Config struct {
	// TorBox API
	APIKey string // decoded, ready for the Authorization header
	APIURL string

	// JDownloader Click'n'Load intake
	JDownloaderURL string

	// Player
	MPVPath string

	// Persistence
	SessionPath string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from envFile (when present) and the environment.
// The API key is stored base64-encoded, the way the companion setup scripts
// write it, and is decoded here.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		APIURL:         envOr("TORBOX_API_URL", "https://api.torbox.app"),
		JDownloaderURL: envOr("JDOWNLOADER_URL", "http://127.0.0.1:9666"),
		MPVPath:        envOr("MPV_PATH", ""),
		SessionPath:    envOr("TORBOX_SESSION_FILE", filepath.Join(Dir(), "session.json")),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFile:        envOr("LOG_FILE", filepath.Join(Dir(), "torbox-browser.log")),
	}

	raw := envOr("TORBOX_API_KEY", "")
	if raw == "" {
		return nil, fmt.Errorf("TORBOX_API_KEY is required")
	}
	key, err := DecodeAPIKey(raw)
	if err != nil {
		return nil, err
	}
	cfg.APIKey = key

	return cfg, nil
}

// DecodeAPIKey decodes the base64-encoded API key.
func DecodeAPIKey(raw string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("TORBOX_API_KEY is not valid base64: %w", err)
	}
	key := strings.TrimSpace(string(decoded))
	if key == "" {
		return "", fmt.Errorf("TORBOX_API_KEY decodes to an empty key")
	}
	return key, nil
}

// Dir returns the per-user directory for session and log files.
func Dir() string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, _ := os.UserHomeDir()
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "torbox-browser")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "torbox-browser")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
