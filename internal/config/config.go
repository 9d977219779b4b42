/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type SyncConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark" (informational for now)
	EnableSync     bool   `yaml:"enable_sync"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// CanvasConfig tunes interactive canvas behavior. Grid spacing is the minor
// grid in world units; the renderer derives the major grid from it.
type CanvasConfig struct {
	GridSpacing   float64 `yaml:"grid_spacing"`
	SnapEnabled   bool    `yaml:"snap_enabled"`
	SnapThreshold float64 `yaml:"snap_threshold"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Sync          SyncConfig    `yaml:"sync"`
	Logging       LoggingConfig `yaml:"logging"`
	Canvas        CanvasConfig  `yaml:"canvas"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system", EnableSync: false},
		Sync:          SyncConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Canvas:        CanvasConfig{GridSpacing: 20, SnapEnabled: true, SnapThreshold: 6},
	}
}

// Env var names used as overrides.
const (
	EnvSyncURL        = "SCV_SYNC_URL"
	EnvSyncTimeoutMs  = "SCV_SYNC_TIMEOUT_MS"
	EnvSyncTLSInsec   = "SCV_TLS_INSECURE"
	EnvTelemetryOptIn = "SCV_TELEMETRY_OPT_IN"
	EnvEnableSync     = "SCV_ENABLE_SYNC"
	EnvLogLevel       = "SCV_LOG_LEVEL"
	EnvLogFormat      = "SCV_LOG_FORMAT"
	EnvLogSource      = "SCV_LOG_SOURCE"
	EnvLogFile        = "SCV_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "StoryCanvas"
	keyringToken   = "sync_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// osKeyring implements TokenStore using github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "StoryCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "StoryCanvas")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "storycanvas")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment
// overrides. The sync token is loaded from the keyring and returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.General.EnableSync = src.General.EnableSync
	if src.Sync.BaseURL != "" {
		dst.Sync.BaseURL = src.Sync.BaseURL
	}
	if src.Sync.TimeoutMs != 0 {
		dst.Sync.TimeoutMs = src.Sync.TimeoutMs
	}
	dst.Sync.TLSInsecure = src.Sync.TLSInsecure
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Canvas.GridSpacing > 0 {
		dst.Canvas.GridSpacing = src.Canvas.GridSpacing
	}
	dst.Canvas.SnapEnabled = src.Canvas.SnapEnabled
	if src.Canvas.SnapThreshold > 0 {
		dst.Canvas.SnapThreshold = src.Canvas.SnapThreshold
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSyncURL)); v != "" {
		cfg.Sync.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSyncTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSyncTLSInsec)); v != "" {
		cfg.Sync.TLSInsecure = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnableSync)); v != "" {
		cfg.General.EnableSync = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "sync.base_url":
		name = EnvSyncURL
	case "sync.timeout_ms":
		name = EnvSyncTimeoutMs
	case "sync.tls_insecure":
		name = EnvSyncTLSInsec
	case "general.telemetry_opt_in":
		name = EnvTelemetryOptIn
	case "general.enable_sync":
		name = EnvEnableSync
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}
