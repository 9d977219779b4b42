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
	"testing"
)

// memTokenStore is an in-memory TokenStore for tests.
type memTokenStore struct{ m map[string]string }

func (s *memTokenStore) Get(service, key string) (string, error) {
	v, ok := s.m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (s *memTokenStore) Set(service, key, value string) error {
	s.m[service+"/"+key] = value
	return nil
}
func (s *memTokenStore) Delete(service, key string) error {
	delete(s.m, service+"/"+key)
	return nil
}

func withTempConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("AppData", filepath.Join(dir, "AppData", "Roaming"))
	t.Setenv("USERPROFILE", dir)
	return dir
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	withTempConfigHome(t)
	old := tokenStore
	tokenStore = &memTokenStore{m: map[string]string{}}
	defer func() { tokenStore = old }()

	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if tok != "" {
		t.Fatalf("expected no token, got %q", tok)
	}
	def := Defaults()
	if cfg.Sync.BaseURL != def.Sync.BaseURL || cfg.Logging.Level != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Canvas.GridSpacing != 20 || cfg.Canvas.SnapThreshold != 6 {
		t.Fatalf("canvas defaults not applied: %+v", cfg.Canvas)
	}
}

func TestSaveAndReload(t *testing.T) {
	withTempConfigHome(t)
	old := tokenStore
	mem := &memTokenStore{m: map[string]string{}}
	tokenStore = mem
	defer func() { tokenStore = old }()

	cfg := Defaults()
	cfg.Sync.BaseURL = "https://sync.example.test"
	cfg.Canvas.GridSpacing = 25
	cfg.Canvas.SnapEnabled = true
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Sync.BaseURL != "https://sync.example.test" {
		t.Fatalf("base url not persisted: %q", got.Sync.BaseURL)
	}
	if got.Canvas.GridSpacing != 25 {
		t.Fatalf("grid spacing not persisted: %v", got.Canvas.GridSpacing)
	}
	if tok != "secret-token" {
		t.Fatalf("token not round-tripped: %q", tok)
	}
}

func TestEnvOverrides(t *testing.T) {
	withTempConfigHome(t)
	old := tokenStore
	tokenStore = &memTokenStore{m: map[string]string{}}
	defer func() { tokenStore = old }()

	t.Setenv(EnvSyncURL, "https://env.example.test")
	t.Setenv(EnvSyncTimeoutMs, "2500")
	t.Setenv(EnvEnableSync, "yes")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Sync.BaseURL != "https://env.example.test" {
		t.Fatalf("env url override missing: %q", cfg.Sync.BaseURL)
	}
	if cfg.Sync.TimeoutMs != 2500 {
		t.Fatalf("env timeout override missing: %d", cfg.Sync.TimeoutMs)
	}
	if !cfg.General.EnableSync {
		t.Fatalf("enable_sync override missing")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level override missing: %q", cfg.Logging.Level)
	}

	if name, ok := EnvOverrideFor("sync.base_url"); !ok || name != EnvSyncURL {
		t.Fatalf("EnvOverrideFor mismatch: %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("logging.file"); ok {
		t.Fatalf("logging.file should not be overridden")
	}
}
