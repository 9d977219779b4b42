/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SCV_TELEMETRY_OPT_IN", "")
	t.Setenv("SCV_TELEMETRY_URL", "")
	t.Setenv("SCV_CRASH_UPLOAD_URL", "")
	t.Setenv("SCV_TELEMETRY_TIMEOUT_MS", "")
	cfg := FromEnv()
	if cfg.OptIn {
		t.Fatalf("telemetry must be off by default")
	}
	if cfg.EventsURL != "" || cfg.CrashURL != "" {
		t.Fatalf("no URLs expected by default")
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCV_TELEMETRY_OPT_IN", "yes")
	t.Setenv("SCV_TELEMETRY_URL", "https://example.test/events")
	t.Setenv("SCV_TELEMETRY_TIMEOUT_MS", "250")
	cfg := FromEnv()
	if !cfg.OptIn {
		t.Fatalf("opt-in not parsed")
	}
	if cfg.EventsURL != "https://example.test/events" {
		t.Fatalf("events url = %q", cfg.EventsURL)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}

func TestDisabledClientDropsEvents(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event("board_opened", nil)
	c.Flush(context.Background())
	if calls != 0 {
		t.Fatalf("disabled client sent %d events", calls)
	}
	if c.Enabled() {
		t.Fatalf("Enabled() = true for opted-out client")
	}
}

func TestEventDelivery(t *testing.T) {
	var mu sync.Mutex
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event("export_finished", map[string]any{"format": "pdf"})
	c.Flush(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	ev := got[0]
	if ev["name"] != "export_finished" {
		t.Fatalf("event name = %v", ev["name"])
	}
	if ev["app"] != "storycanvas" {
		t.Fatalf("event app = %v", ev["app"])
	}
	if ev["format"] != "pdf" {
		t.Fatalf("event prop format = %v", ev["format"])
	}
}

func TestUploadCrash(t *testing.T) {
	var mu sync.Mutex
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = b
		mu.Unlock()
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.UploadCrash([]byte("panic: boom"))

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(body)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if string(body) != "panic: boom" {
		t.Fatalf("crash body = %q", string(body))
	}
}
