/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the sync API. The desktop app uses
// it behind a feature flag; the canvas itself never talks to the network.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new sync client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Project is a minimal projection for listing.
type Project struct {
	ID        int64     `json:"id"`
	StableID  string    `json:"stable_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// ListProjects returns available projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var list []Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ManifestEnvelope matches the server response for the latest manifest of a project.
type ManifestEnvelope struct {
	ProjectID int64           `json:"project_id"`
	Version   int64           `json:"version"`
	CreatedAt string          `json:"created_at"`
	Manifest  json.RawMessage `json:"manifest"`
}

// GetManifest fetches the latest manifest snapshot for a project.
func (c *Client) GetManifest(ctx context.Context, projectID int64) (*ManifestEnvelope, error) {
	var env ManifestEnvelope
	path := fmt.Sprintf("/api/projects/%d/manifest", projectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PushManifest uploads a manifest as the next version and returns it.
func (c *Client) PushManifest(ctx context.Context, projectID int64, manifest []byte) (int64, error) {
	var resp struct {
		Version int64 `json:"version"`
	}
	path := fmt.Sprintf("/api/projects/%d/manifest", projectID)
	if err := c.doJSON(ctx, http.MethodPost, path, manifest, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

// BoardSnapshotEnvelope matches the server response for a board's latest state.
type BoardSnapshotEnvelope struct {
	ProjectID int64           `json:"project_id"`
	BoardID   string          `json:"board_id"`
	CreatedAt string          `json:"created_at"`
	State     json.RawMessage `json:"state"`
}

// GetBoardSnapshot fetches the latest snapshot of one board.
func (c *Client) GetBoardSnapshot(ctx context.Context, projectID int64, boardID string) (*BoardSnapshotEnvelope, error) {
	var env BoardSnapshotEnvelope
	path := fmt.Sprintf("/api/projects/%d/boards/%s/snapshot", projectID, url.PathEscape(boardID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PushBoardSnapshot uploads a serialized board state.
func (c *Client) PushBoardSnapshot(ctx context.Context, projectID int64, boardID string, state []byte) error {
	path := fmt.Sprintf("/api/projects/%d/boards/%s/snapshot", projectID, url.PathEscape(boardID))
	return c.doJSON(ctx, http.MethodPost, path, state, nil)
}
