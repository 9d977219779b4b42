/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"

	"storycanvas/internal/canvas"
	"storycanvas/internal/domain"
	"storycanvas/internal/storage"
	"storycanvas/internal/vector"
)

// sceneMargin is the padding in world units around the board content.
const sceneMargin = 40.0

// Empty boards still get a page.
const (
	emptySceneW = 800.0
	emptySceneH = 600.0
)

// Scene is a board's draw list framed for static output: the node tree is
// in media coordinates with the content offset by the margin, and W/H give
// the media size in world units. All exporters share this, so a board
// looks the same on screen, in SVG, PNG and PDF.
type Scene struct {
	Root *vector.Group
	W, H float64
}

// SceneOptions controls how a board is staged for export.
type SceneOptions struct {
	ShowGrid bool
	// Margin in world units; 0 means the default margin.
	Margin float64
}

// BoardScene loads a board through the manifest-backed store and builds
// its scene graph with a viewport framing the whole content.
func BoardScene(ph *storage.ProjectHandle, boardID string, opt SceneOptions) (*Scene, error) {
	if ph == nil {
		return nil, fmt.Errorf("project handle is nil")
	}
	store := storage.NewBoardStore(ph)
	m := canvas.NewModel(boardID, store)
	if err := m.Load(); err != nil {
		return nil, fmt.Errorf("load board %s: %w", boardID, err)
	}

	margin := opt.Margin
	if margin <= 0 {
		margin = sceneMargin
	}

	els := m.Elements()
	var bounds vector.Rect
	for i, el := range els {
		r := canvas.ElementRect(el)
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
	}

	w := float64(bounds.W) + 2*margin
	h := float64(bounds.H) + 2*margin
	if len(els) == 0 {
		w, h = emptySceneW, emptySceneH
	}

	v := canvas.NewViewport(nil)
	v.Restore(domain.ViewportState{
		Zoom: 1,
		PanX: margin - float64(bounds.X),
		PanY: margin - float64(bounds.Y),
	})

	grid := canvas.DefaultGrid
	grid.Hidden = !opt.ShowGrid
	r := canvas.NewRenderer(m, v, nil, store, grid)
	return &Scene{Root: r.Build(w, h), W: w, H: h}, nil
}

// boardIDs resolves the board selection: nil means every board in order.
func boardIDs(ph *storage.ProjectHandle, specific []string) []string {
	if len(specific) > 0 {
		return specific
	}
	out := make([]string, 0, len(ph.Project.Boards))
	for _, b := range ph.Project.Boards {
		out = append(out, b.ID)
	}
	return out
}
