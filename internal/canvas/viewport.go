/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "storycanvas/internal/domain"

// Zoom bounds. Pan is unbounded.
const (
	MinZoom = 0.1
	MaxZoom = 3.0
)

// Viewport is the board's pan/zoom transform. Screen and world coordinates
// relate by screen = world*zoom + pan. The viewport is owned by one canvas
// and observed externally through ViewportState snapshots pushed to a sink.
type Viewport struct {
	zoom       float64
	panX, panY float64
	sink       func(domain.ViewportState)
}

// NewViewport creates a viewport at zoom 1 with no pan. The sink may be
// nil; when set it receives a snapshot after every change.
func NewViewport(sink func(domain.ViewportState)) *Viewport {
	return &Viewport{zoom: 1, sink: sink}
}

// Restore loads a persisted snapshot, clamping the zoom. A zero snapshot
// (fresh board) restores the defaults.
func (v *Viewport) Restore(s domain.ViewportState) {
	if s.Zoom == 0 {
		s.Zoom = 1
	}
	v.zoom = clampZoom(s.Zoom)
	v.panX, v.panY = s.PanX, s.PanY
}

// State returns a plain snapshot of the transform.
func (v *Viewport) State() domain.ViewportState {
	return domain.ViewportState{Zoom: v.zoom, PanX: v.panX, PanY: v.panY}
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen pixels.
func (v *Viewport) Pan() (x, y float64) { return v.panX, v.panY }

// ScreenToWorld maps a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(px, py float64) (wx, wy float64) {
	return (px - v.panX) / v.zoom, (py - v.panY) / v.zoom
}

// WorldToScreen maps a world point to screen coordinates.
func (v *Viewport) WorldToScreen(wx, wy float64) (px, py float64) {
	return wx*v.zoom + v.panX, wy*v.zoom + v.panY
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom], keeping the
// pan untouched.
func (v *Viewport) SetZoom(z float64) {
	v.zoom = clampZoom(z)
	v.notify()
}

// ZoomAt rescales by factor while keeping the world point under the given
// screen point visually fixed (zoom to cursor).
func (v *Viewport) ZoomAt(px, py, factor float64) {
	wx, wy := v.ScreenToWorld(px, py)
	v.zoom = clampZoom(v.zoom * factor)
	v.panX = px - wx*v.zoom
	v.panY = py - wy*v.zoom
	v.notify()
}

// PanBy shifts the pan offset by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.panX += dx
	v.panY += dy
	v.notify()
}

func (v *Viewport) notify() {
	if v.sink != nil {
		v.sink(v.State())
	}
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
