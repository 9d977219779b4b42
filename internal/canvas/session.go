/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"log/slog"

	applog "storycanvas/internal/log"

	"storycanvas/internal/domain"
	"storycanvas/internal/vector"
)

// Mode is the active interaction tool.
type Mode string

const (
	ModeSelect  Mode = "select"
	ModeConnect Mode = "connect"
	ModePen     Mode = "pen"
	ModeText    Mode = "text"
	ModeEraser  Mode = "eraser"
)

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// PointerEvent is a raw pointer event in screen coordinates. PanModifier
// reports whether the pan modifier key was held when the event fired.
type PointerEvent struct {
	X, Y        float64
	Button      Button
	PanModifier bool
}

// Key is the subset of keyboard input the canvas reacts to.
type Key int

const (
	KeyDelete Key = iota
	KeyBackspace
	KeyEscape
)

// SessionOptions tunes interaction behavior.
type SessionOptions struct {
	SnapEnabled   bool
	SnapThreshold float64 // screen pixels
}

type dragState struct {
	id         string
	offX, offY float64 // grab offset from the element origin, world units
	curX, curY float64 // live position, world units
}

type panState struct {
	lastX, lastY float64
}

type caretState struct {
	x, y float64
}

type paletteDragState struct {
	kind       domain.ElementKind
	refID      string
	x, y       float64 // screen position of the floating preview
	hasPointer bool
}

// Session is the interaction state machine. It owns the current mode and
// at most one in-progress gesture, translating pointer and keyboard events
// into model and viewport mutations. Sessions are single-threaded; all
// methods must be called from the event-dispatch goroutine.
type Session struct {
	model  *Model
	view   *Viewport
	ingest *Ingestor
	log    *slog.Logger
	opts   SessionOptions

	mode        Mode
	drag        *dragState
	pan         *panState
	connectFrom string
	stroke      []StrokePoint
	penActive   bool
	eraserDown  bool
	caret       *caretState
	selection   map[string]struct{}
	guides      []vector.GuideLine
	palette     *paletteDragState
}

// NewSession creates a session in select mode.
func NewSession(m *Model, v *Viewport, g *Ingestor, opts SessionOptions) *Session {
	return &Session{
		model:     m,
		view:      v,
		ingest:    g,
		log:       applog.WithComponent("canvas.session"),
		opts:      opts,
		mode:      ModeSelect,
		selection: map[string]struct{}{},
	}
}

// Mode returns the active tool.
func (s *Session) Mode() Mode { return s.mode }

// SetMode switches tools, cancelling any in-progress gesture in the old
// mode without committing it.
func (s *Session) SetMode(m Mode) {
	if m == s.mode {
		return
	}
	s.cancelGesture()
	s.mode = m
}

func (s *Session) cancelGesture() {
	s.drag = nil
	s.pan = nil
	s.connectFrom = ""
	s.stroke = nil
	s.penActive = false
	s.eraserDown = false
	s.caret = nil
	s.guides = nil
}

// PointerDown dispatches a press to the active tool.
func (s *Session) PointerDown(ev PointerEvent) {
	wx, wy := s.view.ScreenToWorld(ev.X, ev.Y)
	switch s.mode {
	case ModeSelect:
		if ev.Button == ButtonMiddle || ev.PanModifier {
			s.pan = &panState{lastX: ev.X, lastY: ev.Y}
			return
		}
		if el, ok := s.model.HitTest(wx, wy); ok {
			s.drag = &dragState{id: el.ID, offX: wx - el.X, offY: wy - el.Y, curX: el.X, curY: el.Y}
			s.selection = map[string]struct{}{el.ID: {}}
			return
		}
		s.selection = map[string]struct{}{}
	case ModeConnect:
		el, ok := s.model.HitTest(wx, wy)
		if !ok {
			return
		}
		if s.connectFrom == "" {
			s.connectFrom = el.ID
			return
		}
		if el.ID == s.connectFrom {
			return
		}
		s.model.Connect(s.connectFrom, el.ID)
		s.connectFrom = ""
		s.mode = ModeSelect
	case ModePen:
		s.stroke = []StrokePoint{{X: wx, Y: wy}}
		s.penActive = true
	case ModeText:
		if _, ok := s.model.HitTest(wx, wy); ok {
			return
		}
		s.caret = &caretState{x: wx, y: wy}
	case ModeEraser:
		s.eraserDown = true
		if el, ok := s.model.HitTest(wx, wy); ok {
			s.model.Remove(el.ID)
		}
	}
}

// PointerMove dispatches motion to the gesture in progress.
func (s *Session) PointerMove(ev PointerEvent) {
	if s.pan != nil {
		s.view.PanBy(ev.X-s.pan.lastX, ev.Y-s.pan.lastY)
		s.pan.lastX, s.pan.lastY = ev.X, ev.Y
		return
	}
	wx, wy := s.view.ScreenToWorld(ev.X, ev.Y)
	switch {
	case s.drag != nil:
		s.drag.curX = wx - s.drag.offX
		s.drag.curY = wy - s.drag.offY
		s.guides = nil
		if s.opts.SnapEnabled {
			s.applySnap()
		}
	case s.penActive:
		s.stroke = append(s.stroke, StrokePoint{X: wx, Y: wy})
	case s.mode == ModeEraser && s.eraserDown:
		if el, ok := s.model.HitTest(wx, wy); ok {
			s.model.Remove(el.ID)
		}
	}
}

// applySnap aligns the dragged element against the other elements' edges
// and centers, recording guide lines for the renderer.
func (s *Session) applySnap() {
	el, ok := s.model.Element(s.drag.id)
	if !ok {
		return
	}
	moving := vector.R(float32(s.drag.curX), float32(s.drag.curY), float32(el.Width), float32(el.Height))
	var anchors []vector.Anchor
	for _, other := range s.model.Elements() {
		if other.ID == s.drag.id {
			continue
		}
		anchors = append(anchors, vector.Anchor{Rect: ElementRect(other), Weight: 1})
	}
	if len(anchors) == 0 {
		return
	}
	// The threshold option is in screen pixels; snapping runs in world units.
	threshold := float32(s.opts.SnapThreshold / s.view.Zoom())
	snapped, guides := vector.SnapToAnchors(moving, anchors, vector.SnapOptions{
		Threshold:     threshold,
		SnapToEdges:   true,
		SnapToCenters: true,
	})
	s.drag.curX = float64(snapped.X)
	s.drag.curY = float64(snapped.Y)
	s.guides = guides
}

// PointerUp ends the gesture in progress, committing drags and strokes.
func (s *Session) PointerUp(ev PointerEvent) {
	if s.pan != nil {
		s.pan = nil
		return
	}
	switch {
	case s.drag != nil:
		el, ok := s.model.Element(s.drag.id)
		if ok {
			// Stored sizes stay in world units: screen extent divided
			// by zoom is the element's unchanged world size.
			x, y := s.drag.curX, s.drag.curY
			w, h := el.Width, el.Height
			s.model.Update(el.ID, ElementPatch{X: &x, Y: &y, Width: &w, Height: &h})
		}
		s.drag = nil
		s.guides = nil
	case s.penActive:
		s.ingest.AddDrawing(s.stroke)
		s.stroke = nil
		s.penActive = false
	}
	s.eraserDown = false
}

// KeyDown handles keyboard input. Delete and Backspace remove the active
// selection in select mode; Escape cancels the gesture in progress.
func (s *Session) KeyDown(k Key) {
	switch k {
	case KeyDelete, KeyBackspace:
		if s.mode != ModeSelect || len(s.selection) == 0 {
			return
		}
		for id := range s.selection {
			s.model.Remove(id)
		}
		s.selection = map[string]struct{}{}
	case KeyEscape:
		s.cancelGesture()
	}
}

// CommitText turns the active caret into a note element with the typed
// content. Empty content still creates a note; no validation rejects it.
func (s *Session) CommitText(content string) {
	if s.caret == nil {
		return
	}
	s.ingest.AddNote(content, s.caret.x, s.caret.y)
	s.caret = nil
}

// CancelText discards the active caret without creating anything.
func (s *Session) CancelText() { s.caret = nil }

// Caret returns the active text caret position in world coordinates.
func (s *Session) Caret() (x, y float64, ok bool) {
	if s.caret == nil {
		return 0, 0, false
	}
	return s.caret.x, s.caret.y, true
}

// ActiveDrag returns the live world position of the element being dragged.
func (s *Session) ActiveDrag() (id string, x, y float64, ok bool) {
	if s.drag == nil {
		return "", 0, 0, false
	}
	return s.drag.id, s.drag.curX, s.drag.curY, true
}

// ActiveStroke returns the in-progress freehand stroke, or nil.
func (s *Session) ActiveStroke() []StrokePoint {
	if !s.penActive {
		return nil
	}
	return s.stroke
}

// PendingConnectSource returns the element picked as connection source,
// or "" when no pick is pending.
func (s *Session) PendingConnectSource() string { return s.connectFrom }

// Guides returns the snap guide lines of the drag in progress.
func (s *Session) Guides() []vector.GuideLine { return s.guides }

// Selected reports whether the element is in the active selection.
func (s *Session) Selected(id string) bool {
	_, ok := s.selection[id]
	return ok
}

// Selection returns the ids of the active selection.
func (s *Session) Selection() []string {
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	return out
}

// BeginPaletteDrag starts an external drag session from the palette. The
// payload replaces any drag already active.
func (s *Session) BeginPaletteDrag(kind domain.ElementKind, refID string) {
	s.palette = &paletteDragState{kind: kind, refID: refID}
}

// MovePaletteDrag tracks the pointer during an active external drag so the
// renderer can show a floating preview.
func (s *Session) MovePaletteDrag(px, py float64) {
	if s.palette == nil {
		return
	}
	s.palette.x, s.palette.y = px, py
	s.palette.hasPointer = true
}

// DropPaletteDrag completes the drag. When the drop lands on the canvas
// the element is created at the drop's world position; either way the
// drag session ends.
func (s *Session) DropPaletteDrag(px, py float64, overCanvas bool) {
	p := s.palette
	s.palette = nil
	if p == nil || !overCanvas {
		return
	}
	wx, wy := s.view.ScreenToWorld(px, py)
	s.ingest.RequestAdd(AddRequest{Kind: p.kind, RefID: p.refID, X: wx, Y: wy, HasPos: true})
}

// EndPaletteDrag aborts the drag session without creating anything,
// mirroring the palette's drag-end notification.
func (s *Session) EndPaletteDrag() { s.palette = nil }

// PaletteDragActive reports whether an external drag session is open.
func (s *Session) PaletteDragActive() bool { return s.palette != nil }

// PaletteDrag returns the drag payload and the preview position. preview
// is false until the pointer has been seen over the canvas.
func (s *Session) PaletteDrag() (kind domain.ElementKind, refID string, x, y float64, preview bool) {
	if s.palette == nil {
		return "", "", 0, 0, false
	}
	return s.palette.kind, s.palette.refID, s.palette.x, s.palette.y, s.palette.hasPointer
}
