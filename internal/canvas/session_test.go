/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math/rand"
	"testing"

	"storycanvas/internal/domain"
)

// fixture builds a model, identity viewport and session with snapping off
// so positions stay exact.
func fixture() (*Model, *Viewport, *Session) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	g := NewIngestor(m, rand.New(rand.NewSource(1)))
	s := NewSession(m, v, g, SessionOptions{})
	return m, v, s
}

func TestDragCommitsOnPointerUp(t *testing.T) {
	m, _, s := fixture()
	el := addCard(m, 100, 100)

	s.PointerDown(PointerEvent{X: 110, Y: 110})
	if !s.Selected(el.ID) {
		t.Fatalf("drag target not selected")
	}
	s.PointerMove(PointerEvent{X: 160, Y: 130})
	// Live position is visual only until pointer-up.
	got, _ := m.Element(el.ID)
	if got.X != 100 || got.Y != 100 {
		t.Fatalf("model mutated mid-drag: (%v,%v)", got.X, got.Y)
	}
	if id, x, y, ok := s.ActiveDrag(); !ok || id != el.ID || x != 150 || y != 120 {
		t.Fatalf("live drag = %v (%v,%v) %v", id, x, y, ok)
	}
	s.PointerUp(PointerEvent{X: 160, Y: 130})
	got, _ = m.Element(el.ID)
	if got.X != 150 || got.Y != 120 {
		t.Fatalf("committed position = (%v,%v)", got.X, got.Y)
	}
	if got.Width != 160 || got.Height != 90 {
		t.Fatalf("size changed by drag: %vx%v", got.Width, got.Height)
	}
	if _, _, _, ok := s.ActiveDrag(); ok {
		t.Fatalf("drag survived pointer-up")
	}
}

func TestDragRespectsZoom(t *testing.T) {
	m, v, s := fixture()
	v.Restore(domain.ViewportState{Zoom: 2, PanX: 50, PanY: 50})
	el := addCard(m, 100, 100) // on screen at 250,250

	s.PointerDown(PointerEvent{X: 260, Y: 260})
	s.PointerMove(PointerEvent{X: 360, Y: 260}) // +100 screen = +50 world
	s.PointerUp(PointerEvent{X: 360, Y: 260})
	got, _ := m.Element(el.ID)
	if got.X != 150 || got.Y != 100 {
		t.Fatalf("position = (%v,%v), want (150,100)", got.X, got.Y)
	}
}

func TestMiddleButtonPans(t *testing.T) {
	m, v, s := fixture()
	addCard(m, 0, 0)
	s.PointerDown(PointerEvent{X: 400, Y: 400, Button: ButtonMiddle})
	s.PointerMove(PointerEvent{X: 430, Y: 390, Button: ButtonMiddle})
	if px, py := v.Pan(); px != 30 || py != -10 {
		t.Fatalf("pan = (%v,%v)", px, py)
	}
	// Panning never touches the model.
	el := m.Elements()[0]
	if el.X != 0 || el.Y != 0 {
		t.Fatalf("element moved by pan")
	}
	s.PointerUp(PointerEvent{X: 430, Y: 390, Button: ButtonMiddle})
}

func TestPanModifierOnEmptyCanvas(t *testing.T) {
	_, v, s := fixture()
	s.PointerDown(PointerEvent{X: 10, Y: 10, PanModifier: true})
	s.PointerMove(PointerEvent{X: 25, Y: 10})
	if px, _ := v.Pan(); px != 15 {
		t.Fatalf("pan x = %v", px)
	}
	s.PointerUp(PointerEvent{X: 25, Y: 10})
}

func TestConnectModeTwoClicks(t *testing.T) {
	m, _, s := fixture()
	a := addCard(m, 0, 0)
	b := addCard(m, 400, 0)

	s.SetMode(ModeConnect)
	s.PointerDown(PointerEvent{X: 10, Y: 10})
	if s.PendingConnectSource() != a.ID {
		t.Fatalf("pending source = %q", s.PendingConnectSource())
	}
	s.PointerDown(PointerEvent{X: 410, Y: 10})
	if !m.Connected(a.ID, b.ID) || len(m.Edges()) != 1 {
		t.Fatalf("edges = %v", m.Edges())
	}
	if s.Mode() != ModeSelect {
		t.Fatalf("mode after commit = %v", s.Mode())
	}
}

func TestConnectModeSameElementIgnored(t *testing.T) {
	m, _, s := fixture()
	a := addCard(m, 0, 0)
	s.SetMode(ModeConnect)
	s.PointerDown(PointerEvent{X: 10, Y: 10})
	s.PointerDown(PointerEvent{X: 20, Y: 20}) // same element
	if len(m.Edges()) != 0 {
		t.Fatalf("self pick created an edge")
	}
	if s.Mode() != ModeConnect || s.PendingConnectSource() != a.ID {
		t.Fatalf("pick state changed: mode=%v source=%q", s.Mode(), s.PendingConnectSource())
	}
	// Empty canvas is ignored too.
	s.PointerDown(PointerEvent{X: 900, Y: 900})
	if s.PendingConnectSource() != a.ID {
		t.Fatalf("empty click cleared the pick")
	}
}

func TestPenStrokeCreatesDrawing(t *testing.T) {
	m, _, s := fixture()
	s.SetMode(ModePen)
	s.PointerDown(PointerEvent{X: 10, Y: 10})
	s.PointerMove(PointerEvent{X: 30, Y: 25})
	s.PointerMove(PointerEvent{X: 50, Y: 10})
	s.PointerUp(PointerEvent{X: 50, Y: 10})

	els := m.Elements()
	if len(els) != 1 {
		t.Fatalf("elements = %d", len(els))
	}
	d := els[0]
	if d.Kind != domain.KindDrawing {
		t.Fatalf("kind = %v", d.Kind)
	}
	if d.X != 10 || d.Y != 10 {
		t.Fatalf("origin = (%v,%v), want (10,10)", d.X, d.Y)
	}
	if d.Width != 40 || d.Height != 15 {
		t.Fatalf("size = %vx%v", d.Width, d.Height)
	}
	pts, err := DecodeStroke(d.Content)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pts) != 3 || pts[0] != (StrokePoint{0, 0}) || pts[2] != (StrokePoint{40, 0}) {
		t.Fatalf("points = %v", pts)
	}
}

func TestPenDegeneratePointStroke(t *testing.T) {
	m, _, s := fixture()
	s.SetMode(ModePen)
	s.PointerDown(PointerEvent{X: 77, Y: 33})
	s.PointerUp(PointerEvent{X: 77, Y: 33})
	els := m.Elements()
	if len(els) != 1 {
		t.Fatalf("elements = %d", len(els))
	}
	d := els[0]
	if d.X != 77 || d.Y != 33 || d.Width != 0 || d.Height != 0 {
		t.Fatalf("degenerate drawing = %+v", d)
	}
}

func TestTextCommitCreatesNote(t *testing.T) {
	m, _, s := fixture()
	s.SetMode(ModeText)
	s.PointerDown(PointerEvent{X: 40, Y: 60})
	if _, _, ok := s.Caret(); !ok {
		t.Fatalf("no caret after pointer-down")
	}
	s.CommitText("midpoint twist")
	els := m.Elements()
	if len(els) != 1 || els[0].Kind != domain.KindNote || els[0].Content != "midpoint twist" {
		t.Fatalf("note = %+v", els)
	}
	if els[0].X != 40 || els[0].Y != 60 {
		t.Fatalf("note position = (%v,%v)", els[0].X, els[0].Y)
	}
	if _, _, ok := s.Caret(); ok {
		t.Fatalf("caret survived commit")
	}
}

func TestTextEmptyCommitStillCreatesNote(t *testing.T) {
	// Committing with no content creates an empty note. Arguably a
	// usability gap, but validation here would silently drop input the
	// user asked to place.
	m, _, s := fixture()
	s.SetMode(ModeText)
	s.PointerDown(PointerEvent{X: 5, Y: 5})
	s.CommitText("")
	if m.Len() != 1 || m.Elements()[0].Content != "" {
		t.Fatalf("empty commit did not create a note")
	}
}

func TestTextCancelDiscardsCaret(t *testing.T) {
	m, _, s := fixture()
	s.SetMode(ModeText)
	s.PointerDown(PointerEvent{X: 5, Y: 5})
	s.CancelText()
	s.CommitText("late")
	if m.Len() != 0 {
		t.Fatalf("commit after cancel created an element")
	}
}

func TestEraserRemovesWithCascade(t *testing.T) {
	m, _, s := fixture()
	a := addCard(m, 0, 0)
	b := addCard(m, 400, 0)
	m.Connect(a.ID, b.ID)

	s.SetMode(ModeEraser)
	s.PointerDown(PointerEvent{X: 10, Y: 10})
	if _, ok := m.Element(a.ID); ok {
		t.Fatalf("element survived eraser")
	}
	if len(m.Edges()) != 0 {
		t.Fatalf("dangling edge after erase: %v", m.Edges())
	}
	// Dragging the eraser over the second card removes it too.
	s.PointerMove(PointerEvent{X: 410, Y: 10})
	if m.Len() != 0 {
		t.Fatalf("elements remain: %d", m.Len())
	}
	s.PointerUp(PointerEvent{X: 410, Y: 10})
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	m, _, s := fixture()
	a := addCard(m, 0, 0)
	b := addCard(m, 400, 0)
	m.Connect(a.ID, b.ID)

	s.PointerDown(PointerEvent{X: 10, Y: 10})
	s.PointerUp(PointerEvent{X: 10, Y: 10})
	s.KeyDown(KeyDelete)
	if _, ok := m.Element(a.ID); ok {
		t.Fatalf("selected element survived delete key")
	}
	if len(m.Edges()) != 0 {
		t.Fatalf("cascade missed: %v", m.Edges())
	}
	// With nothing selected the key is inert.
	s.KeyDown(KeyBackspace)
	if m.Len() != 1 {
		t.Fatalf("unselected element deleted")
	}
}

func TestModeSwitchCancelsGesture(t *testing.T) {
	m, _, s := fixture()
	s.SetMode(ModePen)
	s.PointerDown(PointerEvent{X: 10, Y: 10})
	s.PointerMove(PointerEvent{X: 90, Y: 90})
	s.SetMode(ModeSelect)
	if m.Len() != 0 {
		t.Fatalf("cancelled stroke was committed")
	}
	if s.ActiveStroke() != nil {
		t.Fatalf("stroke state survived mode switch")
	}

	// A pending connect pick is dropped the same way.
	addCard(m, 0, 0)
	s.SetMode(ModeConnect)
	s.PointerDown(PointerEvent{X: 10, Y: 10})
	s.SetMode(ModeSelect)
	s.SetMode(ModeConnect)
	if s.PendingConnectSource() != "" {
		t.Fatalf("connect pick survived mode switch")
	}
}

func TestSnapAlignsDraggedElement(t *testing.T) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	g := NewIngestor(m, rand.New(rand.NewSource(1)))
	s := NewSession(m, v, g, SessionOptions{SnapEnabled: true, SnapThreshold: 6})

	addCard(m, 100, 300) // anchor with left edge at x=100
	el := addCard(m, 500, 0)

	s.PointerDown(PointerEvent{X: 510, Y: 10})
	// Target position x=103 is within threshold of the anchor's edge.
	s.PointerMove(PointerEvent{X: 113, Y: 10})
	if _, x, _, _ := s.ActiveDrag(); x != 100 {
		t.Fatalf("snapped x = %v, want 100", x)
	}
	if len(s.Guides()) == 0 {
		t.Fatalf("no guides during snap")
	}
	s.PointerUp(PointerEvent{X: 113, Y: 10})
	got, _ := m.Element(el.ID)
	if got.X != 100 {
		t.Fatalf("committed x = %v, want 100", got.X)
	}
	if s.Guides() != nil {
		t.Fatalf("guides survived pointer-up")
	}
}

func TestPaletteDragDrop(t *testing.T) {
	m, v, s := fixture()
	v.Restore(domain.ViewportState{Zoom: 2})

	s.BeginPaletteDrag(domain.KindLocation, "loc-9")
	if !s.PaletteDragActive() {
		t.Fatalf("drag not active")
	}
	s.MovePaletteDrag(200, 100)
	s.DropPaletteDrag(200, 100, true)
	if s.PaletteDragActive() {
		t.Fatalf("drag survived drop")
	}
	els := m.Elements()
	if len(els) != 1 {
		t.Fatalf("elements = %d", len(els))
	}
	el := els[0]
	if el.Kind != domain.KindLocation || el.RefID != "loc-9" {
		t.Fatalf("dropped element = %+v", el)
	}
	if el.X != 100 || el.Y != 50 { // screen 200,100 at zoom 2
		t.Fatalf("drop position = (%v,%v)", el.X, el.Y)
	}
}

func TestPaletteDragMissesCanvas(t *testing.T) {
	m, _, s := fixture()
	s.BeginPaletteDrag(domain.KindCharacter, "ch-1")
	s.DropPaletteDrag(0, 0, false)
	if m.Len() != 0 {
		t.Fatalf("off-canvas drop created an element")
	}
	if s.PaletteDragActive() {
		t.Fatalf("drag session still open")
	}

	s.BeginPaletteDrag(domain.KindCharacter, "ch-1")
	s.EndPaletteDrag()
	if s.PaletteDragActive() {
		t.Fatalf("drag survived end notification")
	}
}
