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
	"storycanvas/internal/vector"
)

type mapResolver map[string]string

func (r mapResolver) EntityName(_ domain.ElementKind, refID string) (string, bool) {
	name, ok := r[refID]
	return name, ok
}

func walk(n vector.Node, f func(vector.Node)) {
	f(n)
	if g, ok := n.(*vector.Group); ok {
		for _, c := range g.Children {
			walk(c, f)
		}
	}
}

func textNodes(root vector.Node) []*vector.TextNode {
	var out []*vector.TextNode
	walk(root, func(n vector.Node) {
		if t, ok := n.(*vector.TextNode); ok {
			out = append(out, t)
		}
	})
	return out
}

func hasText(root vector.Node, s string) bool {
	for _, t := range textNodes(root) {
		if t.Text == s {
			return true
		}
	}
	return false
}

func countFilledPaths(root vector.Node) int {
	n := 0
	walk(root, func(node vector.Node) {
		if p, ok := node.(*vector.PathNode); ok && p.Fill().Enabled {
			n++
		}
	})
	return n
}

func TestTitleResolvedAtRenderTime(t *testing.T) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	names := mapResolver{"ch-7": "Ada"}
	m.Add(domain.Element{Kind: domain.KindCharacter, RefID: "ch-7", X: 100, Y: 100, Width: 160, Height: 90})

	r := NewRenderer(m, v, nil, names, GridSettings{Hidden: true})
	if !hasText(r.Build(800, 600), "Ada") {
		t.Fatalf("card title missing")
	}

	// An external rename must show up on the next build, not a cached name.
	names["ch-7"] = "Countess Ada"
	scene := r.Build(800, 600)
	if !hasText(scene, "Countess Ada") {
		t.Fatalf("renamed title not resolved")
	}
	if hasText(scene, "Ada") {
		t.Fatalf("stale title rendered")
	}
}

func TestOneCurvePerUnorderedEdge(t *testing.T) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	a := addCard(m, 0, 0)
	b := addCard(m, 400, 0)
	m.Connect(a.ID, b.ID)
	m.Connect(b.ID, a.ID) // duplicate in reverse order

	r := NewRenderer(m, v, nil, nil, GridSettings{Hidden: true})
	// Arrowheads are the only filled paths in a card-only scene, one per edge.
	if got := countFilledPaths(r.Build(800, 600)); got != 1 {
		t.Fatalf("filled paths = %d, want 1", got)
	}
}

func TestBadDrawingGeometrySkipped(t *testing.T) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	m.Add(domain.Element{Kind: domain.KindDrawing, X: 0, Y: 0, Content: "{not json"})
	good := m.Add(domain.Element{Kind: domain.KindDrawing, X: 10, Y: 10, Width: 40, Height: 0,
		Content: EncodeStroke([]StrokePoint{{0, 0}, {40, 0}})})

	r := NewRenderer(m, v, nil, nil, GridSettings{Hidden: true})
	scene := r.Build(800, 600)
	paths := 0
	walk(scene, func(n vector.Node) {
		if _, ok := n.(*vector.PathNode); ok {
			paths++
		}
	})
	if paths != 1 {
		t.Fatalf("paths = %d, want only the good drawing", paths)
	}
	if _, ok := m.Element(good.ID); !ok {
		t.Fatalf("good drawing missing from model")
	}
}

func TestGridClippedToViewport(t *testing.T) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	r := NewRenderer(m, v, nil, nil, GridSettings{Spacing: 20, MajorEvery: 5})

	lines := 0
	walk(r.Build(100, 100), func(n vector.Node) {
		if _, ok := n.(*vector.LineNode); ok {
			lines++
		}
	})
	// World extent 0..100 at spacing 20: lines at 0,20,...,100 per axis.
	if lines != 12 {
		t.Fatalf("grid lines = %d, want 12", lines)
	}

	// Panning shifts the visible world window; the count stays bounded.
	v.PanBy(-7, -7)
	lines = 0
	walk(r.Build(100, 100), func(n vector.Node) {
		if _, ok := n.(*vector.LineNode); ok {
			lines++
		}
	})
	if lines < 10 || lines > 14 {
		t.Fatalf("grid lines after pan = %d", lines)
	}
}

func TestDraggedElementRendersAtLivePosition(t *testing.T) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	g := NewIngestor(m, rand.New(rand.NewSource(1)))
	s := NewSession(m, v, g, SessionOptions{})
	addCard(m, 100, 100)

	s.PointerDown(PointerEvent{X: 110, Y: 110})
	s.PointerMove(PointerEvent{X: 310, Y: 110})

	r := NewRenderer(m, v, s, nil, GridSettings{Hidden: true})
	found := false
	walk(r.Build(800, 600), func(n vector.Node) {
		if rr, ok := n.(*vector.RoundedRectNode); ok && rr.Rect().W == 160 && rr.Rect().X == 300 {
			found = true
		}
	})
	if !found {
		t.Fatalf("card not rendered at live drag position")
	}
}

func TestPaletteDragPreviewRendered(t *testing.T) {
	m := NewModel("b1", nil)
	v := NewViewport(nil)
	g := NewIngestor(m, rand.New(rand.NewSource(1)))
	s := NewSession(m, v, g, SessionOptions{})

	r := NewRenderer(m, v, s, nil, GridSettings{Hidden: true})
	s.BeginPaletteDrag(domain.KindNote, "")
	// No preview until the pointer has been seen over the canvas.
	rects := 0
	walk(r.Build(800, 600), func(n vector.Node) {
		if _, ok := n.(*vector.RoundedRectNode); ok {
			rects++
		}
	})
	if rects != 0 {
		t.Fatalf("preview before pointer tracking")
	}

	s.MovePaletteDrag(222, 111)
	found := false
	walk(r.Build(800, 600), func(n vector.Node) {
		if rr, ok := n.(*vector.RoundedRectNode); ok && rr.Rect().X == 222 && rr.Rect().Y == 111 {
			found = true
		}
	})
	if !found {
		t.Fatalf("floating preview missing")
	}
}
