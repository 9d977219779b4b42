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

func TestRequestAddExplicitPosition(t *testing.T) {
	m := NewModel("b1", nil)
	g := NewIngestor(m, rand.New(rand.NewSource(1)))
	el := g.RequestAdd(AddRequest{Kind: domain.KindCharacter, RefID: "ch-1", X: 42, Y: 24, HasPos: true})
	if el.X != 42 || el.Y != 24 {
		t.Fatalf("position = (%v,%v)", el.X, el.Y)
	}
	if el.Width != 160 || el.Height != 90 {
		t.Fatalf("character card size = %vx%v", el.Width, el.Height)
	}
	if el.ID == "" {
		t.Fatalf("no id assigned")
	}
	if el.Style.Background != DefaultTint(domain.KindCharacter) {
		t.Fatalf("background = %q", el.Style.Background)
	}
}

func TestRequestAddScatterFallback(t *testing.T) {
	m := NewModel("b1", nil)
	g := NewIngestor(m, rand.New(rand.NewSource(7)))
	seen := map[[2]float64]bool{}
	for i := 0; i < 20; i++ {
		el := g.RequestAdd(AddRequest{Kind: domain.KindPlotPoint})
		if el.X < placeOriginX || el.X > placeOriginX+placeSpreadX ||
			el.Y < placeOriginY || el.Y > placeOriginY+placeSpreadY {
			t.Fatalf("placement (%v,%v) outside region", el.X, el.Y)
		}
		seen[[2]float64{el.X, el.Y}] = true
	}
	if len(seen) < 19 {
		t.Fatalf("placements stack: %d distinct of 20", len(seen))
	}
}

func TestNoteDefaultsWiderShorter(t *testing.T) {
	m := NewModel("b1", nil)
	g := NewIngestor(m, rand.New(rand.NewSource(1)))
	note := g.AddNote("hi", 0, 0)
	card := g.RequestAdd(AddRequest{Kind: domain.KindLocation, HasPos: true})
	if note.Width <= card.Width {
		t.Fatalf("note width %v not wider than card %v", note.Width, card.Width)
	}
	if note.Height >= card.Height {
		t.Fatalf("note height %v not shorter than card %v", note.Height, card.Height)
	}
}

func TestKindTintsDistinct(t *testing.T) {
	kinds := []domain.ElementKind{domain.KindCharacter, domain.KindLocation, domain.KindPlotPoint, domain.KindNote}
	seen := map[string]domain.ElementKind{}
	for _, k := range kinds {
		tint := DefaultTint(k)
		if prev, dup := seen[tint]; dup {
			t.Fatalf("%s and %s share tint %s", prev, k, tint)
		}
		seen[tint] = k
	}
}

func TestAddDrawingRelativeGeometry(t *testing.T) {
	m := NewModel("b1", nil)
	g := NewIngestor(m, rand.New(rand.NewSource(1)))
	el := g.AddDrawing([]StrokePoint{{X: 100, Y: 200}, {X: 140, Y: 180}})
	if el.X != 100 || el.Y != 180 {
		t.Fatalf("origin = (%v,%v), want top-left bound (100,180)", el.X, el.Y)
	}
	if el.Width != 40 || el.Height != 20 {
		t.Fatalf("size = %vx%v", el.Width, el.Height)
	}
	pts, err := DecodeStroke(el.Content)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pts[0] != (StrokePoint{X: 0, Y: 20}) || pts[1] != (StrokePoint{X: 40, Y: 0}) {
		t.Fatalf("relative points = %v", pts)
	}
}
