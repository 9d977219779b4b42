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

	"storycanvas/internal/domain"
)

// Placement region for adds that come without coordinates (toolbar "+"
// instead of a canvas drop). Positions are scattered pseudo-randomly so
// new cards do not stack exactly on top of each other.
const (
	placeOriginX = 120
	placeOriginY = 120
	placeSpreadX = 400
	placeSpreadY = 300
)

// AddRequest describes one element entering the model, from a palette
// click, a canvas drop, or tool completion. HasPos distinguishes an
// explicit world position from the scatter fallback.
type AddRequest struct {
	Kind    domain.ElementKind
	RefID   string
	Content string
	X, Y    float64
	HasPos  bool
}

// Ingestor converts add requests into model entries, applying per-kind
// size and style defaults.
type Ingestor struct {
	model *Model
	rand  *rand.Rand
}

// NewIngestor binds an ingestor to a model. Pass a non-nil rng for
// deterministic placement in tests; nil uses the global source.
func NewIngestor(m *Model, rng *rand.Rand) *Ingestor {
	return &Ingestor{model: m, rand: rng}
}

// RequestAdd creates a new element and returns it as stored.
func (g *Ingestor) RequestAdd(req AddRequest) domain.Element {
	x, y := req.X, req.Y
	if !req.HasPos {
		x = placeOriginX + g.float64()*placeSpreadX
		y = placeOriginY + g.float64()*placeSpreadY
	}
	w, h := DefaultSize(req.Kind)
	el := domain.Element{
		Kind:    req.Kind,
		RefID:   req.RefID,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		Content: req.Content,
		Style:   domain.ElementStyle{Background: DefaultTint(req.Kind)},
	}
	return g.model.Add(el)
}

// AddDrawing finalizes a freehand stroke into a drawing element positioned
// at the stroke's top-left bound. The point list is stored relative to
// that origin. A degenerate single-point stroke still yields an element.
func (g *Ingestor) AddDrawing(points []StrokePoint) domain.Element {
	minX, minY, maxX, maxY := strokeBounds(points)
	rel := make([]StrokePoint, len(points))
	for i, p := range points {
		rel[i] = StrokePoint{X: p.X - minX, Y: p.Y - minY}
	}
	el := domain.Element{
		Kind:    domain.KindDrawing,
		X:       minX,
		Y:       minY,
		Width:   maxX - minX,
		Height:  maxY - minY,
		Content: EncodeStroke(rel),
	}
	return g.model.Add(el)
}

// AddNote creates a note element at a world position. Empty content is
// accepted unchanged.
func (g *Ingestor) AddNote(content string, x, y float64) domain.Element {
	return g.RequestAdd(AddRequest{Kind: domain.KindNote, Content: content, X: x, Y: y, HasPos: true})
}

func (g *Ingestor) float64() float64 {
	if g.rand != nil {
		return g.rand.Float64()
	}
	return rand.Float64()
}
