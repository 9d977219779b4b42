/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas implements the spatial board engine: the element and
// connection model, the pan/zoom viewport, the interaction state machine
// and the scene builder that turns a board into a drawable node tree.
package canvas

import (
	"storycanvas/internal/domain"
	"storycanvas/internal/vector"
)

// Per-kind defaults applied when an element is created without explicit
// size or style. Notes are wider and shorter than entity cards.
const (
	cardWidth  = 160
	cardHeight = 90
	noteWidth  = 200
	noteHeight = 70
)

// DefaultSize returns the creation size for a kind in world units.
// Drawings get their size from the stroke bounds, so the zero size
// returned here is only a placeholder.
func DefaultSize(kind domain.ElementKind) (w, h float64) {
	switch kind {
	case domain.KindNote:
		return noteWidth, noteHeight
	case domain.KindDrawing:
		return 0, 0
	default:
		return cardWidth, cardHeight
	}
}

// DefaultTint returns the background tint hex color for a kind.
func DefaultTint(kind domain.ElementKind) string {
	switch kind {
	case domain.KindCharacter:
		return "#dbeafe" // light blue
	case domain.KindLocation:
		return "#dcfce7" // light green
	case domain.KindPlotPoint:
		return "#fde8c8" // light amber
	case domain.KindNote:
		return "#fef9c3" // sticky yellow
	default:
		return "#ffffff"
	}
}

// KindAccent returns the saturated accent color used for the kind badge
// and the default border.
func KindAccent(kind domain.ElementKind) string {
	switch kind {
	case domain.KindCharacter:
		return "#2563eb"
	case domain.KindLocation:
		return "#16a34a"
	case domain.KindPlotPoint:
		return "#d97706"
	case domain.KindNote:
		return "#ca8a04"
	case domain.KindDrawing:
		return "#475569"
	default:
		return "#64748b"
	}
}

// KindGlyph returns the single-letter badge glyph for a kind.
func KindGlyph(kind domain.ElementKind) string {
	switch kind {
	case domain.KindCharacter:
		return "C"
	case domain.KindLocation:
		return "L"
	case domain.KindPlotPoint:
		return "P"
	case domain.KindNote:
		return "N"
	case domain.KindDrawing:
		return "D"
	default:
		return "?"
	}
}

// ElementRect returns the element's world-space bounding box.
func ElementRect(el domain.Element) vector.Rect {
	return vector.R(float32(el.X), float32(el.Y), float32(el.Width), float32(el.Height))
}
