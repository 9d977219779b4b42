/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Alignment guides and snapping helpers for interactive element dragging.
// These utilities are UI-agnostic and deterministic to enable unit testing and
// reuse across different frontends.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance (in the same units as Rect) at which
	// snapping occurs. Typical UI values are 6–8 points/pixels.
	Threshold float32
	// Snap to edges (left, right, top, bottom)
	SnapToEdges bool
	// Snap to centers (cx, cy)
	SnapToCenters bool
}

// Anchor represents a static reference rect (e.g., another element's bounds).
// Weight can be used to bias selection when distances tie (higher = preferred).
// When uncertain, set Weight to 1.
type Anchor struct {
	Rect   Rect
	Weight float32
}

// GuideLine describes a visual guide generated during a snap alignment.
// Orientation is "vertical" or "horizontal"; Kind is "edge" or "center".
// From and To denote the guide extents for rendering. Position is the x
// (vertical) or y (horizontal) coordinate of the guide. Values are rounded
// to 3 decimal places for deterministic behavior.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float32
	From        Pt
	To          Pt
}

// axisBest tracks the winning snap candidate on one axis.
type axisBest struct {
	delta float32
	dist  float32
	guide GuideLine
}

func (b *axisBest) consider(delta, threshold, weight float32, g GuideLine) {
	dist := float32(math.Abs(float64(delta)))
	if dist > threshold {
		return
	}
	if weight < 1 {
		weight = 1
	}
	if dist/weight < b.dist {
		b.dist = dist
		b.delta = delta
		b.guide = g
	}
}

// SnapToAnchors computes snapping adjustments for a moving rectangle against a
// set of anchors. It returns the snapped rectangle and any guide lines to
// render for visual feedback. Snapping happens independently in X and Y.
func SnapToAnchors(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}

	bx := axisBest{dist: +1e9}
	by := axisBest{dist: +1e9}

	mL, mR := moving.X, moving.X+moving.W
	mT, mB := moving.Y, moving.Y+moving.H
	mCX, mCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		aL, aR := a.Rect.X, a.Rect.X+a.Rect.W
		aT, aB := a.Rect.Y, a.Rect.Y+a.Rect.H
		aCX, aCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.SnapToEdges {
			// edge-to-edge on X: left/left, right/right, and abutting pairs
			bx.consider(mL-aL, opts.Threshold, a.Weight, verticalGuide(aL, moving, a.Rect, "edge"))
			bx.consider(mR-aR, opts.Threshold, a.Weight, verticalGuide(aR, moving, a.Rect, "edge"))
			bx.consider(mL-aR, opts.Threshold, a.Weight, verticalGuide(aR, moving, a.Rect, "edge"))
			bx.consider(mR-aL, opts.Threshold, a.Weight, verticalGuide(aL, moving, a.Rect, "edge"))
			// and on Y
			by.consider(mT-aT, opts.Threshold, a.Weight, horizontalGuide(aT, moving, a.Rect, "edge"))
			by.consider(mB-aB, opts.Threshold, a.Weight, horizontalGuide(aB, moving, a.Rect, "edge"))
			by.consider(mT-aB, opts.Threshold, a.Weight, horizontalGuide(aB, moving, a.Rect, "edge"))
			by.consider(mB-aT, opts.Threshold, a.Weight, horizontalGuide(aT, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			bx.consider(mCX-aCX, opts.Threshold, a.Weight, verticalGuide(aCX, moving, a.Rect, "center"))
			by.consider(mCY-aCY, opts.Threshold, a.Weight, horizontalGuide(aCY, moving, a.Rect, "center"))
		}
	}

	snapped := moving
	var guides []GuideLine
	if bx.dist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.dist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func verticalGuide(x float32, a Rect, b Rect, kind string) GuideLine {
	minY := min(a.Y, b.Y)
	maxY := max(a.Y+a.H, b.Y+b.H)
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, minY},
		To:          Pt{x, maxY},
	}
}

func horizontalGuide(y float32, a Rect, b Rect, kind string) GuideLine {
	minX := min(a.X, b.X)
	maxX := max(a.X+a.W, b.X+b.W)
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{minX, y},
		To:          Pt{maxX, y},
	}
}
