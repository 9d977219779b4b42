/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"encoding/json"
	"fmt"
)

// StrokePoint is one sample of a freehand stroke.
type StrokePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EncodeStroke serializes a point list into the Content field of a drawing
// element. Points are stored relative to the element origin so the drawing
// can be moved without rewriting its geometry.
func EncodeStroke(points []StrokePoint) string {
	if points == nil {
		points = []StrokePoint{}
	}
	b, _ := json.Marshal(points)
	return string(b)
}

// DecodeStroke parses serialized stroke geometry. Callers skip the drawing
// on error rather than failing the whole redraw.
func DecodeStroke(content string) ([]StrokePoint, error) {
	var pts []StrokePoint
	if err := json.Unmarshal([]byte(content), &pts); err != nil {
		return nil, fmt.Errorf("stroke geometry: %w", err)
	}
	return pts, nil
}

// strokeBounds returns the axis-aligned bounds of a point list. A single
// point yields a zero-size box at that point.
func strokeBounds(points []StrokePoint) (minX, minY, maxX, maxY float64) {
	if len(points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = points[0].X, points[0].Y
	maxX, maxY = minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return minX, minY, maxX, maxY
}
