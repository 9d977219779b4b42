/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and shapes.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float32 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float32{x, y}})
}
func (p *Path) LineTo(x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float32{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float32{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float32{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// bboxAcc accumulates points into a bounding box.
type bboxAcc struct {
	minX, minY, maxX, maxY float32
	seen                   bool
}

func (b *bboxAcc) add(p Pt) {
	if !b.seen {
		b.minX, b.maxX, b.minY, b.maxY = p.X, p.X, p.Y, p.Y
		b.seen = true
		return
	}
	b.minX = min(b.minX, p.X)
	b.minY = min(b.minY, p.Y)
	b.maxX = max(b.maxX, p.X)
	b.maxY = max(b.maxY, p.Y)
}

func (b *bboxAcc) rect() Rect {
	if !b.seen {
		return Rect{}
	}
	return Rect{X: b.minX, Y: b.minY, W: b.maxX - b.minX, H: b.maxY - b.minY}
}

// Bounds returns an axis-aligned bounding box of the path using a simple
// approximation by considering control points. This is sufficient for UI layout
// and selection rectangles; exporters can use tighter bounds later.
func (p *Path) Bounds() Rect {
	var acc bboxAcc
	cur := Pt{}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			cur = Pt{c.Data[0], c.Data[1]}
			acc.add(cur)
		case QuadTo:
			acc.add(cur)
			acc.add(Pt{c.Data[0], c.Data[1]})
			cur = Pt{c.Data[2], c.Data[3]}
			acc.add(cur)
		case CubicTo:
			acc.add(cur)
			acc.add(Pt{c.Data[0], c.Data[1]})
			acc.add(Pt{c.Data[2], c.Data[3]})
			cur = Pt{c.Data[4], c.Data[5]}
			acc.add(cur)
		case Close:
			// no-op for bounds
		}
	}
	return acc.rect()
}

// EndTangent returns the unit direction of the path at its final on-curve
// point, derived from the last command's control geometry. The bool result is
// false when the path is empty or degenerate (no direction can be derived).
func (p *Path) EndTangent() (Pt, bool) {
	var prev, end Pt
	havePrev := false
	cur := Pt{}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			cur = Pt{c.Data[0], c.Data[1]}
		case LineTo:
			prev, havePrev = cur, true
			cur = Pt{c.Data[0], c.Data[1]}
		case QuadTo:
			prev, havePrev = Pt{c.Data[0], c.Data[1]}, true
			cur = Pt{c.Data[2], c.Data[3]}
		case CubicTo:
			prev, havePrev = Pt{c.Data[2], c.Data[3]}, true
			cur = Pt{c.Data[4], c.Data[5]}
		case Close:
			// keeps the last segment direction
		}
	}
	end = cur
	if !havePrev {
		return Pt{}, false
	}
	d := Dist(prev, end)
	if d == 0 {
		return Pt{}, false
	}
	return Pt{(end.X - prev.X) / d, (end.Y - prev.Y) / d}, true
}
