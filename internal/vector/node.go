/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a scene-graph item that can be rendered by different backends
// (raster, SVG, PDF, a live widget). It supports basic transforms, styling,
// bounds, and hit-testing. The draw list produced by the canvas renderer is an
// ordered Group of these.

type Node interface {
	Bounds() Rect
	Transform() Affine2D
	SetTransform(Affine2D)
	Fill() Fill
	Stroke() Stroke
	SetFill(Fill)
	SetStroke(Stroke)
	Hit(p Pt) bool
}

type baseNode struct {
	xf     Affine2D
	fill   Fill
	stroke Stroke
}

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }
func (b *baseNode) Fill() Fill              { return b.fill }
func (b *baseNode) Stroke() Stroke          { return b.stroke }
func (b *baseNode) SetFill(f Fill)          { b.fill = f }
func (b *baseNode) SetStroke(s Stroke)      { b.stroke = s }

// transformedBounds maps rect corners through xf and re-boxes them.
func transformedBounds(xf Affine2D, r Rect) Rect {
	var acc bboxAcc
	for _, c := range []Pt{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X, r.Y + r.H}, {r.X + r.W, r.Y + r.H}} {
		acc.add(xf.Apply(c))
	}
	return acc.rect()
}

// LineNode is a straight segment, used for grid lines and alignment guides.
type LineNode struct {
	baseNode
	From, To Pt
}

func NewLine(from, to Pt, s Stroke) *LineNode {
	return &LineNode{baseNode: baseNode{xf: Identity, stroke: s}, From: from, To: to}
}

func (n *LineNode) Bounds() Rect {
	var acc bboxAcc
	acc.add(n.xf.Apply(n.From))
	acc.add(n.xf.Apply(n.To))
	return acc.rect()
}

// Hit for lines checks proximity within half the stroke width (minimum 2).
func (n *LineNode) Hit(p Pt) bool {
	q := n.xf.Invert().Apply(p)
	tol := max(2, n.stroke.Width/2)
	// project q onto the segment
	dx, dy := n.To.X-n.From.X, n.To.Y-n.From.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Dist(q, n.From) <= tol
	}
	t := ((q.X-n.From.X)*dx + (q.Y-n.From.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := Pt{n.From.X + t*dx, n.From.Y + t*dy}
	return Dist(q, closest) <= tol
}

// RectNode draws an axis-aligned rectangle before transform.
type RectNode struct {
	baseNode
	rect Rect
}

func NewRect(r Rect, f Fill, s Stroke) *RectNode {
	return &RectNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, rect: r}
}

func (n *RectNode) Rect() Rect   { return n.rect }
func (n *RectNode) Bounds() Rect { return transformedBounds(n.xf, n.rect) }

func (n *RectNode) Hit(p Pt) bool {
	q := n.xf.Invert().Apply(p)
	return n.rect.Contains(q)
}

// RoundedRectNode uses uniform radii for simplicity.
type RoundedRectNode struct {
	baseNode
	rect Rect
	r    float32
}

func NewRoundedRect(r Rect, radius float32, f Fill, s Stroke) *RoundedRectNode {
	return &RoundedRectNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, rect: r, r: radius}
}

func (n *RoundedRectNode) Rect() Rect      { return n.rect }
func (n *RoundedRectNode) Radius() float32 { return n.r }
func (n *RoundedRectNode) Bounds() Rect    { return transformedBounds(n.xf, n.rect) }

func (n *RoundedRectNode) Hit(p Pt) bool {
	q := n.xf.Invert().Apply(p)
	if !n.rect.Contains(q) {
		return false
	}
	// Inside the core (rect inset by r) is always a hit
	core := n.rect.Inset(n.r, n.r)
	if core.W > 0 && core.H > 0 && core.Contains(q) {
		return true
	}
	// Otherwise test the four quarter-circles
	cx := []float32{n.rect.X + n.r, n.rect.X + n.rect.W - n.r}
	cy := []float32{n.rect.Y + n.r, n.rect.Y + n.rect.H - n.r}
	r2 := n.r * n.r
	for _, x := range cx {
		for _, y := range cy {
			dx := q.X - x
			dy := q.Y - y
			if dx*dx+dy*dy <= r2 {
				return true
			}
		}
	}
	// Edge bands between the corner circles
	if q.X >= n.rect.X+n.r && q.X <= n.rect.X+n.rect.W-n.r {
		return true
	}
	if q.Y >= n.rect.Y+n.r && q.Y <= n.rect.Y+n.rect.H-n.r {
		return true
	}
	return false
}

// TextNode positions a single run of text at an anchor point. Size is the
// font size in canvas units; rendering backends choose the closest face.
type TextNode struct {
	baseNode
	Text   string
	At     Pt
	Size   float32
	Family string
}

func NewText(text string, at Pt, size float32, f Fill) *TextNode {
	return &TextNode{baseNode: baseNode{xf: Identity, fill: f}, Text: text, At: at, Size: size}
}

// Bounds approximates the text box from the rune count; backends that know
// their font metrics should measure properly (see internal/textlayout).
func (n *TextNode) Bounds() Rect {
	w := float32(len([]rune(n.Text))) * n.Size * 0.6
	return transformedBounds(n.xf, Rect{X: n.At.X, Y: n.At.Y - n.Size, W: w, H: n.Size * 1.2})
}

func (n *TextNode) Hit(p Pt) bool {
	q := n.xf.Invert().Apply(p)
	return n.Bounds().Contains(q)
}

// PathNode references a path geometry.
type PathNode struct {
	baseNode
	path Path
	bbox Rect // cached approx bounds
}

func NewPath(p Path, f Fill, s Stroke) *PathNode {
	return &PathNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, path: p, bbox: p.Bounds()}
}

func (n *PathNode) Path() Path   { return n.path }
func (n *PathNode) Bounds() Rect { return transformedBounds(n.xf, n.bbox) }

func (n *PathNode) Hit(p Pt) bool {
	// Simple bbox hit; exporters or advanced tools can do point-in-path later.
	q := n.xf.Invert().Apply(p)
	return n.bbox.Contains(q)
}

// Group is a container for child nodes with its own transform.
type Group struct {
	baseNode
	Children []Node
}

func NewGroup(children ...Node) *Group {
	g := &Group{baseNode: baseNode{xf: Identity}}
	g.Children = append(g.Children, children...)
	return g
}

func (g *Group) Add(n ...Node) { g.Children = append(g.Children, n...) }

func (g *Group) Bounds() Rect {
	var b Rect
	first := true
	for _, c := range g.Children {
		cb := c.Bounds()
		if first {
			b = cb
			first = false
		} else {
			b = b.Union(cb)
		}
	}
	return transformedBounds(g.xf, b)
}

func (g *Group) Hit(p Pt) bool {
	q := g.xf.Invert().Apply(p)
	for i := len(g.Children) - 1; i >= 0; i-- { // top-most first
		if g.Children[i].Hit(q) {
			return true
		}
	}
	return false
}
