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
	"math"
	"strings"

	applog "storycanvas/internal/log"

	"storycanvas/internal/domain"
	"storycanvas/internal/textlayout"
	"storycanvas/internal/vector"
)

// NameResolver looks up display names for referenced narrative entities.
// Titles are resolved at build time on every redraw, never cached, so an
// external rename shows up on the next frame.
type NameResolver interface {
	EntityName(kind domain.ElementKind, refID string) (string, bool)
}

// GridSettings controls the background grid. Spacing is the minor grid
// pitch in world units; the major grid runs at MajorEvery times that.
type GridSettings struct {
	Spacing    float64
	MajorEvery int
	Hidden     bool
}

// DefaultGrid is the stock 20-unit grid with a major line every fifth.
var DefaultGrid = GridSettings{Spacing: 20, MajorEvery: 5}

// Curve shaping for connection edges: the control point sits perpendicular
// to the chord at a distance proportional to its length, capped so long
// edges do not balloon.
const (
	edgeBendRatio = 0.15
	edgeBendMax   = 60
	arrowLen      = 12
	arrowHalfDeg  = 25
)

var (
	gridMinorColor  = vector.Color{R: 0xee, G: 0xf0, B: 0xf3, A: 0xff}
	gridMajorColor  = vector.Color{R: 0xd8, G: 0xdc, B: 0xe2, A: 0xff}
	cardBorderColor = vector.Color{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
	selectColor     = vector.Color{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	edgeColor       = vector.Color{R: 0x47, G: 0x55, B: 0x69, A: 0xff}
	guideColor      = vector.Color{R: 0xf4, G: 0x3f, B: 0x5e, A: 0xff}
	titleColor      = vector.Color{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	inkColor        = vector.Color{R: 0x33, G: 0x41, B: 0x55, A: 0xff}
)

// Renderer builds the scene graph for one board. It is a pure function of
// the model, viewport and session; the same inputs produce the same node
// tree in the same order.
type Renderer struct {
	model *Model
	view  *Viewport
	sess  *Session
	names NameResolver
	grid  GridSettings
	log   *slog.Logger
}

// NewRenderer wires a renderer. names may be nil when no entities are
// referenced; sess may be nil for static exports.
func NewRenderer(m *Model, v *Viewport, s *Session, names NameResolver, grid GridSettings) *Renderer {
	if grid.Spacing <= 0 {
		grid = DefaultGrid
	}
	if grid.MajorEvery <= 0 {
		grid.MajorEvery = DefaultGrid.MajorEvery
	}
	return &Renderer{
		model: m,
		view:  v,
		sess:  s,
		names: names,
		grid:  grid,
		log:   applog.WithComponent("canvas.render"),
	}
}

// Build produces the ordered draw list for a view surface of the given
// screen size: grid, cards, drawings, connection curves, then transient
// overlays (in-progress stroke, snap guides, caret, drop preview).
func (r *Renderer) Build(viewW, viewH float64) *vector.Group {
	zoom := r.view.Zoom()
	panX, panY := r.view.Pan()

	world := vector.NewGroup()
	world.SetTransform(vector.Translate(float32(panX), float32(panY)).Mul(vector.Scale(float32(zoom), float32(zoom))))

	r.buildGrid(world, viewW, viewH)

	for _, el := range r.model.Elements() {
		if el.Kind == domain.KindDrawing {
			continue
		}
		world.Add(r.buildCard(el))
	}
	for _, el := range r.model.Elements() {
		if el.Kind != domain.KindDrawing {
			continue
		}
		if n := r.buildDrawing(el); n != nil {
			world.Add(n)
		}
	}
	for _, e := range r.model.Edges() {
		if n := r.buildEdge(e); n != nil {
			world.Add(n)
		}
	}
	r.buildOverlays(world)

	root := vector.NewGroup(world)
	r.buildScreenOverlays(root)
	return root
}

// buildGrid emits minor and major grid lines clipped to the world extent
// visible through the viewport.
func (r *Renderer) buildGrid(world *vector.Group, viewW, viewH float64) {
	if r.grid.Hidden {
		return
	}
	sp := r.grid.Spacing
	wx0, wy0 := r.view.ScreenToWorld(0, 0)
	wx1, wy1 := r.view.ScreenToWorld(viewW, viewH)

	minor := vector.Stroke{Color: gridMinorColor, Width: 1, Enabled: true}
	major := vector.Stroke{Color: gridMajorColor, Width: 1, Enabled: true}
	every := float64(r.grid.MajorEvery)

	for x := math.Floor(wx0/sp) * sp; x <= wx1; x += sp {
		st := minor
		if math.Mod(math.Abs(x/sp), every) < 0.5 {
			st = major
		}
		world.Add(vector.NewLine(vector.Pt{X: float32(x), Y: float32(wy0)}, vector.Pt{X: float32(x), Y: float32(wy1)}, st))
	}
	for y := math.Floor(wy0/sp) * sp; y <= wy1; y += sp {
		st := minor
		if math.Mod(math.Abs(y/sp), every) < 0.5 {
			st = major
		}
		world.Add(vector.NewLine(vector.Pt{X: float32(wx0), Y: float32(y)}, vector.Pt{X: float32(wx1), Y: float32(y)}, st))
	}
}

// elementRect returns the element's world box, substituting the session's
// live drag position while a drag is in flight.
func (r *Renderer) elementRect(el domain.Element) vector.Rect {
	if r.sess != nil {
		if id, x, y, ok := r.sess.ActiveDrag(); ok && id == el.ID {
			return vector.R(float32(x), float32(y), float32(el.Width), float32(el.Height))
		}
	}
	return ElementRect(el)
}

func (r *Renderer) buildCard(el domain.Element) vector.Node {
	rect := r.elementRect(el)
	bg := colorOr(el.Style.Background, mustHex(DefaultTint(el.Kind)))
	border := vector.Stroke{Color: cardBorderColor, Width: 1, Enabled: true}
	if el.Style.BorderColor != "" {
		border.Color = colorOr(el.Style.BorderColor, cardBorderColor)
	}
	if el.Style.BorderWidth > 0 {
		border.Width = float32(el.Style.BorderWidth)
	}
	if r.sess != nil && (r.sess.Selected(el.ID) || r.sess.PendingConnectSource() == el.ID) {
		border = vector.Stroke{Color: selectColor, Width: 2, Enabled: true}
	}

	card := vector.NewGroup(
		vector.NewRoundedRect(rect, 8, vector.Fill{Color: bg, Enabled: true}, border),
	)

	accent := mustHex(KindAccent(el.Kind))
	badge := vector.R(rect.X+8, rect.Y+8, 18, 18)
	card.Add(vector.NewRoundedRect(badge, 4, vector.Fill{Color: accent, Enabled: true}, vector.Stroke{}))
	glyph := vector.NewText(KindGlyph(el.Kind), vector.Pt{X: badge.X + 5, Y: badge.Y + 14}, 12, vector.Fill{Color: vector.White, Enabled: true})
	card.Add(glyph)

	fontSize := float32(13)
	if el.Style.FontSize > 0 {
		fontSize = float32(el.Style.FontSize)
	}
	title := vector.NewText(r.cardTitle(el, rect), vector.Pt{X: rect.X + 32, Y: rect.Y + 21}, fontSize, vector.Fill{Color: colorOr(el.Style.Color, titleColor), Enabled: true})
	title.Family = el.Style.FontFamily
	card.Add(title)
	return card
}

// cardTitle resolves the display title at build time. Entity cards ask the
// resolver by reference; notes use their own content.
func (r *Renderer) cardTitle(el domain.Element, rect vector.Rect) string {
	var title string
	switch el.Kind {
	case domain.KindNote:
		title = firstLine(el.Content)
	default:
		if r.names != nil {
			if name, ok := r.names.EntityName(el.Kind, el.RefID); ok {
				title = name
			}
		}
		if title == "" {
			title = firstLine(el.Content)
		}
	}
	spec := textlayout.FontSpec{Family: el.Style.FontFamily, SizePt: 13}
	return textlayout.Truncate(nil, spec, title, rect.W-40)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// buildDrawing reconstructs a stroke path from serialized geometry.
// Unparseable geometry is skipped with a log line; one bad drawing must
// not take down the whole redraw.
func (r *Renderer) buildDrawing(el domain.Element) vector.Node {
	pts, err := DecodeStroke(el.Content)
	if err != nil {
		r.log.Warn("skipping drawing with bad geometry", slog.String("element", el.ID), slog.Any("err", err))
		return nil
	}
	if len(pts) == 0 {
		return nil
	}
	rect := r.elementRect(el)
	var p vector.Path
	p.MoveTo(rect.X+float32(pts[0].X), rect.Y+float32(pts[0].Y))
	for _, pt := range pts[1:] {
		p.LineTo(rect.X+float32(pt.X), rect.Y+float32(pt.Y))
	}
	ink := colorOr(el.Style.Color, inkColor)
	width := float32(2)
	if el.Style.BorderWidth > 0 {
		width = float32(el.Style.BorderWidth)
	}
	return vector.NewPath(p, vector.Fill{}, vector.Stroke{Color: ink, Width: width, Cap: vector.CapRound, Join: vector.JoinRound, Enabled: true})
}

// buildEdge draws one connection: a quadratic curve between box centers
// with a perpendicular bend, terminated by an arrowhead aligned with the
// curve's end tangent. Edges whose endpoints vanished are skipped.
func (r *Renderer) buildEdge(e domain.Edge) vector.Node {
	a, okA := r.model.Element(e.A)
	b, okB := r.model.Element(e.B)
	if !okA || !okB {
		return nil
	}
	ca := r.elementRect(a).Center()
	cb := r.elementRect(b).Center()
	dx, dy := cb.X-ca.X, cb.Y-ca.Y
	dist := float32(math.Hypot(float64(dx), float64(dy)))
	if dist == 0 {
		return nil
	}
	bend := dist * edgeBendRatio
	if bend > edgeBendMax {
		bend = edgeBendMax
	}
	// Perpendicular offset from the chord midpoint.
	px, py := -dy/dist, dx/dist
	ctrl := vector.Pt{X: (ca.X+cb.X)/2 + px*bend, Y: (ca.Y+cb.Y)/2 + py*bend}

	var curve vector.Path
	curve.MoveTo(ca.X, ca.Y)
	curve.QuadTo(ctrl.X, ctrl.Y, cb.X, cb.Y)

	g := vector.NewGroup(vector.NewPath(curve, vector.Fill{}, vector.Stroke{Color: edgeColor, Width: 1.5, Cap: vector.CapRound, Enabled: true}))

	if tan, ok := curve.EndTangent(); ok {
		g.Add(arrowHead(cb, tan))
	}
	return g
}

// arrowHead builds a filled triangle at tip pointing along dir (unit).
func arrowHead(tip, dir vector.Pt) vector.Node {
	ang := math.Atan2(float64(dir.Y), float64(dir.X))
	spread := arrowHalfDeg * math.Pi / 180
	l := float64(arrowLen)
	p1 := vector.Pt{
		X: tip.X - float32(l*math.Cos(ang-spread)),
		Y: tip.Y - float32(l*math.Sin(ang-spread)),
	}
	p2 := vector.Pt{
		X: tip.X - float32(l*math.Cos(ang+spread)),
		Y: tip.Y - float32(l*math.Sin(ang+spread)),
	}
	var p vector.Path
	p.MoveTo(tip.X, tip.Y)
	p.LineTo(p1.X, p1.Y)
	p.LineTo(p2.X, p2.Y)
	p.Close()
	return vector.NewPath(p, vector.Fill{Color: edgeColor, Enabled: true}, vector.Stroke{})
}

// buildOverlays emits transient world-space visuals: the stroke being
// drawn, snap guides and the text caret.
func (r *Renderer) buildOverlays(world *vector.Group) {
	if r.sess == nil {
		return
	}
	if pts := r.sess.ActiveStroke(); len(pts) > 0 {
		var p vector.Path
		p.MoveTo(float32(pts[0].X), float32(pts[0].Y))
		for _, pt := range pts[1:] {
			p.LineTo(float32(pt.X), float32(pt.Y))
		}
		world.Add(vector.NewPath(p, vector.Fill{}, vector.Stroke{Color: inkColor, Width: 2, Cap: vector.CapRound, Join: vector.JoinRound, Enabled: true}))
	}
	for _, g := range r.sess.Guides() {
		world.Add(vector.NewLine(g.From, g.To, vector.Stroke{Color: guideColor, Width: 1, Enabled: true}))
	}
	if cx, cy, ok := r.sess.Caret(); ok {
		world.Add(vector.NewLine(
			vector.Pt{X: float32(cx), Y: float32(cy) - 8},
			vector.Pt{X: float32(cx), Y: float32(cy) + 8},
			vector.Stroke{Color: selectColor, Width: 2, Enabled: true},
		))
	}
}

// buildScreenOverlays emits screen-space visuals, currently the floating
// preview of an external palette drag.
func (r *Renderer) buildScreenOverlays(root *vector.Group) {
	if r.sess == nil {
		return
	}
	kind, _, x, y, preview := r.sess.PaletteDrag()
	if !preview {
		return
	}
	w, h := DefaultSize(kind)
	tint := mustHex(DefaultTint(kind))
	tint.A = 0x99
	rect := vector.R(float32(x), float32(y), float32(w), float32(h))
	root.Add(vector.NewRoundedRect(rect, 8, vector.Fill{Color: tint, Enabled: true},
		vector.Stroke{Color: cardBorderColor, Width: 1, Enabled: true}))
}

func colorOr(hex string, fallback vector.Color) vector.Color {
	if hex == "" {
		return fallback
	}
	c, err := vector.ParseHexColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

func mustHex(hex string) vector.Color {
	c, err := vector.ParseHexColor(hex)
	if err != nil {
		return vector.Black
	}
	return c
}
