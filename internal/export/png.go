/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"storycanvas/internal/storage"
	"storycanvas/internal/vector"
)

// PNGOptions controls PNG export behavior.
// - Scale is output pixels per world unit (0 means 1:1).
// - Boards selects board IDs; empty means all.
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	ShowGrid bool
	Scale    float64
	Boards   []string
}

// ExportBoardsPNG writes each selected board as a separate PNG file named
// board-<id>.png under outDir or the project's exports folder.
func ExportBoardsPNG(ph *storage.ProjectHandle, outDir string, opt PNGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(ph.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	for _, id := range boardIDs(ph, opt.Boards) {
		img, err := RenderBoardPNG(ph, id, opt)
		if err != nil {
			return err
		}
		name := filepath.Join(outDir, fmt.Sprintf("board-%s.png", id))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode png: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	}
	return nil
}

// RenderBoardPNG rasterizes one board. The preview cache and the pack
// exporter use the same path, so a thumbnail is pixel-identical to a full
// export at the matching scale.
func RenderBoardPNG(ph *storage.ProjectHandle, boardID string, opt PNGOptions) (*image.RGBA, error) {
	sc, err := BoardScene(ph, boardID, SceneOptions{ShowGrid: opt.ShowGrid})
	if err != nil {
		return nil, err
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	return rasterizeScene(sc, scale), nil
}

func rasterizeScene(sc *Scene, scale float64) *image.RGBA {
	pxW := int(math.Round(sc.W * scale))
	pxH := int(math.Round(sc.H * scale))
	if pxW < 1 {
		pxW = 1
	}
	if pxH < 1 {
		pxH = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, pxW, pxH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	root := vector.Scale(float32(scale), float32(scale))
	rasterNode(img, sc.Root, root)
	return img
}

func rasterNode(img *image.RGBA, n vector.Node, parent vector.Affine2D) {
	xf := parent.Mul(n.Transform())
	switch t := n.(type) {
	case *vector.Group:
		for _, c := range t.Children {
			rasterNode(img, c, xf)
		}
	case *vector.LineNode:
		a := xf.Apply(t.From)
		b := xf.Apply(t.To)
		rasterLine(img, a, b, t.Stroke())
	case *vector.RectNode:
		rasterBox(img, xf, t.Rect(), t.Fill(), t.Stroke())
	case *vector.RoundedRectNode:
		// Corner radii are dropped in raster output; the box keeps its
		// fill and border.
		rasterBox(img, xf, t.Rect(), t.Fill(), t.Stroke())
	case *vector.TextNode:
		rasterText(img, xf.Apply(t.At), t.Text, t.Fill())
	case *vector.PathNode:
		pts := flattenPath(t.Path(), xf)
		if t.Fill().Enabled {
			fillPolygon(img, pts, toRGBA(t.Fill().Color))
		}
		if s := t.Stroke(); s.Enabled && s.Width > 0 {
			for _, poly := range pts {
				for i := 1; i < len(poly); i++ {
					rasterLine(img, poly[i-1], poly[i], s)
				}
			}
		}
	}
}

// rasterBox handles axis-aligned rectangles. The scene only carries
// translate/scale transforms, so mapping two corners is enough.
func rasterBox(img *image.RGBA, xf vector.Affine2D, r vector.Rect, f vector.Fill, s vector.Stroke) {
	p0 := xf.Apply(vector.Pt{X: r.X, Y: r.Y})
	p1 := xf.Apply(vector.Pt{X: r.X + r.W, Y: r.Y + r.H})
	x0, y0 := int(math.Round(float64(p0.X))), int(math.Round(float64(p0.Y)))
	x1, y1 := int(math.Round(float64(p1.X)))-1, int(math.Round(float64(p1.Y)))-1
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	if f.Enabled {
		fillRect(img, x0, y0, x1, y1, toRGBA(f.Color))
	}
	if s.Enabled && s.Width > 0 {
		strokeRect(img, x0, y0, x1, y1, toRGBA(s.Color))
	}
}

// rasterLine draws a stepped line with a square brush sized from the
// stroke width. Good enough for grid lines, guides and ink strokes.
func rasterLine(img *image.RGBA, a, b vector.Pt, s vector.Stroke) {
	if !s.Enabled || s.Width <= 0 {
		return
	}
	col := toRGBA(s.Color)
	half := int(s.Width) / 2
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		fillRect(img, int(a.X)-half, int(a.Y)-half, int(a.X)+half, int(a.Y)+half, col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(a.X) + dx*t))
		y := int(math.Round(float64(a.Y) + dy*t))
		if half == 0 {
			setPx(img, x, y, col)
		} else {
			fillRect(img, x-half, y-half, x+half, y+half, col)
		}
	}
}

// rasterText draws a run with the stock 7x13 bitmap face. The face does
// not scale; titles stay legible at typical export scales.
func rasterText(img *image.RGBA, at vector.Pt, text string, f vector.Fill) {
	col := color.RGBA{0, 0, 0, 255}
	if f.Enabled {
		col = toRGBA(f.Color)
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(float64(at.X))), int(math.Round(float64(at.Y)))),
	}
	d.DrawString(text)
}

const curveSteps = 16

// flattenPath converts path commands into device-space polylines, one per
// subpath, subdividing curves into line segments.
func flattenPath(p vector.Path, xf vector.Affine2D) [][]vector.Pt {
	var polys [][]vector.Pt
	var cur []vector.Pt
	var pos vector.Pt
	var start vector.Pt
	push := func(pt vector.Pt) {
		cur = append(cur, xf.Apply(pt))
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			if len(cur) > 1 {
				polys = append(polys, cur)
			}
			cur = nil
			pos = vector.Pt{X: c.Data[0], Y: c.Data[1]}
			start = pos
			push(pos)
		case vector.LineTo:
			pos = vector.Pt{X: c.Data[0], Y: c.Data[1]}
			push(pos)
		case vector.QuadTo:
			cp := vector.Pt{X: c.Data[0], Y: c.Data[1]}
			end := vector.Pt{X: c.Data[2], Y: c.Data[3]}
			for i := 1; i <= curveSteps; i++ {
				t := float32(i) / curveSteps
				u := 1 - t
				push(vector.Pt{
					X: u*u*pos.X + 2*u*t*cp.X + t*t*end.X,
					Y: u*u*pos.Y + 2*u*t*cp.Y + t*t*end.Y,
				})
			}
			pos = end
		case vector.CubicTo:
			c1 := vector.Pt{X: c.Data[0], Y: c.Data[1]}
			c2 := vector.Pt{X: c.Data[2], Y: c.Data[3]}
			end := vector.Pt{X: c.Data[4], Y: c.Data[5]}
			for i := 1; i <= curveSteps; i++ {
				t := float32(i) / curveSteps
				u := 1 - t
				push(vector.Pt{
					X: u*u*u*pos.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
					Y: u*u*u*pos.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
				})
			}
			pos = end
		case vector.Close:
			pos = start
			push(pos)
		}
	}
	if len(cur) > 1 {
		polys = append(polys, cur)
	}
	return polys
}

// fillPolygon runs an even-odd scanline fill over the flattened subpaths.
func fillPolygon(img *image.RGBA, polys [][]vector.Pt, col color.RGBA) {
	minY, maxY := math.MaxInt32, math.MinInt32
	for _, poly := range polys {
		for _, p := range poly {
			y := int(math.Floor(float64(p.Y)))
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	for y := minY; y <= maxY; y++ {
		sy := float64(y) + 0.5
		var xs []float64
		for _, poly := range polys {
			for i := 1; i < len(poly); i++ {
				y0, y1 := float64(poly[i-1].Y), float64(poly[i].Y)
				if (y0 <= sy) == (y1 <= sy) {
					continue
				}
				x0, x1 := float64(poly[i-1].X), float64(poly[i].X)
				xs = append(xs, x0+(sy-y0)/(y1-y0)*(x1-x0))
			}
		}
		sort.Float64s(xs)
		for i := 1; i < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i-1] - 0.5)); x <= int(math.Floor(xs[i]-0.5)); x++ {
				setPx(img, x, y, col)
			}
		}
	}
}

func toRGBA(c vector.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func setPx(img *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		setPx(img, x, y0, col)
		setPx(img, x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		setPx(img, x0, y, col)
		setPx(img, x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			setPx(img, x, y, col)
		}
	}
}
