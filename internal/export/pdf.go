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
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"storycanvas/internal/storage"
	"storycanvas/internal/vector"
)

// PDFOptions controls PDF export behavior.
// World units map 1:1 to PDF points, so each page is sized to its board.
// Vector text uses built-in Helvetica for portability; font embedding can
// be added later with TTFs.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	ShowGrid bool
	Boards   []string // board IDs; empty means all boards, one page each
}

// ExportBoardsPDF exports the selected boards to a single multi-page PDF
// placed at outPath (relative paths land under the project's exports
// folder).
func ExportBoardsPDF(ph *storage.ProjectHandle, outPath string, opt PDFOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	ids := boardIDs(ph, opt.Boards)
	if len(ids) == 0 {
		return fmt.Errorf("project has no boards")
	}

	// Page size is set per board below; the initial size only seeds the
	// document.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: emptySceneW, Ht: emptySceneH},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — Boards", ph.Project.Name), true)
	pdf.SetAuthor("Story Canvas", false)
	pdf.SetFont("Helvetica", "", 12)

	for _, id := range ids {
		sc, err := BoardScene(ph, id, SceneOptions{ShowGrid: opt.ShowGrid})
		if err != nil {
			return err
		}
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: sc.W, Ht: sc.H})
		pdfNode(pdf, sc.Root, vector.Identity)
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func pdfNode(pdf *gofpdf.Fpdf, n vector.Node, parent vector.Affine2D) {
	xf := parent.Mul(n.Transform())
	switch t := n.(type) {
	case *vector.Group:
		for _, c := range t.Children {
			pdfNode(pdf, c, xf)
		}
	case *vector.LineNode:
		s := t.Stroke()
		if !s.Enabled || s.Width <= 0 {
			return
		}
		a := xf.Apply(t.From)
		b := xf.Apply(t.To)
		setDrawColor(pdf, s.Color)
		pdf.SetLineWidth(float64(s.Width))
		pdf.Line(float64(a.X), float64(a.Y), float64(b.X), float64(b.Y))
	case *vector.RectNode:
		x, y, w, h := pdfBox(xf, t.Rect())
		if style := pdfStyle(pdf, t.Fill(), t.Stroke()); style != "" {
			pdf.Rect(x, y, w, h, style)
		}
	case *vector.RoundedRectNode:
		x, y, w, h := pdfBox(xf, t.Rect())
		if style := pdfStyle(pdf, t.Fill(), t.Stroke()); style != "" {
			// Uniform radius scales with the transform.
			r := float64(t.Radius() * xf.A)
			pdf.RoundedRect(x, y, w, h, r, "1234", style)
		}
	case *vector.TextNode:
		at := xf.Apply(t.At)
		size := float64(t.Size * xf.A)
		if size <= 0 {
			size = 12
		}
		pdf.SetFont("Helvetica", "", size)
		if f := t.Fill(); f.Enabled {
			pdf.SetTextColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Text(float64(at.X), float64(at.Y), t.Text)
	case *vector.PathNode:
		pdfPath(pdf, t.Path(), xf, t.Fill(), t.Stroke())
	}
}

func pdfPath(pdf *gofpdf.Fpdf, p vector.Path, xf vector.Affine2D, f vector.Fill, s vector.Stroke) {
	style := pdfStyle(pdf, f, s)
	if style == "" || len(p.Cmds) == 0 {
		return
	}
	ap := func(x, y float32) (float64, float64) {
		pt := xf.Apply(vector.Pt{X: x, Y: y})
		return float64(pt.X), float64(pt.Y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			x, y := ap(c.Data[0], c.Data[1])
			pdf.MoveTo(x, y)
		case vector.LineTo:
			x, y := ap(c.Data[0], c.Data[1])
			pdf.LineTo(x, y)
		case vector.QuadTo:
			cx, cy := ap(c.Data[0], c.Data[1])
			x, y := ap(c.Data[2], c.Data[3])
			pdf.CurveTo(cx, cy, x, y)
		case vector.CubicTo:
			c1x, c1y := ap(c.Data[0], c.Data[1])
			c2x, c2y := ap(c.Data[2], c.Data[3])
			x, y := ap(c.Data[4], c.Data[5])
			pdf.CurveBezierCubicTo(c1x, c1y, c2x, c2y, x, y)
		case vector.Close:
			pdf.ClosePath()
		}
	}
	pdf.DrawPath(style)
}

// pdfStyle sets paint state and returns the gofpdf style string, or ""
// when the node paints nothing.
func pdfStyle(pdf *gofpdf.Fpdf, f vector.Fill, s vector.Stroke) string {
	style := ""
	if f.Enabled {
		pdf.SetFillColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
		pdf.SetAlpha(float64(f.Color.A)/255, "Normal")
		style += "F"
	} else {
		pdf.SetAlpha(1, "Normal")
	}
	if s.Enabled && s.Width > 0 {
		setDrawColor(pdf, s.Color)
		pdf.SetLineWidth(float64(s.Width))
		style += "D"
	}
	return style
}

func pdfBox(xf vector.Affine2D, r vector.Rect) (x, y, w, h float64) {
	p0 := xf.Apply(vector.Pt{X: r.X, Y: r.Y})
	p1 := xf.Apply(vector.Pt{X: r.X + r.W, Y: r.Y + r.H})
	return float64(p0.X), float64(p0.Y), float64(p1.X - p0.X), float64(p1.Y - p0.Y)
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
