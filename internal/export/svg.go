/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"storycanvas/internal/storage"
	"storycanvas/internal/vector"
)

// SVGOptions controls SVG export behavior.
// - Scale > 0 multiplies the pixel width/height attributes; the viewBox
//   stays in world units so the output scales losslessly.
// - Boards selects board IDs; empty means all.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	ShowGrid bool
	Scale    float64
	Boards   []string
}

// ExportBoardsSVG writes each selected board as a separate SVG file named
// board-<id>.svg under outDir or the project's exports folder.
func ExportBoardsSVG(ph *storage.ProjectHandle, outDir string, opt SVGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(ph.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	for _, id := range boardIDs(ph, opt.Boards) {
		sc, err := BoardScene(ph, id, SceneOptions{ShowGrid: opt.ShowGrid})
		if err != nil {
			return err
		}
		data, err := renderSVG(sc, scale)
		if err != nil {
			return fmt.Errorf("build svg for %s: %w", id, err)
		}
		name := filepath.Join(outDir, fmt.Sprintf("board-%s.svg", id))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}
	return nil
}

func renderSVG(sc *Scene, scale float64) ([]byte, error) {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	pxW := int(math.Round(sc.W * scale))
	pxH := int(math.Round(sc.H * scale))
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n", pxW, pxH, sc.W, sc.H)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", sc.W, sc.H)
	writeSVGNode(wf, sc.Root, "  ")
	wf("</svg>\n")
	if werr != nil {
		return nil, werr
	}
	return buf.Bytes(), nil
}

func writeSVGNode(wf func(string, ...any), n vector.Node, indent string) {
	xf := n.Transform()
	switch t := n.(type) {
	case *vector.Group:
		if xf == vector.Identity {
			for _, c := range t.Children {
				writeSVGNode(wf, c, indent)
			}
			return
		}
		wf("%s<g transform=\"matrix(%g %g %g %g %g %g)\">\n", indent, xf.A, xf.B, xf.C, xf.D, xf.E, xf.F)
		for _, c := range t.Children {
			writeSVGNode(wf, c, indent+"  ")
		}
		wf("%s</g>\n", indent)
	case *vector.LineNode:
		wf("%s<line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" %s/>\n",
			indent, t.From.X, t.From.Y, t.To.X, t.To.Y, svgPaint(t.Fill(), t.Stroke()))
	case *vector.RectNode:
		r := t.Rect()
		wf("%s<rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" %s/>\n",
			indent, r.X, r.Y, r.W, r.H, svgPaint(t.Fill(), t.Stroke()))
	case *vector.RoundedRectNode:
		r := t.Rect()
		wf("%s<rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"%g\" ry=\"%g\" %s/>\n",
			indent, r.X, r.Y, r.W, r.H, t.Radius(), t.Radius(), svgPaint(t.Fill(), t.Stroke()))
	case *vector.TextNode:
		family := t.Family
		if family == "" {
			family = "Helvetica, Arial, sans-serif"
		}
		fill := "#000"
		if t.Fill().Enabled {
			fill = t.Fill().Color.Hex()
		}
		wf("%s<text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\">%s</text>\n",
			indent, t.At.X, t.At.Y, escAttr(family), t.Size, fill, escText(t.Text))
	case *vector.PathNode:
		wf("%s<path d=\"%s\" %s/>\n", indent, svgPathData(t.Path()), svgPaint(t.Fill(), t.Stroke()))
	}
}

func svgPathData(p vector.Path) string {
	var b bytes.Buffer
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M %g %g ", c.Data[0], c.Data[1])
		case vector.LineTo:
			fmt.Fprintf(&b, "L %g %g ", c.Data[0], c.Data[1])
		case vector.QuadTo:
			fmt.Fprintf(&b, "Q %g %g %g %g ", c.Data[0], c.Data[1], c.Data[2], c.Data[3])
		case vector.CubicTo:
			fmt.Fprintf(&b, "C %g %g %g %g %g %g ", c.Data[0], c.Data[1], c.Data[2], c.Data[3], c.Data[4], c.Data[5])
		case vector.Close:
			b.WriteString("Z ")
		}
	}
	return b.String()
}

func svgPaint(f vector.Fill, s vector.Stroke) string {
	var b bytes.Buffer
	if f.Enabled {
		fmt.Fprintf(&b, "fill=\"%s\"", svgColorHex(f.Color))
		if f.Color.A < 255 {
			fmt.Fprintf(&b, " fill-opacity=\"%.3f\"", float64(f.Color.A)/255)
		}
	} else {
		b.WriteString("fill=\"none\"")
	}
	if s.Enabled && s.Width > 0 {
		fmt.Fprintf(&b, " stroke=\"%s\" stroke-width=\"%g\"", svgColorHex(s.Color), s.Width)
		if s.Cap == vector.CapRound {
			b.WriteString(" stroke-linecap=\"round\"")
		}
		if s.Join == vector.JoinRound {
			b.WriteString(" stroke-linejoin=\"round\"")
		}
	}
	return b.String()
}

// svgColorHex always emits "#rrggbb"; alpha is carried separately as
// opacity so older renderers cope.
func svgColorHex(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for our simple usage
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
