/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storycanvas/internal/domain"
	"storycanvas/internal/storage"
)

func sampleProject() domain.Project {
	return domain.Project{
		Name: "Harbor Lights",
		Characters: []domain.Character{
			{ID: "ch-1", Name: "Mara"},
		},
		Boards: []domain.Board{{
			ID:   "board-1",
			Name: "Main",
			Elements: []domain.Element{
				{ID: "el-1", Kind: domain.KindCharacter, RefID: "ch-1", X: 0, Y: 0, Width: 160, Height: 90},
				{ID: "el-2", Kind: domain.KindNote, X: 300, Y: 160, Width: 200, Height: 70, Content: "the storm hits here"},
				{ID: "el-3", Kind: domain.KindDrawing, X: 40, Y: 200, Width: 60, Height: 30,
					Content: `[{"x":0,"y":0},{"x":60,"y":30}]`},
			},
			Edges: []domain.Edge{{A: "el-1", B: "el-2"}},
		}},
	}
}

func samplePH(t *testing.T) *storage.ProjectHandle {
	t.Helper()
	ph, err := storage.InitProject(t.TempDir(), sampleProject())
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	return ph
}

func TestBoardSceneFramesContent(t *testing.T) {
	ph := samplePH(t)
	sc, err := BoardScene(ph, "board-1", SceneOptions{})
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	// Content spans (0,0)..(500,230); plus 40 margin on each side.
	if sc.W != 580 || sc.H != 310 {
		t.Fatalf("scene size = %gx%g", sc.W, sc.H)
	}
	if sc.Root == nil || len(sc.Root.Children) == 0 {
		t.Fatalf("scene has no nodes")
	}
}

func TestBoardSceneEmptyBoard(t *testing.T) {
	proj := sampleProject()
	proj.Boards[0].Elements = nil
	proj.Boards[0].Edges = nil
	ph, err := storage.InitProject(t.TempDir(), proj)
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	sc, err := BoardScene(ph, "board-1", SceneOptions{})
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	if sc.W != emptySceneW || sc.H != emptySceneH {
		t.Fatalf("empty scene size = %gx%g", sc.W, sc.H)
	}
}

func TestExportBoardsSVG(t *testing.T) {
	ph := samplePH(t)
	outDir := filepath.Join(ph.Root, "exports", "svgtest")
	if err := ExportBoardsSVG(ph, outDir, SVGOptions{}); err != nil {
		t.Fatalf("export svg: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "board-board-1.svg"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	svg := string(data)
	if !strings.Contains(svg, "<svg ") || !strings.Contains(svg, "</svg>") {
		t.Fatalf("not an svg document")
	}
	// Entity titles resolve through the manifest, same as the live view.
	if !strings.Contains(svg, ">Mara</text>") {
		t.Fatalf("character title missing from svg:\n%s", svg)
	}
	if !strings.Contains(svg, "the storm hits here") {
		t.Fatalf("note content missing from svg")
	}
	// One curve and one filled arrowhead for the single edge.
	if got := strings.Count(svg, "<path "); got != 3 { // drawing stroke + edge curve + arrowhead
		t.Fatalf("path count = %d", got)
	}
}

func TestExportBoardsPNG(t *testing.T) {
	ph := samplePH(t)
	outDir := filepath.Join(ph.Root, "exports", "pngtest")
	if err := ExportBoardsPNG(ph, outDir, PNGOptions{Scale: 1}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	st, err := os.Stat(filepath.Join(outDir, "board-board-1.png"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("png empty")
	}
}

func TestRenderBoardPNGPixels(t *testing.T) {
	ph := samplePH(t)
	img, err := RenderBoardPNG(ph, "board-1", PNGOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 580 || b.Dy() != 310 {
		t.Fatalf("image size = %dx%d", b.Dx(), b.Dy())
	}
	// Margin stays white; the character card area carries its tint.
	if got := img.RGBAAt(5, 5); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("margin pixel = %v", got)
	}
	// Card interior at world (80,45) -> device (120,85).
	card := img.RGBAAt(120, 85)
	if card == (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("card area still white")
	}
}

func TestExportBoardsPDF(t *testing.T) {
	ph := samplePH(t)
	out := filepath.Join(ph.Root, "exports", "boards.pdf")
	if err := ExportBoardsPDF(ph, out, PDFOptions{ShowGrid: true}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("not a pdf")
	}
}

func TestExportBoardPack(t *testing.T) {
	ph := samplePH(t)
	out := filepath.Join(ph.Root, "exports", "boards.zip")
	if err := ExportBoardPack(ph, out, PackOptions{}); err != nil {
		t.Fatalf("export pack: %v", err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["boards/board-board-1.png"] {
		t.Fatalf("board png missing from pack: %v", names)
	}
	if !names[storage.ManifestFileName] {
		t.Fatalf("manifest missing from pack: %v", names)
	}
}

func TestBatchExportWebPreset(t *testing.T) {
	ph := samplePH(t)
	if err := BatchExport(ph, BatchOptions{Preset: PresetWeb}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	base := filepath.Join(ph.Root, "exports", "web")
	for _, p := range []string{
		filepath.Join(base, "png", "board-board-1.png"),
		filepath.Join(base, "svg", "board-board-1.svg"),
		filepath.Join(base, "boards.zip"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
}

func TestBatchExportUnknownFormat(t *testing.T) {
	ph := samplePH(t)
	err := BatchExport(ph, BatchOptions{Formats: []string{"docx"}})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("err = %v", err)
	}
}
