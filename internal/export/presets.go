/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"storycanvas/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across multiple formats and boards.
//
// Path semantics:
//   - If OutDir is empty or relative, it is created under <project>/exports/<preset>/.
//   - PDF and pack single-file outputs are named boards.pdf / boards.zip in OutDir.
//   - PNG/SVG per-board outputs land in png/ or svg/ subfolders inside OutDir.
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // allowed: pdf, png, svg, pack; empty means preset defaults
	Boards        []string // board IDs; empty means all boards
	ScaleOverride float64  // when > 0 overrides the preset raster scale
	ShowGrid      *bool    // when set, overrides the preset's grid default
	OutDir        string   // base directory for outputs (created per preset if relative)
}

// BatchExport runs exports according to the given preset.
func BatchExport(ph *storage.ProjectHandle, opt BatchOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if len(ph.Project.Boards) == 0 {
		return fmt.Errorf("project has no boards")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(ph.Root, "exports", baseOut)
	}

	grid := presetShowGrid(opt.Preset)
	if opt.ShowGrid != nil {
		grid = *opt.ShowGrid
	}
	scale := presetScale(opt.Preset)
	if opt.ScaleOverride > 0 {
		scale = opt.ScaleOverride
	}

	for _, f := range formats {
		switch f {
		case "pdf":
			out := filepath.Join(baseOut, "boards.pdf")
			if err := ExportBoardsPDF(ph, out, PDFOptions{ShowGrid: grid, Boards: opt.Boards}); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "pack":
			out := filepath.Join(baseOut, "boards.zip")
			po := PackOptions{ShowGrid: grid, Scale: scale, Boards: opt.Boards}
			if err := ExportBoardPack(ph, out, po); err != nil {
				return fmt.Errorf("pack: %w", err)
			}
		case "png":
			outDir := filepath.Join(baseOut, "png")
			po := PNGOptions{ShowGrid: grid, Scale: scale, Boards: opt.Boards}
			if err := ExportBoardsPNG(ph, outDir, po); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		case "svg":
			outDir := filepath.Join(baseOut, "svg")
			so := SVGOptions{ShowGrid: grid, Scale: scale, Boards: opt.Boards}
			if err := ExportBoardsSVG(ph, outDir, so); err != nil {
				return fmt.Errorf("svg: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg", "pack"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetShowGrid(p PresetName) bool {
	switch p {
	case PresetWeb:
		return false
	case PresetPrint:
		return true
	default:
		return false
	}
}

func presetScale(p PresetName) float64 {
	switch p {
	case PresetPrint:
		return 2
	default:
		return 1
	}
}
