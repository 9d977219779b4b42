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
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"storycanvas/internal/storage"
)

// PackOptions controls the shareable board pack: a ZIP with one PNG per
// board plus the story.json manifest, so a reviewer without the app can
// look at the boards next to the data.
//
//nolint:revive // clarity
type PackOptions struct {
	ShowGrid bool
	Scale    float64
	Boards   []string
}

// ExportBoardPack writes the archive at outPath (relative paths land
// under the project's exports folder).
func ExportBoardPack(ph *storage.ProjectHandle, outPath string, opt PackOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pack: %w", err)
	}
	zw := zip.NewWriter(f)

	writeEntry := func(name string, data []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("zip write %s: %w", name, err)
		}
		return nil
	}

	fail := func(err error) error {
		_ = zw.Close()
		_ = f.Close()
		_ = os.Remove(outPath)
		return err
	}

	for _, id := range boardIDs(ph, opt.Boards) {
		img, err := RenderBoardPNG(ph, id, PNGOptions{ShowGrid: opt.ShowGrid, Scale: opt.Scale})
		if err != nil {
			return fail(err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fail(fmt.Errorf("encode %s: %w", id, err))
		}
		if err := writeEntry(fmt.Sprintf("boards/board-%s.png", id), buf.Bytes()); err != nil {
			return fail(err)
		}
	}

	manifest, err := os.ReadFile(ph.ManifestPath)
	if err != nil {
		return fail(fmt.Errorf("read manifest: %w", err))
	}
	if err := writeEntry(storage.ManifestFileName, manifest); err != nil {
		return fail(err)
	}

	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("close zip: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pack: %w", err)
	}
	return nil
}
