/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout isolates text measurement and line breaking behind
// deterministic interfaces. Card titles and note bodies on the canvas are
// measured here so truncation and wrapping behave identically in the live
// widget and in exported images.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image basicfont Face7x13 for deterministic results.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Measure returns the advance width and line height of a single-line string.
func Measure(provider Provider, spec FontSpec, s string) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	return float32(d.MeasureString(s).Round()), met.Ascent + met.Descent
}

// Truncate shortens s so it fits maxWidth, appending an ellipsis when cut.
// maxWidth <= 0 means no limit.
func Truncate(provider Provider, spec FontSpec, s string, maxWidth float32) string {
	if maxWidth <= 0 {
		return s
	}
	if provider == nil {
		provider = BasicProvider{}
	}
	face, _ := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	if float32(d.MeasureString(s).Round()) <= maxWidth {
		return s
	}
	const ell = "…"
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		cand := string(runes[:n]) + ell
		if float32(d.MeasureString(cand).Round()) <= maxWidth {
			return cand
		}
	}
	return ell
}

// Wrap breaks s into lines no wider than maxWidth, splitting on spaces and
// honoring embedded newlines. A word longer than maxWidth gets its own line
// (no mid-word breaking). maxWidth <= 0 yields the input split only on
// newlines.
func Wrap(provider Provider, spec FontSpec, s string, maxWidth float32) []string {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, _ := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	width := func(t string) float32 { return float32(d.MeasureString(t).Round()) }

	var out []string
	for _, para := range strings.Split(s, "\n") {
		if maxWidth <= 0 {
			out = append(out, para)
			continue
		}
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if width(cur+" "+w) <= maxWidth {
				cur += " " + w
				continue
			}
			out = append(out, cur)
			cur = w
		}
		out = append(out, cur)
	}
	return out
}
