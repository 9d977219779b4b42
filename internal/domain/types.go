/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model structures for Story Canvas.
// A project holds the narrative entities (characters, locations, plot points)
// and one or more planning boards. Everything serializes to a human-readable
// JSON manifest (story.json).

// Project represents a story project and its metadata.
type Project struct {
	Name       string      `json:"name"`
	Metadata   Metadata    `json:"metadata,omitempty"`
	Characters []Character `json:"characters"`
	Locations  []Location  `json:"locations"`
	PlotPoints []PlotPoint `json:"plotPoints"`
	Boards     []Board     `json:"boards"`
}

// Metadata contains optional descriptive metadata for a project.
type Metadata struct {
	Author  string `json:"author,omitempty"`
	Logline string `json:"logline,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Character is a narrative entity that board elements may reference.
type Character struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"` // protagonist, antagonist, supporting, ...
	Bio  string `json:"bio,omitempty"`
}

// Location is a narrative place entity.
type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PlotPoint is a single story beat or event.
type PlotPoint struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Act     string `json:"act,omitempty"` // e.g. "1", "2a", "3"
}

// Board is one spatial canvas: placed elements plus the connection graph and
// the last viewport the user was looking at.
type Board struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Elements []Element     `json:"elements"`
	Edges    []Edge        `json:"edges,omitempty"`
	Viewport ViewportState `json:"viewport,omitempty"`
}

// ElementKind discriminates what a board element represents.
type ElementKind string

const (
	KindCharacter ElementKind = "character"
	KindLocation  ElementKind = "location"
	KindPlotPoint ElementKind = "plot_point"
	KindNote      ElementKind = "note"
	KindDrawing   ElementKind = "drawing"
)

// Element is a single placed item on a board. Position and size are in world
// coordinates (canvas units, zoom-independent); size is always non-negative.
// RefID points into the project's entity lists for kinds that mirror narrative
// data and is empty for notes and drawings. Content holds free text for notes
// and serialized stroke geometry for drawings.
type Element struct {
	ID      string       `json:"id"`
	Kind    ElementKind  `json:"kind"`
	RefID   string       `json:"refId,omitempty"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Content string       `json:"content,omitempty"`
	Style   ElementStyle `json:"style,omitempty"`
}

// ElementStyle is optional per-element styling; zero values fall back to
// kind defaults at render time. Colors are CSS-style hex strings (#rrggbb).
type ElementStyle struct {
	Color       string  `json:"color,omitempty"`
	Background  string  `json:"background,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	FontFamily  string  `json:"fontFamily,omitempty"`
	BorderColor string  `json:"borderColor,omitempty"`
	BorderWidth float64 `json:"borderWidth,omitempty"`
}

// Edge is an undirected connection between two elements. A and B keep the
// creation order so the renderer can orient the arrowhead, but the pair is
// treated as unordered everywhere else.
type Edge struct {
	A string `json:"a"`
	B string `json:"b"`
}

// ViewportState is a plain snapshot of the board's pan/zoom transform.
type ViewportState struct {
	Zoom float64 `json:"zoom,omitempty"`
	PanX float64 `json:"panX,omitempty"`
	PanY float64 `json:"panY,omitempty"`
}

// FindBoard returns a pointer to the board with the given id, or nil.
func (p *Project) FindBoard(id string) *Board {
	for i := range p.Boards {
		if p.Boards[i].ID == id {
			return &p.Boards[i]
		}
	}
	return nil
}

// EntityName resolves the display name for a referenced narrative entity.
// The bool result is false when the reference does not resolve.
func (p *Project) EntityName(kind ElementKind, refID string) (string, bool) {
	switch kind {
	case KindCharacter:
		for i := range p.Characters {
			if p.Characters[i].ID == refID {
				return p.Characters[i].Name, true
			}
		}
	case KindLocation:
		for i := range p.Locations {
			if p.Locations[i].ID == refID {
				return p.Locations[i].Name, true
			}
		}
	case KindPlotPoint:
		for i := range p.PlotPoints {
			if p.PlotPoints[i].ID == refID {
				return p.PlotPoints[i].Title, true
			}
		}
	}
	return "", false
}
