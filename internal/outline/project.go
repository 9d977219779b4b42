/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"fmt"
	"strings"

	"storycanvas/internal/canvas"
	"storycanvas/internal/domain"
)

// Board layout for imported outlines: one column of plot cards per act,
// characters in a trailing column.
const (
	importOriginX = 80
	importOriginY = 80
	importColStep = 240
	importRowStep = 130
)

// ToProject materializes a parsed outline as a project: declared and
// mentioned characters, declared locations, one plot point per beat, and
// a board where consecutive beats of an act are connected and beats link
// to the characters they mention.
func (o Outline) ToProject() domain.Project {
	name := o.Title
	if name == "" {
		name = "Imported Outline"
	}
	p := domain.Project{Name: name}

	charID := map[string]string{} // lower-cased name -> id
	addCharacter := func(display string) string {
		key := strings.ToLower(display)
		if id, ok := charID[key]; ok {
			return id
		}
		id := fmt.Sprintf("ch-%d", len(p.Characters)+1)
		charID[key] = id
		p.Characters = append(p.Characters, domain.Character{ID: id, Name: display})
		return id
	}
	for _, c := range o.Characters {
		addCharacter(c)
	}
	for i, l := range o.Locations {
		p.Locations = append(p.Locations, domain.Location{ID: fmt.Sprintf("loc-%d", i+1), Name: l})
	}

	board := domain.Board{ID: "board-1", Name: "Outline"}

	elemSeq := 0
	newElem := func(kind domain.ElementKind, refID string, x, y float64) domain.Element {
		elemSeq++
		w, h := canvas.DefaultSize(kind)
		return domain.Element{
			ID:     fmt.Sprintf("el-%d", elemSeq),
			Kind:   kind,
			RefID:  refID,
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
			Style:  domain.ElementStyle{Background: canvas.DefaultTint(kind)},
		}
	}

	charElem := map[string]string{} // character id -> element id
	for col, act := range o.Acts {
		var prevElem string
		for row, beat := range act.Beats {
			ppID := fmt.Sprintf("pp-%d", len(p.PlotPoints)+1)
			p.PlotPoints = append(p.PlotPoints, domain.PlotPoint{
				ID:      ppID,
				Title:   beat.Title,
				Summary: beat.Summary,
				Act:     act.Name,
			})
			el := newElem(domain.KindPlotPoint, ppID,
				importOriginX+float64(col)*importColStep,
				importOriginY+float64(row)*importRowStep)
			board.Elements = append(board.Elements, el)
			if prevElem != "" {
				board.Edges = append(board.Edges, domain.Edge{A: prevElem, B: el.ID})
			}
			prevElem = el.ID

			for _, m := range beat.Mentions {
				cid := addCharacter(m)
				eid, ok := charElem[cid]
				if !ok {
					x := importOriginX + float64(len(o.Acts))*importColStep
					y := importOriginY + float64(len(charElem))*importRowStep
					ce := newElem(domain.KindCharacter, cid, x, y)
					board.Elements = append(board.Elements, ce)
					charElem[cid] = ce.ID
					eid = ce.ID
				}
				board.Edges = append(board.Edges, domain.Edge{A: el.ID, B: eid})
			}
		}
	}

	p.Boards = []domain.Board{board}
	return p
}
