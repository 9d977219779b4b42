/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"

	"storycanvas/internal/canvas"
	"storycanvas/internal/domain"
)

// BoardStore adapts a ProjectHandle to the canvas persistence interface.
// Every mutation is applied to the in-memory manifest and flushed to disk
// with the transactional Save; the canvas treats these writes as
// fire-and-forget.
type BoardStore struct {
	ph *ProjectHandle
}

// NewBoardStore wraps a handle. The store persists whichever board id the
// canvas asks about, so one store serves all boards of a project.
func NewBoardStore(ph *ProjectHandle) *BoardStore {
	return &BoardStore{ph: ph}
}

var errNoBoard = errors.New("board not found")

func (s *BoardStore) board(boardID string) (*domain.Board, error) {
	if b := s.ph.Project.FindBoard(boardID); b != nil {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", errNoBoard, boardID)
}

// ListElements returns the board's elements as stored.
func (s *BoardStore) ListElements(boardID string) ([]domain.Element, error) {
	b, err := s.board(boardID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Element, len(b.Elements))
	copy(out, b.Elements)
	return out, nil
}

// CreateElement appends an element and flushes the manifest.
func (s *BoardStore) CreateElement(boardID string, el domain.Element) error {
	b, err := s.board(boardID)
	if err != nil {
		return err
	}
	b.Elements = append(b.Elements, el)
	return Save(s.ph)
}

// UpdateElement applies a partial patch to one element. An unknown id is
// an error here; the canvas filters those before calling.
func (s *BoardStore) UpdateElement(boardID, id string, patch canvas.ElementPatch) error {
	b, err := s.board(boardID)
	if err != nil {
		return err
	}
	for i := range b.Elements {
		if b.Elements[i].ID == id {
			patch.Apply(&b.Elements[i])
			return Save(s.ph)
		}
	}
	return fmt.Errorf("element not found: %s", id)
}

// DeleteElement removes one element. Deleting an absent id is a no-op.
func (s *BoardStore) DeleteElement(boardID, id string) error {
	b, err := s.board(boardID)
	if err != nil {
		return err
	}
	for i := range b.Elements {
		if b.Elements[i].ID == id {
			b.Elements = append(b.Elements[:i], b.Elements[i+1:]...)
			return Save(s.ph)
		}
	}
	return nil
}

// ListEdges returns the board's connection graph.
func (s *BoardStore) ListEdges(boardID string) ([]domain.Edge, error) {
	b, err := s.board(boardID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Edge, len(b.Edges))
	copy(out, b.Edges)
	return out, nil
}

// ReplaceEdges swaps the board's edge set wholesale.
func (s *BoardStore) ReplaceEdges(boardID string, edges []domain.Edge) error {
	b, err := s.board(boardID)
	if err != nil {
		return err
	}
	b.Edges = edges
	return Save(s.ph)
}

// SaveViewport persists a viewport snapshot for a board. Used as the
// canvas viewport sink.
func (s *BoardStore) SaveViewport(boardID string, vs domain.ViewportState) error {
	b, err := s.board(boardID)
	if err != nil {
		return err
	}
	b.Viewport = vs
	return Save(s.ph)
}

// EntityName resolves display names for referenced entities, satisfying
// the canvas name resolver.
func (s *BoardStore) EntityName(kind domain.ElementKind, refID string) (string, bool) {
	return s.ph.Project.EntityName(kind, refID)
}

// AddBoard appends a new empty board with a unique id and persists it.
func AddBoard(ph *ProjectHandle, name string) (domain.Board, error) {
	id := ""
	for n := len(ph.Project.Boards) + 1; ; n++ {
		id = fmt.Sprintf("board-%d", n)
		if ph.Project.FindBoard(id) == nil {
			break
		}
	}
	if name == "" {
		name = fmt.Sprintf("Board %d", len(ph.Project.Boards)+1)
	}
	b := domain.Board{ID: id, Name: name}
	ph.Project.Boards = append(ph.Project.Boards, b)
	if err := Save(ph); err != nil {
		return domain.Board{}, err
	}
	return b, nil
}

// DeleteBoard removes a board by id. The last board cannot be deleted.
func DeleteBoard(ph *ProjectHandle, boardID string) error {
	if len(ph.Project.Boards) <= 1 {
		return errors.New("cannot delete the last board")
	}
	for i := range ph.Project.Boards {
		if ph.Project.Boards[i].ID == boardID {
			ph.Project.Boards = append(ph.Project.Boards[:i], ph.Project.Boards[i+1:]...)
			return Save(ph)
		}
	}
	return fmt.Errorf("%w: %s", errNoBoard, boardID)
}

// RenameBoard changes a board's display name.
func RenameBoard(ph *ProjectHandle, boardID, name string) error {
	b := ph.Project.FindBoard(boardID)
	if b == nil {
		return fmt.Errorf("%w: %s", errNoBoard, boardID)
	}
	b.Name = name
	return Save(ph)
}
