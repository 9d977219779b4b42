/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"log/slog"

	applog "storycanvas/internal/log"

	"storycanvas/internal/domain"
)

// Store is the persistence collaborator for one board. The model calls it
// after every mutation and never blocks on or rolls back from its errors;
// failures are logged and the in-memory state is retained as-is.
type Store interface {
	ListElements(boardID string) ([]domain.Element, error)
	CreateElement(boardID string, el domain.Element) error
	UpdateElement(boardID, id string, patch ElementPatch) error
	DeleteElement(boardID, id string) error
	ListEdges(boardID string) ([]domain.Edge, error)
	ReplaceEdges(boardID string, edges []domain.Edge) error
}

// ElementPatch carries only the changed fields of an element so the store
// does not have to rewrite whole records on every drag.
type ElementPatch struct {
	X, Y          *float64
	Width, Height *float64
	Content       *string
	Style         *domain.ElementStyle
}

// Apply copies the set fields onto el. Negative sizes are clamped to zero.
func (p ElementPatch) Apply(el *domain.Element) {
	if p.X != nil {
		el.X = *p.X
	}
	if p.Y != nil {
		el.Y = *p.Y
	}
	if p.Width != nil {
		el.Width = maxf(*p.Width, 0)
	}
	if p.Height != nil {
		el.Height = maxf(*p.Height, 0)
	}
	if p.Content != nil {
		el.Content = *p.Content
	}
	if p.Style != nil {
		el.Style = *p.Style
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Model holds the in-memory state of one board: the placed elements in
// insertion order and the connection graph as a single set of unordered
// edges with an incidence index. A single canvas instance owns a Model
// exclusively; all mutations are synchronous.
type Model struct {
	boardID  string
	store    Store
	log      *slog.Logger
	elements map[string]*domain.Element
	order    []string
	edges    []domain.Edge
	edgeSet  map[edgeKey]struct{}
	incident map[string][]string // element id -> peer ids
	seq      int
}

type edgeKey struct{ lo, hi string }

func keyFor(a, b string) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// NewModel creates an empty model bound to a board and its store.
// Pass a nil store for a purely in-memory board (tests, previews).
func NewModel(boardID string, store Store) *Model {
	return &Model{
		boardID:  boardID,
		store:    store,
		log:      applog.WithComponent("canvas").With(slog.String("board", boardID)),
		elements: map[string]*domain.Element{},
		edgeSet:  map[edgeKey]struct{}{},
		incident: map[string][]string{},
	}
}

// Load replaces the in-memory state with the store's view of the board.
// Called once at canvas mount; afterwards the model updates optimistically
// and never re-reads.
func (m *Model) Load() error {
	if m.store == nil {
		return nil
	}
	els, err := m.store.ListElements(m.boardID)
	if err != nil {
		return fmt.Errorf("load elements: %w", err)
	}
	edges, err := m.store.ListEdges(m.boardID)
	if err != nil {
		return fmt.Errorf("load edges: %w", err)
	}
	m.elements = make(map[string]*domain.Element, len(els))
	m.order = m.order[:0]
	for i := range els {
		el := els[i]
		m.elements[el.ID] = &el
		m.order = append(m.order, el.ID)
	}
	m.edges = nil
	m.edgeSet = map[edgeKey]struct{}{}
	m.incident = map[string][]string{}
	for _, e := range edges {
		m.addEdgeLocal(e)
	}
	return nil
}

// Add inserts an element, assigning an id when it has none, and persists
// the create. The stored element (with its id) is returned.
func (m *Model) Add(el domain.Element) domain.Element {
	if el.ID == "" {
		el.ID = m.nextID(el.Kind)
	}
	if el.Width < 0 {
		el.Width = 0
	}
	if el.Height < 0 {
		el.Height = 0
	}
	cp := el
	m.elements[el.ID] = &cp
	m.order = append(m.order, el.ID)
	if m.store != nil {
		if err := m.store.CreateElement(m.boardID, el); err != nil {
			m.log.Error("persist create failed", slog.String("element", el.ID), slog.Any("err", err))
		}
	}
	return el
}

// Update applies a partial patch to an element and persists only the
// changed fields. Unknown ids are ignored.
func (m *Model) Update(id string, patch ElementPatch) {
	el, ok := m.elements[id]
	if !ok {
		return
	}
	patch.Apply(el)
	if m.store != nil {
		if err := m.store.UpdateElement(m.boardID, id, patch); err != nil {
			m.log.Error("persist update failed", slog.String("element", id), slog.Any("err", err))
		}
	}
}

// Remove deletes an element and every edge incident to it, so no dangling
// references survive. Removing an absent id is a no-op.
func (m *Model) Remove(id string) {
	if _, ok := m.elements[id]; !ok {
		return
	}
	delete(m.elements, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	touched := len(m.incident[id]) > 0
	if touched {
		kept := m.edges[:0]
		for _, e := range m.edges {
			if e.A == id || e.B == id {
				delete(m.edgeSet, keyFor(e.A, e.B))
				continue
			}
			kept = append(kept, e)
		}
		m.edges = kept
		for _, peer := range m.incident[id] {
			m.incident[peer] = removeStr(m.incident[peer], id)
		}
		delete(m.incident, id)
	}
	if m.store != nil {
		if err := m.store.DeleteElement(m.boardID, id); err != nil {
			m.log.Error("persist delete failed", slog.String("element", id), slog.Any("err", err))
		}
		if touched {
			m.persistEdges()
		}
	}
}

// Connect links two elements. Self-links, duplicate pairs (in either
// order) and unknown ids are silent no-ops.
func (m *Model) Connect(a, b string) {
	if a == b {
		return
	}
	if _, ok := m.elements[a]; !ok {
		return
	}
	if _, ok := m.elements[b]; !ok {
		return
	}
	k := keyFor(a, b)
	if _, dup := m.edgeSet[k]; dup {
		return
	}
	m.addEdgeLocal(domain.Edge{A: a, B: b})
	if m.store != nil {
		m.persistEdges()
	}
}

// Disconnect removes the edge between two elements if present.
func (m *Model) Disconnect(a, b string) {
	k := keyFor(a, b)
	if _, ok := m.edgeSet[k]; !ok {
		return
	}
	delete(m.edgeSet, k)
	for i, e := range m.edges {
		if keyFor(e.A, e.B) == k {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			break
		}
	}
	m.incident[a] = removeStr(m.incident[a], b)
	m.incident[b] = removeStr(m.incident[b], a)
	if m.store != nil {
		m.persistEdges()
	}
}

func (m *Model) addEdgeLocal(e domain.Edge) {
	m.edges = append(m.edges, e)
	m.edgeSet[keyFor(e.A, e.B)] = struct{}{}
	m.incident[e.A] = append(m.incident[e.A], e.B)
	m.incident[e.B] = append(m.incident[e.B], e.A)
}

func (m *Model) persistEdges() {
	if err := m.store.ReplaceEdges(m.boardID, m.Edges()); err != nil {
		m.log.Error("persist edges failed", slog.Any("err", err))
	}
}

func removeStr(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Element returns a copy of the element with the given id.
func (m *Model) Element(id string) (domain.Element, bool) {
	el, ok := m.elements[id]
	if !ok {
		return domain.Element{}, false
	}
	return *el, true
}

// Elements returns copies of all elements in insertion order.
func (m *Model) Elements() []domain.Element {
	out := make([]domain.Element, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.elements[id])
	}
	return out
}

// Edges returns copies of all edges in creation order.
func (m *Model) Edges() []domain.Edge {
	out := make([]domain.Edge, len(m.edges))
	copy(out, m.edges)
	return out
}

// Connected reports whether an edge exists between a and b in either order.
func (m *Model) Connected(a, b string) bool {
	_, ok := m.edgeSet[keyFor(a, b)]
	return ok
}

// Neighbors returns the ids connected to id.
func (m *Model) Neighbors(id string) []string {
	out := make([]string, len(m.incident[id]))
	copy(out, m.incident[id])
	return out
}

// Len returns the element count.
func (m *Model) Len() int { return len(m.order) }

// HitTest returns the topmost element whose box contains the world point,
// scanning in reverse insertion order so later elements win.
func (m *Model) HitTest(wx, wy float64) (domain.Element, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		el := m.elements[m.order[i]]
		if wx >= el.X && wx <= el.X+el.Width && wy >= el.Y && wy <= el.Y+el.Height {
			return *el, true
		}
	}
	return domain.Element{}, false
}

func (m *Model) nextID(kind domain.ElementKind) string {
	for {
		m.seq++
		id := fmt.Sprintf("%s-%d", kind, m.seq)
		if _, taken := m.elements[id]; !taken {
			return id
		}
	}
}
