/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"testing"

	"storycanvas/internal/canvas"
	"storycanvas/internal/domain"
)

func TestBoardStoreBacksCanvasModel(t *testing.T) {
	ph, err := InitProject(t.TempDir(), testProject())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	store := NewBoardStore(ph)

	m := canvas.NewModel("board-1", store)
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("loaded %d elements", m.Len())
	}

	note := m.Add(domain.Element{Kind: domain.KindNote, X: 10, Y: 10, Width: 200, Height: 70, Content: "act two sags"})
	m.Connect("el-1", note.ID)

	// Every mutation flushed to disk: reopen and check.
	got, err := Open(ph.Root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	b := got.Project.FindBoard("board-1")
	if b == nil || len(b.Elements) != 2 {
		t.Fatalf("persisted elements: %+v", b)
	}
	if len(b.Edges) != 1 || b.Edges[0].A != "el-1" || b.Edges[0].B != note.ID {
		t.Fatalf("persisted edges: %+v", b.Edges)
	}

	m.Remove("el-1")
	got, _ = Open(ph.Root)
	b = got.Project.FindBoard("board-1")
	if len(b.Elements) != 1 || len(b.Edges) != 0 {
		t.Fatalf("cascade not persisted: %+v", b)
	}
}

func TestBoardStoreUpdatePatch(t *testing.T) {
	ph, err := InitProject(t.TempDir(), testProject())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	store := NewBoardStore(ph)
	x := 222.0
	if err := store.UpdateElement("board-1", "el-1", canvas.ElementPatch{X: &x}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := Open(ph.Root)
	el := got.Project.FindBoard("board-1").Elements[0]
	if el.X != 222 || el.Y != 100 {
		t.Fatalf("patched element = (%v,%v)", el.X, el.Y)
	}
	if err := store.UpdateElement("board-1", "ghost", canvas.ElementPatch{X: &x}); err == nil {
		t.Fatalf("expected error for unknown element")
	}
	if err := store.UpdateElement("nope", "el-1", canvas.ElementPatch{X: &x}); err == nil {
		t.Fatalf("expected error for unknown board")
	}
}

func TestBoardStoreViewportSink(t *testing.T) {
	ph, err := InitProject(t.TempDir(), testProject())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	store := NewBoardStore(ph)
	vs := domain.ViewportState{Zoom: 1.5, PanX: -40, PanY: 80}
	if err := store.SaveViewport("board-1", vs); err != nil {
		t.Fatalf("save viewport: %v", err)
	}
	got, _ := Open(ph.Root)
	if got.Project.FindBoard("board-1").Viewport != vs {
		t.Fatalf("viewport = %+v", got.Project.FindBoard("board-1").Viewport)
	}
}

func TestBoardStoreResolvesEntityNames(t *testing.T) {
	ph, err := InitProject(t.TempDir(), testProject())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	store := NewBoardStore(ph)
	name, ok := store.EntityName(domain.KindCharacter, "ch-1")
	if !ok || name != "Mara" {
		t.Fatalf("resolved %q %v", name, ok)
	}
	if _, ok := store.EntityName(domain.KindCharacter, "ghost"); ok {
		t.Fatalf("resolved unknown ref")
	}
}

func TestBoardManagement(t *testing.T) {
	ph, err := InitProject(t.TempDir(), testProject())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	b, err := AddBoard(ph, "Act Two")
	if err != nil {
		t.Fatalf("add board: %v", err)
	}
	if b.ID == "board-1" {
		t.Fatalf("duplicate board id")
	}
	if err := RenameBoard(ph, b.ID, "Act 2"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := DeleteBoard(ph, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteBoard(ph, "board-1"); err == nil {
		t.Fatalf("deleted the last board")
	}
}
