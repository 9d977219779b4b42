/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"

	"storycanvas/internal/domain"
)

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerBoard: 10, MinInterval: 10 * time.Millisecond})
	b := "board-1"
	m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("a"), TS: time.Now()})
	m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("b"), TS: time.Now().Add(20 * time.Millisecond)})
	if _, boards, total := m.Stats(); boards != 1 || total != 2 {
		t.Fatalf("expected 1 board and 2 snapshots, got boards=%d total=%d", boards, total)
	}
	s, ok := m.Undo(b)
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(b)
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestUndoEmptyBoard(t *testing.T) {
	m := NewManager(Config{})
	if _, ok := m.Undo("board-9"); ok {
		t.Fatalf("undo on empty board should report false")
	}
	if _, ok := m.Redo("board-9"); ok {
		t.Fatalf("redo on empty board should report false")
	}
}

func TestCoalesce(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerBoard: 10, MinInterval: 50 * time.Millisecond})
	b := "board-2"
	t0 := time.Now()
	m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("1"), TS: t0})
	m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)}) // coalesce
	_, _, total := m.Stats()
	if total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(b)
	if !ok || string(s.Blob) != "2" {
		t.Fatalf("expected coalesced snapshot '2', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestPushInvalidatesRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	b := "board-3"
	t0 := time.Now()
	m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("a"), TS: t0})
	m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("b"), TS: t0.Add(10 * time.Millisecond)})
	if _, ok := m.Undo(b); !ok {
		t.Fatalf("undo failed")
	}
	m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("c"), TS: t0.Add(20 * time.Millisecond)})
	if _, ok := m.Redo(b); ok {
		t.Fatalf("redo should be invalidated by a new snapshot")
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerBoard: 2, MinInterval: 1 * time.Millisecond})
	b := "board-4"
	for i := 0; i < 10; i++ {
		m.PushSnapshot(Snapshot{BoardID: b, Blob: []byte("xxxxx"), TS: time.Now().Add(time.Duration(i) * time.Millisecond)})
	}
	_, _, total := m.Stats()
	if total > 2 {
		t.Fatalf("expected MaxPerBoard cap to limit to 2, got %d", total)
	}
}

func TestClearBoardIsolated(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(Snapshot{BoardID: "board-1", Blob: []byte("a"), TS: t0})
	m.PushSnapshot(Snapshot{BoardID: "board-2", Blob: []byte("b"), TS: t0.Add(10 * time.Millisecond)})
	m.ClearBoard("board-1")
	if _, ok := m.Undo("board-1"); ok {
		t.Fatalf("cleared board still has snapshots")
	}
	if _, ok := m.Undo("board-2"); !ok {
		t.Fatalf("clearing one board must not touch another")
	}
}

func TestBoardStateRoundTrip(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	st := BoardState{
		Elements: []domain.Element{{ID: "el-1", Kind: domain.KindNote, X: 10, Y: 20, Width: 200, Height: 70, Content: "storm"}},
		Edges:    []domain.Edge{{A: "el-1", B: "el-2"}},
	}
	if err := m.Capture("board-1", st, time.Now()); err != nil {
		t.Fatalf("capture: %v", err)
	}
	s, ok := m.Undo("board-1")
	if !ok {
		t.Fatalf("undo failed")
	}
	got, err := DecodeBoardState(s.Blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Elements) != 1 || got.Elements[0].Content != "storm" {
		t.Fatalf("elements = %+v", got.Elements)
	}
	if len(got.Edges) != 1 || got.Edges[0] != (domain.Edge{A: "el-1", B: "el-2"}) {
		t.Fatalf("edges = %+v", got.Edges)
	}
	if _, err := DecodeBoardState([]byte("{nope")); err == nil {
		t.Fatalf("expected decode error")
	}
}
