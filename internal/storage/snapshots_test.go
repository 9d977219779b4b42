/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	ph, err := InitProject(t.TempDir(), testProject())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	blob, ts, err := GetLatestSnapshot(ctx, ph, "board-1")
	if err != nil {
		t.Fatalf("latest on empty: %v", err)
	}
	if blob != nil || !ts.IsZero() {
		t.Fatalf("expected no snapshot, got %v at %v", blob, ts)
	}

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		state := []byte(fmt.Sprintf(`{"rev":%d}`, i))
		if err := SaveSnapshot(ctx, ph, "board-1", state, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	blob, ts, err = GetLatestSnapshot(ctx, ph, "board-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !bytes.Equal(blob, []byte(`{"rev":2}`)) {
		t.Fatalf("latest blob = %s", blob)
	}
	if !ts.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("latest ts = %v", ts)
	}

	// Snapshots are keyed per board.
	blob, _, err = GetLatestSnapshot(ctx, ph, "board-2")
	if err != nil {
		t.Fatalf("other board: %v", err)
	}
	if blob != nil {
		t.Fatalf("board-2 should have none, got %s", blob)
	}
}

func TestListAndPruneSnapshots(t *testing.T) {
	ctx := context.Background()
	ph, err := InitProject(t.TempDir(), testProject())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		state := []byte(fmt.Sprintf(`{"rev":%d}`, i))
		if err := SaveSnapshot(ctx, ph, "board-1", state, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	snaps, err := ListSnapshots(ctx, ph, "board-1", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("list len = %d", len(snaps))
	}
	// Newest first.
	if !bytes.Equal(snaps[0].Blob, []byte(`{"rev":4}`)) {
		t.Fatalf("newest blob = %s", snaps[0].Blob)
	}
	if !snaps[0].TS.After(snaps[1].TS) {
		t.Fatalf("snapshots not sorted newest first: %v %v", snaps[0].TS, snaps[1].TS)
	}

	removed, err := PruneOldSnapshots(ctx, ph, "board-1", 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	snaps, err = ListSnapshots(ctx, ph, "board-1", 0)
	if err != nil {
		t.Fatalf("list after prune: %v", err)
	}
	if len(snaps) != 2 || !bytes.Equal(snaps[0].Blob, []byte(`{"rev":4}`)) {
		t.Fatalf("after prune: %d snapshots, newest %s", len(snaps), snaps[0].Blob)
	}

	// keepLast <= 0 is a no-op, never a wipe.
	removed, err = PruneOldSnapshots(ctx, ph, "board-1", 0)
	if err != nil || removed != 0 {
		t.Fatalf("prune 0: removed=%d err=%v", removed, err)
	}
}
