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
	"sync"
	"time"
)

// Snapshot represents a reversible state blob for a board.
// Blob content is opaque to the manager; size is estimated as len(Blob).
// TS is when the snapshot was captured.
type Snapshot struct {
	BoardID string
	Blob    []byte
	TS      time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerBoard limits number of snapshots per board kept in memory (0 means unlimited).
	MaxPerBoard int
	// MinInterval coalesces snapshots captured within the interval for the same board,
	// replacing the previous one instead of pushing a new entry. Rapid edits like
	// dragging or pen strokes collapse into one undo step.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per board with performance safeguards.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-board stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	// Set conservative defaults if not provided
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records a snapshot for a board. If within MinInterval from the last
// snapshot on the same board, it replaces the last one. Clears redo stack for that board.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.BoardID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.BoardID] = stack
			m.redo[s.BoardID] = nil
			m.enforceCapsLocked(s.BoardID)
			return
		}
	}
	// Push new
	stack = append(stack, s)
	m.undo[s.BoardID] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the board
	m.redo[s.BoardID] = nil
	m.enforceCapsLocked(s.BoardID)
}

// Undo pops from the board undo stack and pushes to redo stack, returning the snapshot.
func (m *Manager) Undo(boardID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[boardID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[boardID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[boardID] = append(m.redo[boardID], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(boardID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[boardID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[boardID] = r[:len(r)-1]
	m.undo[boardID] = append(m.undo[boardID], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(boardID)
	return s, true
}

// ClearBoard clears undo/redo stacks for a board to free memory.
func (m *Manager) ClearBoard(boardID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[boardID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, boardID)
	delete(m.redo, boardID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, boards int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	boards = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, boards, totalSnapshots
}

func (m *Manager) enforceCapsLocked(boardID string) {
	// Per-board depth cap
	if m.cfg.MaxPerBoard > 0 {
		stack := m.undo[boardID]
		if len(stack) > m.cfg.MaxPerBoard {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerBoard
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[boardID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all boards
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestBoard := ""
		oldestIdx := -1
		var oldestTS time.Time
		for board, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestBoard = board
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestBoard]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestBoard] = stack[1:]
		if len(m.undo[oldestBoard]) == 0 {
			delete(m.undo, oldestBoard)
		}
	}
}
