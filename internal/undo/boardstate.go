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
	"encoding/json"
	"fmt"
	"time"

	"storycanvas/internal/domain"
)

// BoardState is the reversible portion of a board: its elements and
// connection graph. Viewport is deliberately excluded so undo never
// yanks the camera around.
type BoardState struct {
	Elements []domain.Element `json:"elements"`
	Edges    []domain.Edge    `json:"edges"`
}

// EncodeBoardState serializes a board state into a snapshot blob.
func EncodeBoardState(st BoardState) ([]byte, error) {
	return json.Marshal(st)
}

// DecodeBoardState parses a snapshot blob back into a board state.
func DecodeBoardState(blob []byte) (BoardState, error) {
	var st BoardState
	if err := json.Unmarshal(blob, &st); err != nil {
		return BoardState{}, fmt.Errorf("decode board state: %w", err)
	}
	return st, nil
}

// Capture encodes the state and pushes it as a snapshot for the board.
func (m *Manager) Capture(boardID string, st BoardState, ts time.Time) error {
	blob, err := EncodeBoardState(st)
	if err != nil {
		return err
	}
	m.PushSnapshot(Snapshot{BoardID: boardID, Blob: blob, TS: ts})
	return nil
}
