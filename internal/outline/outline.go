/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package outline parses plain-text story outlines into structured acts
// and beats, and materializes them as a project with a pre-populated
// planning board.
package outline

// Outline is the parsed form of an outline text.
type Outline struct {
	Title      string
	Acts       []Act
	Characters []string
	Locations  []string
}

// Act groups beats under one act heading.
type Act struct {
	Name  string
	Beats []Beat
}

// Beat is one story event: a bullet line plus its indented continuation.
type Beat struct {
	Title    string
	Summary  string
	Mentions []string // @name character mentions, lower-cased, deduplicated
	LineNo   int
}

// Error is a non-fatal parse diagnostic with a 1-based line number.
type Error struct {
	Line    int
	Message string
}
