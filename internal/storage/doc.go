/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists Story Canvas projects on disk.
//
// A project is a directory holding a human-readable JSON manifest
// (story.json) with the narrative entities and boards, standard
// subfolders for assets and exports, timestamped manifest backups, and a
// derived SQLite index under .scv/ used for full-text search, board
// snapshots and preview caching. The manifest is the source of truth;
// the index can always be rebuilt from it.
package storage
