/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"storycanvas/internal/domain"
)

type pgDoc struct {
	docType string
	path    string
	boardID string
	refID   string
	text    string
}

// reindexDocumentsTx replaces the searchable documents for one project from a
// pushed manifest. Row shapes mirror the local SQLite index so SearchPG
// returns the same document types the desktop search does.
func reindexDocumentsTx(ctx context.Context, tx *sql.Tx, pid int64, manifest []byte) error {
	var proj domain.Project
	if err := json.Unmarshal(manifest, &proj); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE project_id = $1`, pid); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	for _, d := range collectDocs(&proj) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents(project_id, doc_type, path, board_id, ref_id, raw_text) VALUES($1,$2,$3,$4,$5,$6)`,
			pid, d.docType, d.path, nullStr(d.boardID), nullStr(d.refID), d.text); err != nil {
			return fmt.Errorf("insert document %s: %w", d.path, err)
		}
	}
	return nil
}

func collectDocs(proj *domain.Project) []pgDoc {
	var docs []pgDoc
	add := func(docType, path, boardID, refID, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		docs = append(docs, pgDoc{docType: docType, path: path, boardID: boardID, refID: refID, text: text})
	}

	add("project_name", "project:name", "", "", proj.Name)
	add("logline", "project:logline", "", "", proj.Metadata.Logline)
	add("project_notes", "project:notes", "", "", proj.Metadata.Notes)
	for _, c := range proj.Characters {
		add("character", "entity:character:"+c.ID, "", c.ID, c.Name)
		add("character_bio", "entity:character_bio:"+c.ID, "", c.ID, c.Bio)
	}
	for _, l := range proj.Locations {
		add("location", "entity:location:"+l.ID, "", l.ID, l.Name)
		add("location_desc", "entity:location_desc:"+l.ID, "", l.ID, l.Description)
	}
	for _, p := range proj.PlotPoints {
		add("plot_point", "entity:plot_point:"+p.ID, "", p.ID, p.Title)
		add("plot_summary", "entity:plot_summary:"+p.ID, "", p.ID, p.Summary)
	}
	for _, b := range proj.Boards {
		for _, el := range b.Elements {
			if el.Kind != domain.KindNote {
				continue
			}
			add("note", fmt.Sprintf("board:%s/element:%s", b.ID, el.ID), b.ID, "", el.Content)
		}
	}
	return docs
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
