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
	"fmt"
	"strings"

	"storycanvas/internal/storage"
)

// SearchPG runs a full text search over the server-side documents table for
// one project. The query shape mirrors the local SQLite index so the desktop
// app can switch between the two without translating results.
func SearchPG(ctx context.Context, db *sql.DB, projectID int64, q storage.SearchQuery) ([]storage.SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		conds []string
		args  []any
	)
	args = append(args, projectID)
	conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))

	text := strings.TrimSpace(q.Text)
	if text != "" {
		args = append(args, text)
		conds = append(conds, fmt.Sprintf("search_vector @@ plainto_tsquery('simple', $%d)", len(args)))
	}
	if len(q.Types) > 0 {
		placeholders := make([]string, 0, len(q.Types))
		for _, t := range q.Types {
			args = append(args, t)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conds = append(conds, fmt.Sprintf("doc_type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if q.BoardID != "" {
		args = append(args, q.BoardID)
		conds = append(conds, fmt.Sprintf("board_id = $%d", len(args)))
	}

	snippetExpr := "substr(coalesce(raw_text, ''), 1, 160)"
	if text != "" {
		// ts_headline marks matches the same way the SQLite snippet() call does.
		// $2 is the search text bound above.
		snippetExpr = "ts_headline('simple', coalesce(raw_text, ''), plainto_tsquery('simple', $2), 'StartSel=[, StopSel=], MaxWords=12, MinWords=4')"
	}

	args = append(args, limit)
	limitIdx := len(args)
	args = append(args, offset)
	offsetIdx := len(args)

	query := fmt.Sprintf(`
SELECT id, doc_type, path, coalesce(ref_id, ''), coalesce(board_id, ''), %s
FROM documents
WHERE %s
ORDER BY id
LIMIT $%d OFFSET $%d`, snippetExpr, strings.Join(conds, " AND "), limitIdx, offsetIdx)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult
		if err := rows.Scan(&r.DocID, &r.Type, &r.Path, &r.RefID, &r.BoardID, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
