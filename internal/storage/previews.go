/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"time"
)

// Default cap for the board thumbnail cache; override with
// SCV_PREVIEWS_MAX_BYTES.
const defaultPreviewsCapBytes int64 = 32 << 20

// GetPreview returns the cached thumbnail for a board at the given size,
// or nil when absent. A hit refreshes the access timestamp for LRU
// eviction.
func GetPreview(ctx context.Context, projectRoot, boardID string, w, h int) ([]byte, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRowContext(ctx,
		`SELECT thumb_blob FROM previews WHERE board_id=? AND width=? AND height=?`,
		boardID, w, h).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, _ = db.ExecContext(ctx,
		`UPDATE previews SET accessed_at=? WHERE board_id=? AND width=? AND height=?`,
		now, boardID, w, h)
	return blob, nil
}

// PutPreview stores or replaces a board thumbnail and evicts old entries
// past the cache cap.
func PutPreview(ctx context.Context, projectRoot, boardID string, w, h int, blob []byte) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = db.ExecContext(ctx,
		`INSERT INTO previews(board_id, width, height, thumb_blob, updated_at, accessed_at)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(board_id, width, height)
		 DO UPDATE SET thumb_blob=excluded.thumb_blob, updated_at=excluded.updated_at, accessed_at=excluded.accessed_at`,
		boardID, w, h, blob, now, now)
	if err != nil {
		return err
	}
	return evictPreviewsToFit(ctx, db, maxPreviewsBytesFromEnv())
}

// GetOrCreatePreview returns the cached thumbnail or generates, stores
// and returns a fresh one.
func GetOrCreatePreview(ctx context.Context, projectRoot, boardID string, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	blob, err := GetPreview(ctx, projectRoot, boardID, w, h)
	if err != nil {
		return nil, err
	}
	if blob != nil {
		return blob, nil
	}
	blob, err = gen(ctx)
	if err != nil {
		return nil, err
	}
	if err := PutPreview(ctx, projectRoot, boardID, w, h, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// InvalidatePreviews drops all cached sizes of one board, e.g. after a
// board edit.
func InvalidatePreviews(ctx context.Context, projectRoot, boardID string) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM previews WHERE board_id=?`, boardID)
	return err
}

// evictPreviewsToFit removes least recently accessed thumbnails until the
// cache fits capBytes.
func evictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	if capBytes <= 0 {
		return nil
	}
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(thumb_blob)),0) FROM previews`).Scan(&total); err != nil {
		return err
	}
	for total > capBytes {
		var id int64
		var size int64
		err := db.QueryRowContext(ctx,
			`SELECT id, LENGTH(thumb_blob) FROM previews ORDER BY accessed_at ASC LIMIT 1`).Scan(&id, &size)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM previews WHERE id=?`, id); err != nil {
			return err
		}
		total -= size
	}
	return nil
}

// TotalPreviewBytes reports the current cache size.
func TotalPreviewBytes(ctx context.Context, projectRoot string) (int64, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	err = db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(thumb_blob)),0) FROM previews`).Scan(&total)
	return total, err
}

func maxPreviewsBytesFromEnv() int64 {
	if v := os.Getenv("SCV_PREVIEWS_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultPreviewsCapBytes
}
