//go:build !sqlite_fts5

package history

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search uses the LIKE fallback below.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// search performs a LIKE-based substring match (fallback when FTS5 is
// not compiled in).
func (ix *searchIndex) search(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := ix.conn.Query(`
		SELECT id FROM entries WHERE url LIKE ? OR title LIKE ? LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("history: search: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
