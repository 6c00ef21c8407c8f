//go:build sqlite_fts5

package history

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			id UNINDEXED,
			url,
			title,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, url, title string) error {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE id = ?`, id)
	if _, err := tx.Exec(`INSERT INTO entries_fts (id, url, title) VALUES (?, ?, ?)`, id, url, title); err != nil {
		return fmt.Errorf("history: fts upsert: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE id = ?`, id)
}

// search performs an FTS5 match over url and title.
func (ix *searchIndex) search(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := ix.conn.Query(`
		SELECT id FROM entries_fts WHERE entries_fts MATCH ? ORDER BY rank LIMIT ?
	`, query, limit)
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
