package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const indexSchemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id    TEXT PRIMARY KEY,
	url   TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT ''
);
`

// searchIndex is the omnibox lookup table over (url, title). It lives in
// an in-memory SQLite database: the journal file stays the only durable
// artifact of the history store.
type searchIndex struct {
	conn *sql.DB
}

func openSearchIndex() (*searchIndex, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("history: open index: %w", err)
	}
	// A :memory: database exists per connection; the pool must not grow.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(indexSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: index schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: index fts: %w", err)
	}
	return &searchIndex{conn: conn}, nil
}

func (ix *searchIndex) upsert(id, url, title string) error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO entries (id, url, title) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET url = excluded.url, title = excluded.title
	`, id, url, title)
	if err != nil {
		return fmt.Errorf("history: index upsert: %w", err)
	}
	if err := ftsUpsert(tx, id, url, title); err != nil {
		return err
	}
	return tx.Commit()
}

func (ix *searchIndex) delete(id string) error {
	tx, err := ix.conn.Begin()
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("history: index delete: %w", err)
	}
	ftsDelete(tx, id)
	return tx.Commit()
}

func (ix *searchIndex) close() error {
	return ix.conn.Close()
}
