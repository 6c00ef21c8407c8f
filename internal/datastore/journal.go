package datastore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// journal is the append-only NDJSON file behind one store. Every mutation
// appends the full serialized record; removals append a tombstone line.
// Replaying the file top to bottom reproduces the live set.
type journal struct {
	path  string
	f     *os.File
	lines int
}

// tombstone marks a removed record in the journal. It doubles as the
// replay probe: decoding any line into it yields the id and delete flag.
type tombstone struct {
	ID      string `json:"_id"`
	Deleted bool   `json:"$$deleted"`
}

// openJournal opens (creating if needed) the journal at path and replays
// every line through visit. visit receives the raw record line for live
// records; tombstoned ids are reported through drop.
func openJournal(path string, visit func(id string, line []byte) error, drop func(id string)) (*journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("datastore: mkdir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("datastore: read journal: %w", err)
	}

	j := &journal{path: path}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		j.lines++
		var p tombstone
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("datastore: corrupt journal line in %s: %w", path, err)
		}
		if p.Deleted {
			drop(p.ID)
			continue
		}
		if err := visit(p.ID, line); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("datastore: open journal: %w", err)
	}
	j.f = f
	return j, nil
}

// append writes v as one NDJSON line and syncs it to disk. A failed
// write truncates back to the pre-append offset; a half-written line
// would make the journal unreplayable.
func (j *journal) append(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("datastore: marshal: %w", err)
	}
	line = append(line, '\n')

	off, err := j.f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("datastore: append: %w", err)
	}
	if _, err := j.f.Write(line); err != nil {
		_ = j.f.Truncate(off)
		return fmt.Errorf("datastore: append: %w", err)
	}
	if err := j.f.Sync(); err != nil {
		_ = j.f.Truncate(off)
		return fmt.Errorf("datastore: fsync: %w", err)
	}
	j.lines++
	return nil
}

// rewrite replaces the journal with exactly the given lines: tmp file,
// fsync, rename, then reopens the append handle.
func (j *journal) rewrite(lines [][]byte) error {
	dir := filepath.Dir(j.path)
	tmp, err := os.CreateTemp(dir, ".lumen-journal-*")
	if err != nil {
		return fmt.Errorf("datastore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("datastore: write temp: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("datastore: write temp: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("datastore: flush temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("datastore: fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("datastore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, j.path); err != nil {
		return fmt.Errorf("datastore: rename: %w", err)
	}
	success = true

	if j.f != nil {
		_ = j.f.Close()
	}
	f, err := os.OpenFile(j.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("datastore: reopen journal: %w", err)
	}
	j.f = f
	j.lines = len(lines)
	return nil
}

func (j *journal) close() error {
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	if err != nil {
		return fmt.Errorf("datastore: close journal: %w", err)
	}
	return nil
}
