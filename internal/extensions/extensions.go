// Package extensions implements the extension-host capability available
// to normal profiles: unpacked extensions live one directory per id under
// the profile's Extensions directory.
package extensions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/lumenbrowser/lumen/internal/apperr"
)

// Extension describes one loaded unpacked extension.
type Extension struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

type manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Host loads and unloads unpacked extensions for one profile.
type Host struct {
	dir string

	mu     sync.Mutex
	loaded map[string]*Extension
}

// NewHost creates a host rooted at dir, creating the directory if needed.
func NewHost(dir string) (*Host, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("extensions: mkdir: %w", err)
	}
	return &Host{dir: dir, loaded: make(map[string]*Extension)}, nil
}

// Load reads the manifest of the extension directory named id and marks
// it loaded. Loading an already-loaded id returns the existing entry.
func (h *Host) Load(id string) (*Extension, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ext, ok := h.loaded[id]; ok {
		return ext, nil
	}

	root := filepath.Join(h.dir, id)
	data, err := os.ReadFile(filepath.Join(root, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("extensions: %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("extensions: read manifest of %s: %w", id, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("extensions: parse manifest of %s: %w", id, err)
	}

	ext := &Extension{ID: id, Name: m.Name, Version: m.Version, Path: root}
	h.loaded[id] = ext
	return ext, nil
}

// Unload forgets a loaded extension. Unknown ids are a no-op.
func (h *Host) Unload(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.loaded, id)
}

// LoadAll loads every extension directory under the host root.
func (h *Host) LoadAll() ([]*Extension, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, fmt.Errorf("extensions: scan: %w", err)
	}
	var out []*Extension
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ext, err := h.Load(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, ext)
	}
	return out, nil
}

// Loaded returns the currently loaded extensions sorted by id.
func (h *Host) Loaded() []*Extension {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Extension, 0, len(h.loaded))
	for _, ext := range h.loaded {
		out = append(out, ext)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
