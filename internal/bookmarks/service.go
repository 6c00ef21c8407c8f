// Package bookmarks implements plain CRUD over the bookmark store, with
// folder nesting via ParentID.
package bookmarks

import (
	"github.com/lumenbrowser/lumen/internal/datastore"
)

// Bookmark is one saved page or folder.
type Bookmark struct {
	datastore.Meta
	URL      string `json:"url,omitempty"`
	Title    string `json:"title"`
	ParentID string `json:"parentId,omitempty"`
	IsFolder bool   `json:"isFolder,omitempty"`
}

// Service wraps the bookmark store. No reconciliation: add, update, and
// remove map straight onto the store contract.
type Service struct {
	store *datastore.Store[Bookmark, *Bookmark]
}

// NewService builds the bookmark service on top of store.
func NewService(store *datastore.Store[Bookmark, *Bookmark]) *Service {
	return &Service{store: store}
}

// Add stores a new bookmark and returns the canonical record.
func (s *Service) Add(draft Bookmark) (Bookmark, error) {
	return s.store.Add(draft)
}

// Update applies apply to the bookmark with the given id.
func (s *Service) Update(id string, apply func(*Bookmark)) (Bookmark, error) {
	return s.store.Update(id, apply)
}

// Remove deletes a bookmark. Unknown ids return false without error.
func (s *Service) Remove(id string) (bool, error) {
	return s.store.Remove(id)
}

// Bookmarks returns every record newest-first.
func (s *Service) Bookmarks() []Bookmark {
	return datastore.SortByUpdatedDesc[Bookmark](s.store.List())
}

// Folders returns only folder records, newest-first.
func (s *Service) Folders() []Bookmark {
	var out []Bookmark
	for _, b := range s.store.List() {
		if b.IsFolder {
			out = append(out, b)
		}
	}
	return datastore.SortByUpdatedDesc[Bookmark](out)
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
