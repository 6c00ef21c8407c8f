// Package downloads implements CRUD over the download store plus the
// live handle map that ties in-progress transfers to their records.
package downloads

import (
	"sync"

	"github.com/lumenbrowser/lumen/internal/datastore"
)

// State is the lifecycle state of a download.
type State string

const (
	StateProgressing State = "progressing"
	StateCompleted   State = "completed"
	StateCancelled   State = "cancelled"
	StateInterrupted State = "interrupted"
)

// Item is one download record.
type Item struct {
	datastore.Meta
	URL           string `json:"url"`
	Filename      string `json:"filename"`
	SavePath      string `json:"savePath"`
	State         State  `json:"state"`
	ReceivedBytes int64  `json:"receivedBytes"`
	TotalBytes    int64  `json:"totalBytes"`
}

// Service wraps the download store. The handle map tracks which live
// transfer belongs to which record; it is memory-only and vanishes at
// teardown.
type Service struct {
	store *datastore.Store[Item, *Item]

	mu    sync.Mutex
	items map[string]string // transfer handle -> record id
}

// NewService builds the download service on top of store.
func NewService(store *datastore.Store[Item, *Item]) *Service {
	return &Service{store: store, items: make(map[string]string)}
}

// Add stores a new download record. Drafts without a state start as
// progressing.
func (s *Service) Add(draft Item) (Item, error) {
	if draft.State == "" {
		draft.State = StateProgressing
	}
	return s.store.Add(draft)
}

// Update applies apply to the download with the given id.
func (s *Service) Update(id string, apply func(*Item)) (Item, error) {
	return s.store.Update(id, apply)
}

// Remove deletes a download record. Unknown ids return false without
// error.
func (s *Service) Remove(id string) (bool, error) {
	return s.store.Remove(id)
}

// Downloads returns every record newest-first.
func (s *Service) Downloads() []Item {
	return datastore.SortByUpdatedDesc[Item](s.store.List())
}

// Groups returns the calendar-day buckets of the download list.
func (s *Service) Groups() []datastore.Group[Item] {
	return datastore.GroupByDay[Item](s.store.List())
}

// RegisterItem maps a live transfer handle to its record id.
func (s *Service) RegisterItem(handle, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[handle] = id
}

// Item resolves a transfer handle to its record id.
func (s *Service) Item(handle string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.items[handle]
	return id, ok
}

// ReleaseItem forgets a transfer handle once the download settles.
func (s *Service) ReleaseItem(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, handle)
}

// Close drops the handle map and releases the underlying store.
func (s *Service) Close() error {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	return s.store.Close()
}
