// Package history records visited pages with at most one entry per
// (URL, calendar day) and serves day-bucketed listings plus omnibox
// search.
package history

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/lumenbrowser/lumen/internal/apperr"
	"github.com/lumenbrowser/lumen/internal/datastore"
)

// Entry is one visited page.
type Entry struct {
	datastore.Meta
	URL        string `json:"url"`
	Title      string `json:"title"`
	FaviconURL string `json:"faviconUrl,omitempty"`
}

// Prefs is the slice of the settings collaborator history consults.
type Prefs interface {
	SaveHistory() bool
}

// Service wraps the history store with the privacy gate, the same-day
// dedup rule, and the derived grouping/search views.
type Service struct {
	store          *datastore.Store[Entry, *Entry]
	prefs          Prefs
	internalScheme string
	idx            *searchIndex
	now            func() time.Time

	mu            sync.Mutex
	groups        []datastore.Group[Entry]
	groupsVersion uint64
	groupsValid   bool
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the dedup window's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the history service on top of store. internalScheme
// names the application protocol whose pages are never recorded. The
// search index is seeded from the store's mirror.
func NewService(store *datastore.Store[Entry, *Entry], prefs Prefs, internalScheme string, opts ...Option) (*Service, error) {
	idx, err := openSearchIndex()
	if err != nil {
		return nil, err
	}
	s := &Service{
		store:          store,
		prefs:          prefs,
		internalScheme: internalScheme,
		idx:            idx,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, e := range store.List() {
		if err := idx.upsert(e.ID, e.URL, e.Title); err != nil {
			slog.Warn("history: search index seed failed",
				slog.String("id", e.ID),
				slog.String("error", err.Error()))
			break
		}
	}
	return s, nil
}

// Add records a visit. The privacy gate runs first: a profile with
// save_history off gets apperr.ErrDisabled, and internal pages get
// apperr.ErrRejected. Otherwise the draft upserts against an existing
// same-URL entry created today — the window is measured against the
// system clock at insert time, never a caller-supplied timestamp.
func (s *Service) Add(draft Entry) (Entry, error) {
	var zero Entry
	if !s.prefs.SaveHistory() {
		return zero, fmt.Errorf("history: add: %w", apperr.ErrDisabled)
	}
	if draft.URL != "" {
		u, err := url.Parse(draft.URL)
		if err == nil && u.Scheme == s.internalScheme {
			return zero, fmt.Errorf("history: internal page %s: %w", draft.URL, apperr.ErrRejected)
		}
	}

	now := s.now()
	rec, _, err := s.store.Upsert(
		func(e *Entry) bool {
			return e.URL == draft.URL && datastore.SameDay(e.CreatedAt, now)
		},
		func(e *Entry) {
			e.URL = draft.URL
			e.Title = draft.Title
			e.FaviconURL = draft.FaviconURL
		},
		draft,
	)
	if err != nil {
		return zero, err
	}
	// The visit is durable at this point; the index is an in-memory
	// supplement and must not fail the add.
	if err := s.idx.upsert(rec.ID, rec.URL, rec.Title); err != nil {
		slog.Warn("history: search index update failed",
			slog.String("id", rec.ID),
			slog.String("error", err.Error()))
	}
	return rec, nil
}

// Remove deletes an entry. Unknown ids return false without error.
func (s *Service) Remove(id string) (bool, error) {
	ok, err := s.store.Remove(id)
	if err != nil {
		return false, err
	}
	if ok {
		if err := s.idx.delete(id); err != nil {
			slog.Warn("history: search index delete failed",
				slog.String("id", id),
				slog.String("error", err.Error()))
		}
	}
	return ok, nil
}

// Entries returns all history newest-first.
func (s *Service) Entries() []Entry {
	return datastore.SortByUpdatedDesc[Entry](s.store.List())
}

// Groups returns the calendar-day buckets, newest day first. The
// projection is pure; it is cached against the store's mutation counter
// and recomputed only after a write.
func (s *Service) Groups() []datastore.Group[Entry] {
	version := s.store.Version()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groupsValid && s.groupsVersion == version {
		return s.groups
	}
	s.groups = datastore.GroupByDay[Entry](s.store.List())
	s.groupsVersion = version
	s.groupsValid = true
	return s.groups
}

// Search returns entries whose URL or title matches the query,
// newest-first, at most limit.
func (s *Service) Search(query string, limit int) ([]Entry, error) {
	ids, err := s.idx.search(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.store.Get(id); ok {
			out = append(out, e)
		}
	}
	return datastore.SortByUpdatedDesc[Entry](out), nil
}

// Close releases the search index and the underlying store.
func (s *Service) Close() error {
	if err := s.idx.close(); err != nil {
		_ = s.store.Close()
		return err
	}
	return s.store.Close()
}
