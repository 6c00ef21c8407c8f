package datastore

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenbrowser/lumen/internal/apperr"
)

// Store is a durable collection of one record kind for one user, fronted
// by an in-memory mirror. All reads are served from the mirror; every
// mutation is journaled before it becomes visible, so a failed write
// leaves the mirror untouched.
//
// One mutex serializes all mutations, which makes Upsert's
// predicate-match-then-insert atomic with respect to other writers on the
// same store.
type Store[T any, PT interface {
	Record
	*T
}] struct {
	mu      sync.Mutex
	log     *journal // nil for ephemeral (incognito) stores
	mirror  map[string]T
	version uint64
	closed  bool
	now     func() time.Time
}

// Option configures a Store at open time.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Open loads the journal at path into the mirror before returning; the
// store is fully queryable once Open succeeds. When the journal carries
// substantially more lines than live records it is compacted in place.
func Open[T any, PT interface {
	Record
	*T
}](path string, opts ...Option) (*Store[T, PT], error) {
	s := newStore[T, PT](opts...)

	log, err := openJournal(path,
		func(id string, line []byte) error {
			var rec T
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("datastore: decode record %s: %w", id, err)
			}
			s.mirror[id] = rec
			return nil
		},
		func(id string) { delete(s.mirror, id) },
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
	}
	s.log = log

	if log.lines > len(s.mirror)*2+16 {
		if err := s.compactLocked(); err != nil {
			_ = log.close()
			return nil, err
		}
	}
	return s, nil
}

// OpenEphemeral creates a store with no backing file. It honors the same
// contract but nothing is ever persisted; incognito profiles use this.
func OpenEphemeral[T any, PT interface {
	Record
	*T
}](opts ...Option) *Store[T, PT] {
	return newStore[T, PT](opts...)
}

func newStore[T any, PT interface {
	Record
	*T
}](opts ...Option) *Store[T, PT] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T, PT]{
		mirror: make(map[string]T),
		now:    o.now,
	}
}

// List returns a copy of every live record. No I/O; ordering is up to the
// caller.
func (s *Store[T, PT]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.mirror))
	for _, rec := range s.mirror {
		out = append(out, rec)
	}
	return out
}

// Get returns the record with the given id.
func (s *Store[T, PT]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.mirror[id]
	return rec, ok
}

// Find returns the first record matching the predicate.
func (s *Store[T, PT]) Find(match func(PT) bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(match)
}

func (s *Store[T, PT]) findLocked(match func(PT) bool) (T, bool) {
	for _, rec := range s.mirror {
		rec := rec
		if match(&rec) {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of live records.
func (s *Store[T, PT]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mirror)
}

// Version returns the mutation counter. Derived views cache against it.
func (s *Store[T, PT]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Add assigns id and timestamps to draft, persists it, and inserts it
// into the mirror. The returned record is the canonical stored form.
func (s *Store[T, PT]) Add(draft T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(draft)
}

func (s *Store[T, PT]) addLocked(draft T) (T, error) {
	var zero T
	if s.closed {
		return zero, apperr.ErrClosed
	}
	m := PT(&draft).meta()
	m.ID = uuid.NewString()
	now := s.now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := s.persist(draft); err != nil {
		return zero, err
	}
	s.mirror[m.ID] = draft
	s.version++
	return draft, nil
}

// Update applies apply to a copy of the stored record, bumps updatedAt,
// persists, and swaps the copy into the mirror. Store-assigned fields
// survive whatever apply does to them.
func (s *Store[T, PT]) Update(id string, apply func(PT)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.closed {
		return zero, apperr.ErrClosed
	}
	cur, ok := s.mirror[id]
	if !ok {
		return zero, fmt.Errorf("datastore: update %s: %w", id, apperr.ErrNotFound)
	}
	return s.updateLocked(id, cur, apply)
}

func (s *Store[T, PT]) updateLocked(id string, cur T, apply func(PT)) (T, error) {
	var zero T
	created := PT(&cur).meta().CreatedAt

	next := cur
	apply(PT(&next))

	m := PT(&next).meta()
	m.ID = id
	m.CreatedAt = created
	m.UpdatedAt = s.now()
	if m.UpdatedAt.Before(created) {
		m.UpdatedAt = created
	}

	if err := s.persist(next); err != nil {
		return zero, err
	}
	s.mirror[id] = next
	s.version++
	return next, nil
}

// Upsert updates the first record matching the predicate, or inserts
// draft when nothing matches. The match and the mutation happen under one
// critical section, so two concurrent upserts with the same predicate
// cannot both insert. Returns the stored record and whether it was
// inserted.
func (s *Store[T, PT]) Upsert(match func(PT) bool, apply func(PT), draft T) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.closed {
		return zero, false, apperr.ErrClosed
	}
	if cur, ok := s.findLocked(match); ok {
		id := PT(&cur).meta().ID
		rec, err := s.updateLocked(id, cur, apply)
		return rec, false, err
	}
	rec, err := s.addLocked(draft)
	if err != nil {
		return zero, false, err
	}
	return rec, true, nil
}

// Remove deletes the record from storage and mirror. A missing id is a
// false result, not an error.
func (s *Store[T, PT]) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, apperr.ErrClosed
	}
	if _, ok := s.mirror[id]; !ok {
		return false, nil
	}
	if s.log != nil {
		if err := s.log.append(tombstone{ID: id, Deleted: true}); err != nil {
			return false, fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
		}
	}
	delete(s.mirror, id)
	s.version++
	return true, nil
}

// Close compacts and releases the journal. For ephemeral stores it just
// drops the mirror; that is the moment incognito data disappears.
func (s *Store[T, PT]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.log == nil {
		s.mirror = nil
		return nil
	}
	if err := s.compactLocked(); err != nil {
		_ = s.log.close()
		return err
	}
	return s.log.close()
}

func (s *Store[T, PT]) persist(rec T) error {
	if s.log == nil {
		return nil
	}
	if err := s.log.append(rec); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
	}
	return nil
}

// compactLocked rewrites the journal down to one line per live record.
func (s *Store[T, PT]) compactLocked() error {
	lines := make([][]byte, 0, len(s.mirror))
	for _, rec := range s.mirror {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: datastore: marshal: %w", apperr.ErrPersistence, err)
		}
		lines = append(lines, line)
	}
	if err := s.log.rewrite(lines); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
	}
	return nil
}
