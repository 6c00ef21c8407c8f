package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/lumenbrowser/lumen/internal/apperr"
	"github.com/lumenbrowser/lumen/internal/bookmarks"
	"github.com/lumenbrowser/lumen/internal/datastore"
	"github.com/lumenbrowser/lumen/internal/downloads"
	"github.com/lumenbrowser/lumen/internal/history"
	"github.com/lumenbrowser/lumen/internal/session"
	"github.com/lumenbrowser/lumen/internal/settings"
	"github.com/lumenbrowser/lumen/internal/sites"
)

// Registry owns the id -> User map. Open and Close serialize on one
// mutex, which guarantees at most one live User per id. Teardown runs
// outside the mutex so other ids stay usable, but the id being closed is
// parked in closing until teardown finishes; Open on that id waits.
type Registry struct {
	dataDir string
	policy  session.Policy
	logger  *slog.Logger

	mu      sync.Mutex
	users   map[string]*User
	closing map[string]chan struct{}
	closed  bool
}

// NewRegistry creates an empty registry storing profile data under
// dataDir.
func NewRegistry(dataDir string, policy session.Policy, logger *slog.Logger) *Registry {
	return &Registry{
		dataDir: dataDir,
		policy:  policy,
		logger:  logger,
		users:   make(map[string]*User),
		closing: make(map[string]chan struct{}),
	}
}

// Open returns the live User for id, creating it (session, settings,
// all stores loaded) on first call. Open is idempotent per id; a second
// open returns the existing User regardless of the requested type. An
// empty id gets a fresh one assigned.
func (r *Registry) Open(ctx context.Context, id string, t Type) (*User, error) {
	r.mu.Lock()
	for {
		if r.closed {
			r.mu.Unlock()
			return nil, fmt.Errorf("user: registry: %w", apperr.ErrClosed)
		}
		ch, tearingDown := r.closing[id]
		if !tearingDown {
			break
		}
		r.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, fmt.Errorf("user: open %s: %w", id, ctx.Err())
		}
		r.mu.Lock()
	}
	defer r.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	if u, ok := r.users[id]; ok {
		return u, nil
	}

	var (
		u   *User
		err error
	)
	switch t {
	case TypeIncognito:
		u, err = r.openIncognito(id)
	case TypeNormal, "":
		u, err = r.openNormal(ctx, id)
	default:
		return nil, fmt.Errorf("user: unknown profile type %q", t)
	}
	if err != nil {
		return nil, err
	}

	r.users[id] = u
	r.logger.Info("profile opened",
		slog.String("user", id),
		slog.String("type", string(u.Type)))
	return u, nil
}

func (r *Registry) openNormal(ctx context.Context, id string) (*User, error) {
	dir := filepath.Join(r.dataDir, id)

	// Partial failure must not leak the pieces opened so far.
	var opened []io.Closer
	fail := func(err error) (*User, error) {
		for i := len(opened) - 1; i >= 0; i-- {
			_ = opened[i].Close()
		}
		return nil, err
	}

	prefs, err := settings.Open(filepath.Join(dir, "Settings.yaml"))
	if err != nil {
		return nil, fmt.Errorf("user: open settings for %s: %w", id, err)
	}

	sess, err := session.NewNormal(id, r.dataDir, r.policy)
	if err != nil {
		return nil, fmt.Errorf("user: open session for %s: %w", id, err)
	}
	opened = append(opened, sess)

	historyStore, err := datastore.Open[history.Entry](filepath.Join(dir, "History.db"))
	if err != nil {
		return fail(fmt.Errorf("user: open history store for %s: %w", id, err))
	}
	opened = append(opened, historyStore)
	bookmarkStore, err := datastore.Open[bookmarks.Bookmark](filepath.Join(dir, "Bookmarks.db"))
	if err != nil {
		return fail(fmt.Errorf("user: open bookmark store for %s: %w", id, err))
	}
	opened = append(opened, bookmarkStore)
	downloadStore, err := datastore.Open[downloads.Item](filepath.Join(dir, "Downloads.db"))
	if err != nil {
		return fail(fmt.Errorf("user: open download store for %s: %w", id, err))
	}
	opened = append(opened, downloadStore)
	siteStore, err := datastore.Open[sites.Entry](filepath.Join(dir, "Sites.db"))
	if err != nil {
		return fail(fmt.Errorf("user: open site store for %s: %w", id, err))
	}
	opened = append(opened, siteStore)

	hist, err := history.NewService(historyStore, prefs, session.Scheme)
	if err != nil {
		return fail(fmt.Errorf("user: history service for %s: %w", id, err))
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	go func() {
		if err := prefs.Watch(watchCtx, r.logger); err != nil {
			r.logger.Warn("settings watcher failed",
				slog.String("user", id),
				slog.String("error", err.Error()))
		}
	}()

	return &User{
		ID:        id,
		Type:      TypeNormal,
		Settings:  prefs,
		Session:   sess,
		Bookmarks: bookmarks.NewService(bookmarkStore),
		History:   hist,
		Downloads: downloads.NewService(downloadStore),
		Sites:     sites.NewService(siteStore),
		stopWatch: stopWatch,
	}, nil
}

func (r *Registry) openIncognito(id string) (*User, error) {
	sess, err := session.NewIncognito(id, r.policy)
	if err != nil {
		return nil, fmt.Errorf("user: open session for %s: %w", id, err)
	}

	prefs := settings.InMemory()
	hist, err := history.NewService(datastore.OpenEphemeral[history.Entry](), prefs, session.Scheme)
	if err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("user: history service for %s: %w", id, err)
	}

	return &User{
		ID:        id,
		Type:      TypeIncognito,
		Settings:  prefs,
		Session:   sess,
		Bookmarks: bookmarks.NewService(datastore.OpenEphemeral[bookmarks.Bookmark]()),
		History:   hist,
		Downloads: downloads.NewService(datastore.OpenEphemeral[downloads.Item]()),
		Sites:     sites.NewService(datastore.OpenEphemeral[sites.Entry]()),
	}, nil
}

// Get returns the live User for id, if open.
func (r *Registry) Get(id string) (*User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

// List returns all open users.
func (r *Registry) List() []*User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

// Close tears down the User for id and drops it from the registry.
// Closing an id that is not open returns apperr.ErrNotFound. The id is
// held in the closing set until teardown completes, so a concurrent Open
// on the same id cannot touch the collection files mid-compaction.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	u, ok := r.users[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("user: close %s: %w", id, apperr.ErrNotFound)
	}
	delete(r.users, id)
	ch := make(chan struct{})
	r.closing[id] = ch
	r.mu.Unlock()

	err := u.Close()

	r.mu.Lock()
	delete(r.closing, id)
	close(ch)
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("user: close %s: %w", id, err)
	}
	r.logger.Info("profile closed", slog.String("user", id))
	return nil
}

// CloseAll tears down every open profile. The registry refuses new opens
// afterwards.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	users := r.users
	r.users = make(map[string]*User)
	r.closed = true
	r.mu.Unlock()

	var firstErr error
	for id, u := range users {
		if err := u.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("user: close %s: %w", id, err)
		}
	}
	return firstErr
}
