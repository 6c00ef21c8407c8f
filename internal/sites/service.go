// Package sites stores per-origin state: granted permissions, content
// settings, cookies, and zoom levels, all in one store distinguished by
// a kind tag.
package sites

import (
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lumenbrowser/lumen/internal/datastore"
)

// Kind tags the subtype of a site entry.
type Kind string

const (
	KindPermission Kind = "permission"
	KindContent    Kind = "content"
	KindCookie     Kind = "cookie"
	KindZoomLevel  Kind = "zoomLevel"
)

// Cookie is the payload of a cookie entry.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
}

// Entry is one site record. Origin and Kind are always set; the
// remaining fields belong to exactly one subtype and stay empty on the
// others.
type Entry struct {
	datastore.Meta
	Origin string `json:"origin"`
	Kind   Kind   `json:"kind"`

	// permission subtype
	PermissionType string `json:"permissionType,omitempty"`
	Granted        *bool  `json:"granted,omitempty"`

	// content subtype
	ContentType string `json:"contentType,omitempty"`
	Value       any    `json:"value,omitempty"`

	// cookie subtype
	Cookie *Cookie `json:"cookie,omitempty"`

	// zoom-level subtype
	Level *float64 `json:"level,omitempty"`
}

// Validate enforces the subtype shape on drafts coming in over the API.
func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Origin, validation.Required),
		validation.Field(&e.Kind, validation.Required,
			validation.In(KindPermission, KindContent, KindCookie, KindZoomLevel)),
		validation.Field(&e.PermissionType,
			validation.Required.When(e.Kind == KindPermission),
			validation.Empty.When(e.Kind != KindPermission)),
		validation.Field(&e.ContentType,
			validation.Required.When(e.Kind == KindContent),
			validation.Empty.When(e.Kind != KindContent)),
		validation.Field(&e.Cookie,
			validation.Required.When(e.Kind == KindCookie)),
		validation.Field(&e.Level,
			validation.Required.When(e.Kind == KindZoomLevel)),
	)
}

// secondary returns the lookup discriminator within the entry's kind.
func (e *Entry) secondary() string {
	switch e.Kind {
	case KindPermission:
		return e.PermissionType
	case KindContent:
		return e.ContentType
	default:
		return ""
	}
}

type indexKey struct {
	origin    string
	kind      Kind
	secondary string
}

// Service wraps the site store with the four filtered views and the
// (origin, kind, secondary-type) lookup index. The index is rebuilt
// lazily whenever the store's mutation counter moves.
type Service struct {
	store *datastore.Store[Entry, *Entry]

	mu         sync.Mutex
	idx        map[indexKey]string // -> record id
	idxVersion uint64
	idxValid   bool
}

// NewService builds the sites service on top of store.
func NewService(store *datastore.Store[Entry, *Entry]) *Service {
	return &Service{store: store}
}

// Add validates and stores a new site entry.
func (s *Service) Add(draft Entry) (Entry, error) {
	var zero Entry
	if err := draft.Validate(); err != nil {
		return zero, err
	}
	return s.store.Add(draft)
}

// Update applies apply to the entry with the given id. The kind tag is
// preserved so the filtered views stay a partition.
func (s *Service) Update(id string, apply func(*Entry)) (Entry, error) {
	return s.store.Update(id, func(e *Entry) {
		kind := e.Kind
		apply(e)
		e.Kind = kind
	})
}

// Remove deletes an entry. Unknown ids return false without error.
func (s *Service) Remove(id string) (bool, error) {
	return s.store.Remove(id)
}

// Sites returns every entry of every kind, newest-first.
func (s *Service) Sites() []Entry {
	return datastore.SortByUpdatedDesc[Entry](s.store.List())
}

// ByKind returns the entries of one kind, newest-first. The four kind
// views partition Sites: every entry appears in exactly one of them.
func (s *Service) ByKind(kind Kind) []Entry {
	var out []Entry
	for _, e := range s.store.List() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return datastore.SortByUpdatedDesc[Entry](out)
}

// Permissions returns all permission entries.
func (s *Service) Permissions() []Entry { return s.ByKind(KindPermission) }

// Contents returns all content-setting entries.
func (s *Service) Contents() []Entry { return s.ByKind(KindContent) }

// Cookies returns all cookie entries.
func (s *Service) Cookies() []Entry { return s.ByKind(KindCookie) }

// ZoomLevels returns all zoom-level entries.
func (s *Service) ZoomLevels() []Entry { return s.ByKind(KindZoomLevel) }

// GetPermission returns the permission entry for (origin, permType).
func (s *Service) GetPermission(origin, permType string) (Entry, bool) {
	return s.lookup(indexKey{origin: origin, kind: KindPermission, secondary: permType})
}

// GetContent returns the content entry for (origin, contentType).
func (s *Service) GetContent(origin, contentType string) (Entry, bool) {
	return s.lookup(indexKey{origin: origin, kind: KindContent, secondary: contentType})
}

func (s *Service) lookup(key indexKey) (Entry, bool) {
	version := s.store.Version()

	s.mu.Lock()
	if !s.idxValid || s.idxVersion != version {
		idx := make(map[indexKey]string, s.store.Len())
		for _, e := range s.store.List() {
			idx[indexKey{origin: e.Origin, kind: e.Kind, secondary: e.secondary()}] = e.ID
		}
		s.idx = idx
		s.idxVersion = version
		s.idxValid = true
	}
	id, ok := s.idx[key]
	s.mu.Unlock()

	if !ok {
		var zero Entry
		return zero, false
	}
	return s.store.Get(id)
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
