// Package session implements the per-profile browsing context: an
// isolated partition (cookies, cache, network policies) plus, for normal
// profiles, the extension-host capability.
package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
)

// RequestFilter decides whether a request to the given URL may proceed.
type RequestFilter func(u *url.URL) bool

// ProtocolHandler serves requests for a custom URL scheme.
type ProtocolHandler func(u *url.URL) (http.Handler, error)

// Partition is one profile's isolated browsing context. It is assembled
// once at session construction and immutable afterwards; only the cookie
// jar's contents change over its lifetime.
type Partition struct {
	id         string
	dir        string
	persistent bool

	jar       http.CookieJar
	userAgent string
	filters   []RequestFilter
	protocols map[string]ProtocolHandler
}

// newPartition creates the partition storage at dir. A non-persistent
// partition still has a dir (cache needs somewhere to live) but the owner
// removes it at teardown.
func newPartition(id, dir string, persistent bool) (*Partition, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create partition dir: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("session: cookie jar: %w", err)
	}
	return &Partition{
		id:         id,
		dir:        dir,
		persistent: persistent,
		jar:        jar,
		protocols:  make(map[string]ProtocolHandler),
	}, nil
}

// ID returns the owning user id the partition is keyed by.
func (p *Partition) ID() string { return p.id }

// Dir returns the partition's storage directory.
func (p *Partition) Dir() string { return p.dir }

// Persistent reports whether the partition survives restarts.
func (p *Partition) Persistent() bool { return p.persistent }

// CookieJar returns the partition's cookie jar.
func (p *Partition) CookieJar() http.CookieJar { return p.jar }

// UserAgent returns the partition's user-agent string.
func (p *Partition) UserAgent() string { return p.userAgent }

// AllowRequest runs the partition's request filters in install order.
// A request passes only if no filter rejects it.
func (p *Partition) AllowRequest(u *url.URL) bool {
	for _, f := range p.filters {
		if !f(u) {
			return false
		}
	}
	return true
}

// Protocol returns the handler registered for scheme, if any.
func (p *Partition) Protocol(scheme string) (ProtocolHandler, bool) {
	h, ok := p.protocols[scheme]
	return h, ok
}
