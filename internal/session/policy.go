package session

import (
	"net/http"
	"net/url"
	"strings"
)

// Scheme is the application's internal protocol. Pages under it (home,
// settings, ...) are rendered by the shell itself and never recorded in
// history.
const Scheme = "lumen"

// DefaultUserAgent is used when no override is configured.
const DefaultUserAgent = "Mozilla/5.0 (compatible) Lumen/1.0"

// Policy supplies the three cross-cutting partition configurators. They
// run exactly once per session, in order: user agent, request filtering,
// protocol registration.
type Policy struct {
	ConfigureUserAgent        func(p *Partition)
	ConfigureRequestFiltering func(p *Partition, userID string)
	ConfigureCustomProtocols  func(p *Partition, userID string)
}

// DefaultPolicy builds the standard policy set: the configured (or
// default) user agent, a host denylist filter, and the internal protocol
// handler.
func DefaultPolicy(userAgent string, blockedHosts []string) Policy {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	blocked := make(map[string]struct{}, len(blockedHosts))
	for _, h := range blockedHosts {
		blocked[strings.ToLower(h)] = struct{}{}
	}

	return Policy{
		ConfigureUserAgent: func(p *Partition) {
			p.userAgent = userAgent
		},
		ConfigureRequestFiltering: func(p *Partition, _ string) {
			if len(blocked) == 0 {
				return
			}
			p.filters = append(p.filters, func(u *url.URL) bool {
				_, deny := blocked[strings.ToLower(u.Hostname())]
				return !deny
			})
		},
		ConfigureCustomProtocols: func(p *Partition, userID string) {
			p.protocols[Scheme] = func(u *url.URL) (http.Handler, error) {
				return internalPageHandler(userID, u), nil
			}
		},
	}
}

// apply runs the configurators in the contract order.
func (pol Policy) apply(p *Partition, userID string) {
	if pol.ConfigureUserAgent != nil {
		pol.ConfigureUserAgent(p)
	}
	if pol.ConfigureRequestFiltering != nil {
		pol.ConfigureRequestFiltering(p, userID)
	}
	if pol.ConfigureCustomProtocols != nil {
		pol.ConfigureCustomProtocols(p, userID)
	}
}

// internalPageHandler serves lumen:// pages. The shell UI is out of
// scope here, so the handler only answers with the page identity.
func internalPageHandler(userID string, u *url.URL) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(Scheme + "://" + u.Host + " (" + userID + ")"))
	})
}
