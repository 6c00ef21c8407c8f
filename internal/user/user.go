// Package user aggregates one profile's session and data services and
// hosts the process-wide registry that opens and closes profiles.
package user

import (
	"context"
	"errors"

	"github.com/lumenbrowser/lumen/internal/bookmarks"
	"github.com/lumenbrowser/lumen/internal/downloads"
	"github.com/lumenbrowser/lumen/internal/history"
	"github.com/lumenbrowser/lumen/internal/session"
	"github.com/lumenbrowser/lumen/internal/settings"
	"github.com/lumenbrowser/lumen/internal/sites"
)

// Type distinguishes the two profile variants.
type Type string

const (
	TypeNormal    Type = "normal"
	TypeIncognito Type = "incognito"
)

// User is one open profile: a session plus one instance of each data
// service, all keyed by the same id. Records never cross users.
type User struct {
	ID   string
	Type Type

	Settings  *settings.Service
	Session   session.Session
	Bookmarks *bookmarks.Service
	History   *history.Service
	Downloads *downloads.Service
	Sites     *sites.Service

	stopWatch context.CancelFunc
}

// Name returns the profile's display name from settings.
func (u *User) Name() string {
	return u.Settings.Config().Name
}

// Avatar returns the profile's avatar reference from settings.
func (u *User) Avatar() string {
	return u.Settings.Config().Avatar
}

// Close tears the profile down: settings watcher, data services, then
// the session. For incognito this is the moment all state disappears.
func (u *User) Close() error {
	if u.stopWatch != nil {
		u.stopWatch()
	}
	var errs []error
	for _, c := range []interface{ Close() error }{
		u.Bookmarks, u.History, u.Downloads, u.Sites, u.Session,
	} {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
