// Package testutil provides shared test helpers for setting up profile
// registries and stores.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/lumenbrowser/lumen/internal/session"
	"github.com/lumenbrowser/lumen/internal/user"
)

// TestRegistry creates a registry over a temp data directory that is
// torn down with the test.
func TestRegistry(t *testing.T) *user.Registry {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := user.NewRegistry(t.TempDir(), session.DefaultPolicy("", nil), logger)
	t.Cleanup(func() { r.CloseAll() })
	return r
}
