package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lumenbrowser/lumen/internal/apperr"
	"github.com/lumenbrowser/lumen/internal/bookmarks"
	"github.com/lumenbrowser/lumen/internal/session"
)

func testRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRegistry(dir, session.DefaultPolicy("", nil), logger)
	t.Cleanup(func() { r.CloseAll() })
	return r, dir
}

func TestOpenIsIdempotent(t *testing.T) {
	r, _ := testRegistry(t)
	ctx := context.Background()

	first, err := r.Open(ctx, "alice", TypeNormal)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	second, err := r.Open(ctx, "alice", TypeNormal)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if first != second {
		t.Error("second open returned a different User")
	}
	if len(r.List()) != 1 {
		t.Errorf("List = %d users", len(r.List()))
	}
}

func TestOpenAssignsID(t *testing.T) {
	r, _ := testRegistry(t)
	u, err := r.Open(context.Background(), "", TypeIncognito)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if u.ID == "" {
		t.Error("no id assigned")
	}
}

func TestNormalProfilePersistsAcrossReopen(t *testing.T) {
	r, dir := testRegistry(t)
	ctx := context.Background()

	u, err := r.Open(ctx, "alice", TypeNormal)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec, err := u.Bookmarks.Add(bookmarks.Bookmark{URL: "https://a.com", Title: "A"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Close("alice"); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := r.Open(ctx, "alice", TypeNormal)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	list := reopened.Bookmarks.Bookmarks()
	if len(list) != 1 || list[0].ID != rec.ID {
		t.Errorf("bookmarks after reopen = %+v", list)
	}
	if _, err := os.Stat(filepath.Join(dir, "alice", "Bookmarks.db")); err != nil {
		t.Errorf("collection file missing: %v", err)
	}
}

func TestIncognitoProfileLeavesNothingBehind(t *testing.T) {
	r, dir := testRegistry(t)
	ctx := context.Background()

	u, err := r.Open(ctx, "ghost", TypeIncognito)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := u.Bookmarks.Add(bookmarks.Bookmark{URL: "https://a.com", Title: "A"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := u.Session.Extensions(); !errors.Is(err, apperr.ErrUnsupported) {
		t.Errorf("Extensions err = %v", err)
	}
	if err := r.Close("ghost"); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "ghost")); !os.IsNotExist(err) {
		t.Error("incognito profile left data on disk")
	}

	reopened, err := r.Open(ctx, "ghost", TypeIncognito)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(reopened.Bookmarks.Bookmarks()) != 0 {
		t.Error("incognito data survived close")
	}
}

func TestCloseUnknownProfile(t *testing.T) {
	r, _ := testRegistry(t)
	if err := r.Close("nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentOpenSameID(t *testing.T) {
	r, _ := testRegistry(t)
	ctx := context.Background()

	const n = 8
	users := make([]*User, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := r.Open(ctx, "alice", TypeNormal)
			if err != nil {
				t.Errorf("Open: %v", err)
				return
			}
			users[i] = u
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if users[i] != users[0] {
			t.Fatal("concurrent opens produced distinct Users")
		}
	}
}

func TestCloseAndOpenSameIDDoNotOverlap(t *testing.T) {
	r, _ := testRegistry(t)
	ctx := context.Background()

	u, err := r.Open(ctx, "alice", TypeNormal)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := u.Bookmarks.Add(bookmarks.Bookmark{URL: "https://a.com", Title: "A"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for i := 0; i < 25; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Close("alice")
		}()
		go func() {
			defer wg.Done()
			if _, err := r.Open(ctx, "alice", TypeNormal); err != nil {
				t.Errorf("racing Open: %v", err)
			}
		}()
		wg.Wait()

		if n := len(r.List()); n > 1 {
			t.Fatalf("iteration %d: %d live users for one id", i, n)
		}

		cur, err := r.Open(ctx, "alice", TypeNormal)
		if err != nil {
			t.Fatalf("iteration %d: reopen: %v", i, err)
		}
		if got := len(cur.Bookmarks.Bookmarks()); got != 1 {
			t.Fatalf("iteration %d: %d bookmarks, want 1", i, got)
		}
	}
}

func TestOpenNormalFailureDoesNotRegisterUser(t *testing.T) {
	r, dir := testRegistry(t)
	ctx := context.Background()

	// A directory where the collection file belongs makes the store
	// open fail partway through profile construction.
	if err := os.MkdirAll(filepath.Join(dir, "alice", "Sites.db"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Open(ctx, "alice", TypeNormal); err == nil {
		t.Fatal("open succeeded with an unreadable collection file")
	}
	if _, ok := r.Get("alice"); ok {
		t.Error("failed open left the user registered")
	}

	if err := os.Remove(filepath.Join(dir, "alice", "Sites.db")); err != nil {
		t.Fatal(err)
	}
	u, err := r.Open(ctx, "alice", TypeNormal)
	if err != nil {
		t.Fatalf("open after repair: %v", err)
	}
	if _, err := u.Bookmarks.Add(bookmarks.Bookmark{URL: "https://a.com", Title: "A"}); err != nil {
		t.Errorf("Add after repair: %v", err)
	}
}

func TestRegistryClosedAfterCloseAll(t *testing.T) {
	r, _ := testRegistry(t)
	if err := r.CloseAll(); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if _, err := r.Open(context.Background(), "alice", TypeNormal); !errors.Is(err, apperr.ErrClosed) {
		t.Errorf("Open after CloseAll: %v", err)
	}
}
