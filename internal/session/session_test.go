package session

import (
	"errors"
	"net/url"
	"os"
	"testing"

	"github.com/lumenbrowser/lumen/internal/apperr"
)

func TestNormalSessionHasExtensions(t *testing.T) {
	s, err := NewNormal("u1", t.TempDir(), DefaultPolicy("", nil))
	if err != nil {
		t.Fatalf("NewNormal: %v", err)
	}
	defer s.Close()

	host, err := s.Extensions()
	if err != nil {
		t.Fatalf("Extensions: %v", err)
	}
	if host == nil {
		t.Fatal("nil extension host")
	}
	if !s.Partition().Persistent() {
		t.Error("normal partition should be persistent")
	}
	if s.Partition().ID() != "u1" {
		t.Errorf("partition id = %q", s.Partition().ID())
	}
}

func TestIncognitoSessionRefusesExtensions(t *testing.T) {
	s, err := NewIncognito("u1", DefaultPolicy("", nil))
	if err != nil {
		t.Fatalf("NewIncognito: %v", err)
	}
	defer s.Close()

	if _, err := s.Extensions(); !errors.Is(err, apperr.ErrUnsupported) {
		t.Errorf("Extensions err = %v, want ErrUnsupported", err)
	}
	if s.Partition().Persistent() {
		t.Error("incognito partition should be ephemeral")
	}
}

func TestIncognitoCloseDiscardsStorage(t *testing.T) {
	s, err := NewIncognito("u1", DefaultPolicy("", nil))
	if err != nil {
		t.Fatalf("NewIncognito: %v", err)
	}
	dir := s.Partition().Dir()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("partition dir missing before close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("partition storage still present after close")
	}
}

func TestPolicyOrderAndFilters(t *testing.T) {
	pol := DefaultPolicy("TestAgent/2.0", []string{"ads.example.com"})
	s, err := NewNormal("u1", t.TempDir(), pol)
	if err != nil {
		t.Fatalf("NewNormal: %v", err)
	}
	defer s.Close()

	p := s.Partition()
	if p.UserAgent() != "TestAgent/2.0" {
		t.Errorf("user agent = %q", p.UserAgent())
	}

	blocked, _ := url.Parse("https://ads.example.com/banner.js")
	allowed, _ := url.Parse("https://example.com/")
	if p.AllowRequest(blocked) {
		t.Error("blocked host allowed")
	}
	if !p.AllowRequest(allowed) {
		t.Error("ordinary host rejected")
	}

	if _, ok := p.Protocol(Scheme); !ok {
		t.Errorf("custom protocol %q not registered", Scheme)
	}
}
