package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lumenbrowser/lumen/internal/apperr"
	"github.com/lumenbrowser/lumen/internal/extensions"
)

// Session is one profile's browsing context. The two variants differ in
// partition durability and in whether the extension host capability is
// available: Extensions on an incognito session fails with
// apperr.ErrUnsupported. That is a capability check, not a transient
// failure.
type Session interface {
	Partition() *Partition
	Extensions() (*extensions.Host, error)
	Close() error
}

// Normal is the full-capability session: persistent partition plus
// extension host.
type Normal struct {
	part *Partition
	ext  *extensions.Host
}

// NewNormal builds a normal session for userID with its partition and
// extensions rooted under dataDir.
func NewNormal(userID, dataDir string, pol Policy) (*Normal, error) {
	part, err := newPartition(userID, filepath.Join(dataDir, "Partitions", userID), true)
	if err != nil {
		return nil, err
	}
	pol.apply(part, userID)

	ext, err := extensions.NewHost(filepath.Join(dataDir, userID, "Extensions"))
	if err != nil {
		return nil, err
	}
	return &Normal{part: part, ext: ext}, nil
}

// Partition returns the session's persistent partition.
func (s *Normal) Partition() *Partition { return s.part }

// Extensions returns the extension host.
func (s *Normal) Extensions() (*extensions.Host, error) { return s.ext, nil }

// Close releases the partition. Its storage stays on disk.
func (s *Normal) Close() error { return nil }

// Incognito is the ephemeral session: temp-backed partition, no
// extension capability, nothing persisted.
type Incognito struct {
	part   *Partition
	tmpDir string
}

// NewIncognito builds an incognito session for userID. The partition is
// keyed by the user id but lives in a temp directory that Close removes.
func NewIncognito(userID string, pol Policy) (*Incognito, error) {
	tmpDir, err := os.MkdirTemp("", "lumen-incognito-")
	if err != nil {
		return nil, fmt.Errorf("session: temp partition: %w", err)
	}
	part, err := newPartition(userID, tmpDir, false)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	pol.apply(part, userID)
	return &Incognito{part: part, tmpDir: tmpDir}, nil
}

// Partition returns the session's ephemeral partition.
func (s *Incognito) Partition() *Partition { return s.part }

// Extensions always fails: incognito profiles cannot use extensions.
func (s *Incognito) Extensions() (*extensions.Host, error) {
	return nil, fmt.Errorf("session: extensions: %w", apperr.ErrUnsupported)
}

// Close discards the partition storage.
func (s *Incognito) Close() error {
	if err := os.RemoveAll(s.tmpDir); err != nil {
		return fmt.Errorf("session: discard partition: %w", err)
	}
	return nil
}
