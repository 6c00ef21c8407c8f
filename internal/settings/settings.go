// Package settings holds per-profile preferences: identity, appearance,
// startup pages, and the privacy switches consulted by the data services.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config is the full per-profile settings document.
type Config struct {
	Name            string          `yaml:"name"`
	Avatar          string          `yaml:"avatar"`
	Appearance      Appearance      `yaml:"appearance"`
	Pages           Pages           `yaml:"pages"`
	PrivacySecurity PrivacySecurity `yaml:"privacy_security"`
}

// Appearance holds theme preferences.
type Appearance struct {
	Theme string `yaml:"theme"`
}

// Pages holds startup and navigation URLs.
type Pages struct {
	StartupURLs []string `yaml:"startup_urls"`
	HomeURL     string   `yaml:"home_url"`
	NewTabURL   string   `yaml:"new_tab_url"`
}

// PrivacySecurity holds the privacy switches.
type PrivacySecurity struct {
	SaveHistory bool `yaml:"save_history"`
}

// DefaultConfig returns the settings a fresh profile starts with.
func DefaultConfig() Config {
	return Config{
		Name: "New user",
		Appearance: Appearance{
			Theme: "system",
		},
		Pages: Pages{
			HomeURL:   "lumen://home",
			NewTabURL: "lumen://home",
		},
		PrivacySecurity: PrivacySecurity{
			SaveHistory: true,
		},
	}
}

// Service owns one profile's settings. File-backed profiles persist every
// change and can hot-reload external edits; incognito profiles hold an
// in-memory copy that is never written anywhere.
type Service struct {
	mu   sync.RWMutex
	path string // empty for in-memory profiles
	cfg  Config
}

// Open loads the settings file at path, writing defaults first if the
// file does not exist yet.
func Open(path string) (*Service, error) {
	s := &Service{path: path, cfg: DefaultConfig()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.write(s.cfg); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.cfg); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return s, nil
}

// InMemory creates a settings service with defaults and no backing file.
func InMemory() *Service {
	return &Service{cfg: DefaultConfig()}
}

// Config returns a snapshot of the current settings.
func (s *Service) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SaveHistory reports whether the profile records browsing history.
func (s *Service) SaveHistory() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.PrivacySecurity.SaveHistory
}

// Update mutates the settings through mut and persists the result for
// file-backed profiles.
func (s *Service) Update(mut func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	mut(&next)
	if s.path != "" {
		if err := s.write(next); err != nil {
			return err
		}
	}
	s.cfg = next
	return nil
}

// write persists cfg atomically: tmp file, fsync, rename.
func (s *Service) write(cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lumen-settings-*")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("settings: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("settings: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("settings: rename: %w", err)
	}
	success = true
	return nil
}

// reload re-reads the backing file, keeping current settings on failure.
func (s *Service) reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("settings: reload: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("settings: reload parse: %w", err)
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}
