// Package store implements the engine's external collaborators: the
// versioned settings record, the append-only trade log, and the gatekeeper
// feature/outcome dataset.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"oceanview-go/internal/config"
)

// SettingsRecord is the single versioned record holding the live strategy
// parameters. Promotion bumps the version and swaps the whole record.
type SettingsRecord struct {
	Version   int           `yaml:"version"`
	UpdatedAt time.Time     `yaml:"updated_at"`
	Params    config.Params `yaml:"params"`
}

// SettingsStore persists the record as a YAML file. Writes go through a
// temp-file rename so a crash never leaves a half-written record.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore points a store at the given path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load reads the current record. A missing file yields version 0 with
// default parameters rather than an error.
func (s *SettingsStore) Load() (SettingsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return SettingsRecord{Version: 0, Params: config.DefaultParams()}, nil
	}
	if err != nil {
		return SettingsRecord{}, fmt.Errorf("read settings: %w", err)
	}
	var rec SettingsRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return SettingsRecord{}, fmt.Errorf("decode settings: %w", err)
	}
	return rec, nil
}

// Promote writes a new record with the next version number.
func (s *SettingsStore) Promote(p config.Params) (SettingsRecord, error) {
	prev, err := s.Load()
	if err != nil {
		return SettingsRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := SettingsRecord{Version: prev.Version + 1, UpdatedAt: time.Now().UTC(), Params: p}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return SettingsRecord{}, fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return SettingsRecord{}, fmt.Errorf("create settings dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return SettingsRecord{}, fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return SettingsRecord{}, fmt.Errorf("swap settings: %w", err)
	}
	return rec, nil
}
