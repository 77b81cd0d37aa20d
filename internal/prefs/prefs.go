// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prefs persists user preferences as a JSON file in the user's
// config directory. Loading never fails: a missing or corrupt file yields
// defaults. Saving can fail (disk full, permissions) and the caller surfaces
// that as a warning, not an application error.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

// AppDirName is the per-user config directory for the toolbox.
const AppDirName = "transformer-toolbox"

const prefsFile = "preferences.json"

// Store reads and writes one preference file.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. An empty dir falls back to the
// platform user config directory.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns the platform config directory for the toolbox, or a
// dot-directory under the working directory when the platform offers none.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "." + AppDirName
	}
	return filepath.Join(base, AppDirName)
}

// Path returns the preference file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, prefsFile)
}

// Load returns the persisted preferences, or defaults when the file is
// missing or unreadable. A corrupt file is reset to defaults so the next
// session starts clean.
func (s *Store) Load() types.Preference {
	def := types.DefaultPreference(DesktopPath())

	data, err := os.ReadFile(s.Path())
	if err != nil {
		return def
	}

	var p types.Preference
	if err := json.Unmarshal(data, &p); err != nil {
		// Best effort; if the reset fails too the next Load still defaults.
		_ = s.Save(def)
		return def
	}

	if p.Model == "" {
		p.Model = def.Model
	}
	if p.DownloadPath == "" {
		p.DownloadPath = def.DownloadPath
	}
	if len(p.LastTransformations) == 0 {
		p.LastTransformations = def.LastTransformations
	}
	return p
}

// Save writes the preferences, creating the config directory if needed.
func (s *Store) Save(p types.Preference) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Update loads, applies mutate, and saves.
func (s *Store) Update(mutate func(*types.Preference)) error {
	p := s.Load()
	mutate(&p)
	return s.Save(p)
}

// DesktopPath returns the user's desktop directory, the default save
// location for transformed output.
func DesktopPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Desktop")
}
