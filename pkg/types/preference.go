// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Preference is the per-user state persisted across sessions. It is loaded
// at startup and rewritten whenever a selection changes; a missing or
// unreadable file yields DefaultPreference.
type Preference struct {
	// Model is the last-selected model name.
	Model string `json:"model"`

	// DownloadPath is the directory saved outputs are written to.
	DownloadPath string `json:"download_path"`

	// LastTransformations are the prompt IDs selected on the last run.
	LastTransformations []string `json:"last_used_transformations"`
}

// DefaultPreference returns the preferences used when nothing has been
// persisted yet. desktop is the user's desktop directory (may be "").
func DefaultPreference(desktop string) Preference {
	return Preference{
		Model:               "llama3",
		DownloadPath:        desktop,
		LastTransformations: []string{"basic_cleanup"},
	}
}
