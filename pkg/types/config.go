// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds shared data structures used across the toolbox stages.
package types

import "time"

// ServerConfig holds settings for the interactive web session.
type ServerConfig struct {
	// Host is the listen address (default "127.0.0.1"; the toolbox is a
	// single-user local tool and does not bind publicly by default).
	Host string `json:"host" yaml:"host"`

	// Port is the listen port (default 8741).
	Port int `json:"port" yaml:"port"`

	// AllowedOrigins are additional CORS origins beyond the server's own.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`

	// MaxUploadBytes caps uploaded document size (default 16 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// ModelConfig holds settings for the local model-serving endpoint.
type ModelConfig struct {
	// BaseURL is the Ollama endpoint (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout bounds a single generation call (default 120s). On expiry the
	// call surfaces as the endpoint being unreachable.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Temperature is passed through to the endpoint (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// DefaultModel is used when no model was discovered or selected
	// (default "llama3").
	DefaultModel string `json:"default_model" yaml:"default_model"`
}

// HistoryConfig holds settings for the transformation history store.
type HistoryConfig struct {
	// DataDir is the directory holding the history database
	// (default: the user config dir for the toolbox).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxEntries caps retained history rows; older rows are pruned
	// (default 200). Zero or negative disables pruning.
	MaxEntries int `json:"max_entries" yaml:"max_entries"`
}

// Config groups all toolbox configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Model   ModelConfig   `json:"model" yaml:"model"`
	History HistoryConfig `json:"history" yaml:"history"`
}
