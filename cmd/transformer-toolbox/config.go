// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/transformer-toolbox/internal/catalog"
	"github.com/pdiddy/transformer-toolbox/internal/prefs"
	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

// modelConfig reads the model endpoint settings. Zero values are filled
// with defaults by the Ollama client.
func modelConfig() types.ModelConfig {
	return types.ModelConfig{
		BaseURL:      viper.GetString("model.base_url"),
		Timeout:      viper.GetDuration("model.timeout"),
		Temperature:  viper.GetFloat64("model.temperature"),
		DefaultModel: viper.GetString("model.default_model"),
	}
}

// serverConfig reads the web session settings, letting flags override the
// config file.
func serverConfig(host string, port int) types.ServerConfig {
	cfg := types.ServerConfig{
		Host:           viper.GetString("server.host"),
		Port:           viper.GetInt("server.port"),
		AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		MaxUploadBytes: viper.GetInt64("server.max_upload_bytes"),
	}
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 16 << 20
	}
	return cfg
}

// historyConfig reads the history store settings, defaulting the data
// directory to the toolbox config directory.
func historyConfig() types.HistoryConfig {
	cfg := types.HistoryConfig{
		DataDir:    viper.GetString("history.data_dir"),
		MaxEntries: viper.GetInt("history.max_entries"),
	}
	if cfg.DataDir == "" {
		cfg.DataDir = prefs.DefaultDir()
	}
	return cfg
}

// loadCatalog loads the prompt library: a user-supplied file when
// configured, the embedded defaults otherwise.
func loadCatalog() (*catalog.Catalog, error) {
	if path := viper.GetString("prompts_file"); path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Load()
}
