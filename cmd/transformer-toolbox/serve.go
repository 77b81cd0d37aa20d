// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/transformer-toolbox/internal/history"
	"github.com/pdiddy/transformer-toolbox/internal/ollama"
	"github.com/pdiddy/transformer-toolbox/internal/prefs"
	"github.com/pdiddy/transformer-toolbox/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive web session",
	Long: `Serve starts the toolbox web interface: a two-pane page with input,
a transformation selector, and editable output, plus save/download.
The session talks to a locally running Ollama server; start Ollama first.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen address (default 127.0.0.1)")
	serveCmd.Flags().Int("port", 0, "listen port (default 8741)")
	serveCmd.Flags().Bool("no-history", false, "disable the transformation history store")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	var recorder server.Recorder
	if !noHistory {
		store, err := history.NewStore(historyConfig())
		if err != nil {
			// History is a convenience; the session works without it.
			logger.Warn("history store unavailable, continuing without it", "error", err)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	client := ollama.New(modelConfig())

	gin.SetMode(gin.ReleaseMode)
	srv, router := server.New(server.Options{
		Config:    serverConfig(host, port),
		ModelCfg:  modelConfig(),
		Catalog:   cat,
		Generator: client,
		Prefs:     prefs.NewStore(""),
		History:   recorder,
		Logger:    logger,
	})

	addr := srv.Addr()
	logger.Info("transformer-toolbox listening", "addr", addr, "url", fmt.Sprintf("http://%s/", addr))
	return router.Run(addr)
}
