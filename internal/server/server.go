// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server is the interactive surface of the toolbox: a two-pane web
// page plus the JSON API behind it. One server instance drives one session.
package server

import (
	_ "embed"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pdiddy/transformer-toolbox/internal/catalog"
	"github.com/pdiddy/transformer-toolbox/internal/session"
	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

//go:embed web/index.html
var indexHTML []byte

// Generator is the model-serving boundary. The production implementation is
// the Ollama client; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, model, systemPrompt, text string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) bool
}

// Recorder persists completed transformations.
type Recorder interface {
	Record(rec types.TransformationRecord) (int64, error)
	Recent(limit int) ([]types.TransformationRecord, error)
}

// PreferenceStore loads and saves user preferences.
type PreferenceStore interface {
	Load() types.Preference
	Save(types.Preference) error
}

// Server wires the stages behind the HTTP surface.
type Server struct {
	cfg       types.ServerConfig
	modelCfg  types.ModelConfig
	catalog   *catalog.Catalog
	generator Generator
	prefs     PreferenceStore
	history   Recorder // may be nil; history is then disabled
	session   *session.Session
	logger    *slog.Logger
}

// Options carries the dependencies for New.
type Options struct {
	Config    types.ServerConfig
	ModelCfg  types.ModelConfig
	Catalog   *catalog.Catalog
	Generator Generator
	Prefs     PreferenceStore
	History   Recorder
	Logger    *slog.Logger
}

// New builds the server and its gin engine.
func New(opts Options) (*Server, *gin.Engine) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:       opts.Config,
		modelCfg:  opts.ModelCfg,
		catalog:   opts.Catalog,
		generator: opts.Generator,
		prefs:     opts.Prefs,
		history:   opts.History,
		session:   session.New(),
		logger:    logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	allowedOrigins := []string{
		fmt.Sprintf("http://%s:%d", host(opts.Config), opts.Config.Port),
		fmt.Sprintf("http://localhost:%d", opts.Config.Port),
	}
	allowedOrigins = append(allowedOrigins, opts.Config.AllowedOrigins...)
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	if opts.Config.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.Config.MaxUploadBytes
	}

	r.GET("/", s.getIndex)
	r.GET("/healthz", s.getHealth)
	r.GET("/api/models", s.getModels)
	r.GET("/api/prompts", s.getPrompts)
	r.POST("/api/upload", s.postUpload)
	r.POST("/api/transform", s.postTransform)
	r.GET("/api/preferences", s.getPreferences)
	r.PUT("/api/preferences", s.putPreferences)
	r.POST("/api/save", s.postSave)
	r.POST("/api/clear", s.postClear)
	r.GET("/api/history", s.getHistory)

	return s, r
}

// Addr returns the listen address from config, with defaults applied.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", host(s.cfg), port(s.cfg))
}

func host(cfg types.ServerConfig) string {
	if cfg.Host == "" {
		return "127.0.0.1"
	}
	return cfg.Host
}

func port(cfg types.ServerConfig) int {
	if cfg.Port == 0 {
		return 8741
	}
	return cfg.Port
}

// logRequests logs one line per request with outcome and latency.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Connected: s.generator.Ping(c.Request.Context()),
		State:     string(s.session.State()),
	})
}
