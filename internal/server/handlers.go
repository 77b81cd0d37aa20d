// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/transformer-toolbox/internal/document"
	"github.com/pdiddy/transformer-toolbox/internal/session"
	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

func (s *Server) fail(c *gin.Context, err error) {
	kind, status := errorKindStatus(err)
	s.logger.Warn("request failed", "kind", kind, "error", err)
	c.JSON(status, ErrorResponse{Error: ErrorBody{Kind: kind, Message: err.Error()}})
}

func (s *Server) getModels(c *gin.Context) {
	models, err := s.generator.ListModels(c.Request.Context())
	if err != nil {
		s.logger.Warn("model discovery failed", "error", err)
		c.JSON(http.StatusOK, ModelsResponse{
			Models:    []string{s.defaultModel()},
			Connected: false,
		})
		return
	}
	if len(models) == 0 {
		models = []string{s.defaultModel()}
	}
	c.JSON(http.StatusOK, ModelsResponse{Models: models, Connected: true})
}

func (s *Server) defaultModel() string {
	if s.modelCfg.DefaultModel != "" {
		return s.modelCfg.DefaultModel
	}
	return "llama3"
}

func (s *Server) getPrompts(c *gin.Context) {
	term := c.Query("q")

	resp := PromptsResponse{Prompts: s.catalog.Filter(term)}
	if strings.TrimSpace(term) == "" {
		resp.Categories = s.catalog.Categories()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) postUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.fail(c, err)
		return
	}
	if max := s.cfg.MaxUploadBytes; max > 0 && fileHeader.Size > max {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorBody{
			Kind:    KindBadRequest,
			Message: "file too large",
		}})
		return
	}

	format, err := declaredFormat(c.PostForm("format"), fileHeader.Filename)
	if err != nil {
		s.fail(c, err)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}

	text, err := document.Extract(data, format)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.session.SetInput(text)
	c.JSON(http.StatusOK, UploadResponse{
		Text:     text,
		Format:   string(format),
		Filename: fileHeader.Filename,
	})
}

// declaredFormat prefers the client's format tag and falls back to the
// filename extension.
func declaredFormat(tag, filename string) (document.Format, error) {
	if tag != "" {
		return document.ParseFormat(tag)
	}
	return document.Detect(filename)
}

func (s *Server) postTransform(c *gin.Context) {
	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, err)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Kind:    KindEmptyInput,
			Message: "enter some text to transform",
		}})
		return
	}

	// Catalog lookup and prompt assembly happen before the pending-request
	// slot is claimed: a bad selection must not block the session.
	systemPrompt, err := s.catalog.SystemPrompt(req.PromptIDs)
	if err != nil {
		s.fail(c, err)
		return
	}

	model := req.Model
	if model == "" {
		model = s.prefs.Load().Model
	}
	if model == "" {
		model = s.defaultModel()
	}

	if err := s.session.Begin(); err != nil {
		s.fail(c, err)
		return
	}

	s.session.SetInput(req.Text)
	s.session.SetSelection(model, req.PromptIDs)

	// Deliberately not the request context: once a request is sent the
	// session waits for completion or timeout; a closed browser tab does
	// not cancel it. The client's own timeout bounds the call.
	output, err := s.generator.Generate(context.Background(), model, systemPrompt, req.Text)
	if err != nil {
		s.session.Fail()
		s.fail(c, err)
		return
	}
	s.session.Complete(output)

	var warnings []string
	if s.history != nil {
		if _, err := s.history.Record(types.TransformationRecord{
			Model:      model,
			PromptIDs:  req.PromptIDs,
			InputText:  req.Text,
			OutputText: output,
		}); err != nil {
			s.logger.Warn("recording history failed", "error", err)
			warnings = append(warnings, "could not record history: "+err.Error())
		}
	}

	prefsSnapshot := s.prefs.Load()
	prefsSnapshot.Model = model
	if len(req.PromptIDs) > 0 {
		prefsSnapshot.LastTransformations = req.PromptIDs
	}
	if err := s.prefs.Save(prefsSnapshot); err != nil {
		s.logger.Warn("saving preferences failed", "error", err)
		warnings = append(warnings, "could not save preferences: "+err.Error())
	}

	c.JSON(http.StatusOK, TransformResponse{
		OutputText:        output,
		SuggestedFilename: s.session.SuggestedFilename(),
		Model:             model,
		Warning:           strings.Join(warnings, "; "),
	})
}

func (s *Server) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, PreferencesResponse{Preference: s.prefs.Load()})
}

func (s *Server) putPreferences(c *gin.Context) {
	var p types.Preference
	if err := c.ShouldBindJSON(&p); err != nil {
		s.fail(c, err)
		return
	}

	resp := PreferencesResponse{Preference: p}
	if err := s.prefs.Save(p); err != nil {
		// Non-fatal: the session continues on in-memory preferences.
		s.logger.Warn("saving preferences failed", "error", err)
		resp.Warning = KindPreferenceSaveFailed + ": " + err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) postSave(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, err)
		return
	}

	output := s.session.Output()
	if output == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Kind:    KindBadRequest,
			Message: "no transformed text to save",
		}})
		return
	}

	dir := req.Dir
	if dir == "" {
		dir = s.prefs.Load().DownloadPath
	}
	if dir == "" {
		dir = "."
	}

	filename := filepath.Base(strings.TrimSpace(req.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = s.session.SuggestedFilename()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.fail(c, err)
		return
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		s.fail(c, err)
		return
	}

	resp := SaveResponse{Path: path}
	if req.Dir != "" {
		if err := s.savePreferredDir(req.Dir); err != nil {
			s.logger.Warn("saving preferences failed", "error", err)
			resp.Warning = KindPreferenceSaveFailed + ": " + err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) savePreferredDir(dir string) error {
	p := s.prefs.Load()
	p.DownloadPath = dir
	return s.prefs.Save(p)
}

func (s *Server) postClear(c *gin.Context) {
	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, err)
		return
	}

	switch req.Target {
	case "input":
		s.session.ClearInput()
	case "output":
		s.session.ClearOutput()
	case "all", "":
		s.session.ClearAll()
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Kind:    KindBadRequest,
			Message: "target must be input, output, or all",
		}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": string(session.StateIdle)})
}

func (s *Server) getHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
				Kind:    KindBadRequest,
				Message: "limit must be a positive integer",
			}})
			return
		}
		limit = n
	}

	resp := HistoryResponse{Records: []HistoryEntry{}}
	if s.history != nil {
		records, err := s.history.Recent(limit)
		if err != nil {
			s.fail(c, err)
			return
		}
		for _, rec := range records {
			resp.Records = append(resp.Records, toHistoryEntry(rec))
		}
	}
	c.JSON(http.StatusOK, resp)
}
