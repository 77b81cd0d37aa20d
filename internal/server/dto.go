// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/pdiddy/transformer-toolbox/internal/catalog"
	"github.com/pdiddy/transformer-toolbox/internal/document"
	"github.com/pdiddy/transformer-toolbox/internal/ollama"
	"github.com/pdiddy/transformer-toolbox/internal/session"
	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

// Error kinds on the wire. The page shows these as the session's result
// state; none of them ends the session.
const (
	KindUnsupportedFormat     = "unsupported_format"
	KindExtractionFailed      = "extraction_failed"
	KindUnknownTransformation = "unknown_transformation"
	KindServiceUnreachable    = "service_unreachable"
	KindModelNotFound         = "model_not_found"
	KindGenerationFailed      = "generation_failed"
	KindRequestInFlight       = "request_in_flight"
	KindEmptyInput            = "empty_input"
	KindBadRequest            = "bad_request"
	KindPreferenceSaveFailed  = "preference_save_failed"
)

// ErrorBody is the error half of every API response.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorResponse wraps an ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// errorKindStatus maps a stage error to its wire kind and HTTP status.
func errorKindStatus(err error) (string, int) {
	switch {
	case errors.Is(err, document.ErrUnsupportedFormat):
		return KindUnsupportedFormat, http.StatusUnsupportedMediaType
	case errors.Is(err, document.ErrExtractionFailed):
		return KindExtractionFailed, http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrUnknownTransformation):
		return KindUnknownTransformation, http.StatusUnprocessableEntity
	case errors.Is(err, ollama.ErrModelNotFound):
		return KindModelNotFound, http.StatusNotFound
	case errors.Is(err, ollama.ErrServiceUnreachable):
		return KindServiceUnreachable, http.StatusBadGateway
	case errors.Is(err, ollama.ErrGenerationFailed):
		return KindGenerationFailed, http.StatusBadGateway
	case errors.Is(err, session.ErrRequestInFlight):
		return KindRequestInFlight, http.StatusConflict
	default:
		return KindBadRequest, http.StatusBadRequest
	}
}

// TransformRequest is the body of POST /api/transform.
type TransformRequest struct {
	Text      string   `json:"text"`
	PromptIDs []string `json:"prompt_ids"`
	Model     string   `json:"model"`
}

// TransformResponse is the success body of POST /api/transform.
type TransformResponse struct {
	OutputText        string `json:"output_text"`
	SuggestedFilename string `json:"suggested_filename"`
	Model             string `json:"model"`

	// Warning carries non-fatal problems (preference persistence, history
	// recording); the transformation itself succeeded.
	Warning string `json:"warning,omitempty"`
}

// UploadResponse is the body of POST /api/upload.
type UploadResponse struct {
	Text     string `json:"text"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models    []string `json:"models"`
	Connected bool     `json:"connected"`
}

// PromptsResponse is the body of GET /api/prompts.
type PromptsResponse struct {
	Prompts    []catalog.Prompt   `json:"prompts"`
	Categories []catalog.Category `json:"categories,omitempty"`
}

// PreferencesResponse is the body of GET/PUT /api/preferences.
type PreferencesResponse struct {
	Preference types.Preference `json:"preference"`
	Warning    string           `json:"warning,omitempty"`
}

// SaveRequest is the body of POST /api/save.
type SaveRequest struct {
	Filename string `json:"filename"`
	Dir      string `json:"dir"`
}

// SaveResponse is the body of POST /api/save.
type SaveResponse struct {
	Path    string `json:"path"`
	Warning string `json:"warning,omitempty"`
}

// ClearRequest is the body of POST /api/clear.
type ClearRequest struct {
	Target string `json:"target"`
}

// HistoryEntry is one record in GET /api/history.
type HistoryEntry struct {
	ID         int64    `json:"id"`
	CreatedAt  string   `json:"created_at"`
	Model      string   `json:"model"`
	PromptIDs  []string `json:"prompt_ids"`
	InputText  string   `json:"input_text"`
	OutputText string   `json:"output_text"`
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Records []HistoryEntry `json:"records"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	State     string `json:"state"`
}

func toHistoryEntry(rec types.TransformationRecord) HistoryEntry {
	return HistoryEntry{
		ID:         rec.ID,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		Model:      rec.Model,
		PromptIDs:  rec.PromptIDs,
		InputText:  rec.InputText,
		OutputText: rec.OutputText,
	}
}
