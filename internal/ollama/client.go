// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ollama is the client for the local Ollama model-serving endpoint.
// A transformation is a single blocking /api/generate call with a fixed
// timeout; there is no retry, streaming, or mid-flight cancellation.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

// DefaultBaseURL is the stock local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// DefaultTimeout bounds a single generation call. Large documents on small
// local hardware are slow, so the bound is deliberately generous.
const DefaultTimeout = 120 * time.Second

const defaultTemperature = 0.7

var (
	// ErrServiceUnreachable is returned when the endpoint cannot be
	// contacted or the call times out.
	ErrServiceUnreachable = errors.New("model service unreachable")

	// ErrModelNotFound is returned when the named model is not available
	// on the server.
	ErrModelNotFound = errors.New("model not found")

	// ErrGenerationFailed is returned for any other server-reported error.
	ErrGenerationFailed = errors.New("generation failed")
)

// Client talks to one Ollama endpoint.
type Client struct {
	baseURL     string
	temperature float64
	http        *http.Client
}

// New builds a Client from cfg, applying defaults for zero values.
func New(cfg types.ModelConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	return &Client{
		baseURL:     baseURL,
		temperature: temperature,
		http:        &http.Client{Timeout: timeout},
	}
}

// generateRequest is the body for POST /api/generate.
type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

// generateResponse is the body returned by POST /api/generate.
type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// tagsResponse is the body returned by GET /api/tags.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate sends one blocking generation request and returns the full
// generated text. systemPrompt conditions the model; text is the user input
// being transformed.
func (c *Client) Generate(ctx context.Context, model, systemPrompt, text string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:       model,
		Prompt:      text,
		System:      systemPrompt,
		Temperature: c.temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrGenerationFailed, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, out.Error)
	}
	return out.Response, nil
}

// ListModels returns the model names available on the endpoint.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrGenerationFailed, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Ping reports whether the endpoint answers at all.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// statusError maps a non-200 response to a sentinel error. Ollama answers
// 404 with an error body when the named model is not pulled.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := serverMessage(body)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrModelNotFound, msg)
	}
	return fmt.Errorf("%w: %s (HTTP %d)", ErrGenerationFailed, msg, resp.StatusCode)
}

// serverMessage extracts the "error" field from an Ollama error body,
// falling back to the raw body.
func serverMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
