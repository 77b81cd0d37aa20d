// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the state of one interactive editing session: the
// input/output pair, the current selection, and the single pending-request
// slot. A session is Idle or AwaitingModel; while AwaitingModel a second
// transform is rejected rather than queued.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"
)

// State is the session's request-lifecycle state.
type State string

const (
	// StateIdle means no request is pending.
	StateIdle State = "idle"

	// StateAwaitingModel means a model request is in flight.
	StateAwaitingModel State = "awaiting_model"
)

// ErrRequestInFlight is returned when a transform is triggered while one is
// already awaiting the model.
var ErrRequestInFlight = errors.New("a transformation is already in flight")

// DefaultFilename is suggested before any output exists.
const DefaultFilename = "transformed_text.txt"

// Session is the state of one user's continuous interaction. All methods
// are safe for the handler goroutines that share the session.
type Session struct {
	mu sync.Mutex

	state             State
	input             string
	output            string
	model             string
	promptIDs         []string
	suggestedFilename string
}

// New returns an idle session.
func New() *Session {
	return &Session{
		state:             StateIdle,
		suggestedFilename: DefaultFilename,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin claims the pending-request slot. It fails when a request is already
// in flight; the caller must not contact the model in that case.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAwaitingModel {
		return ErrRequestInFlight
	}
	s.state = StateAwaitingModel
	return nil
}

// Complete stores the generated output, refreshes the suggested filename,
// and returns the session to Idle.
func (s *Session) Complete(output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = output
	s.suggestedFilename = SuggestFilename(output)
	s.state = StateIdle
}

// Fail releases the pending-request slot without touching the output, so a
// failed run leaves the previous result on screen.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
}

// SetInput replaces the input text.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

// Input returns the input text.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetOutput replaces the output text (the output pane is editable).
func (s *Session) SetOutput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = text
}

// Output returns the output text.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// SetSelection records the chosen model and prompt IDs.
func (s *Session) SetSelection(model string, promptIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	s.promptIDs = append([]string(nil), promptIDs...)
}

// Selection returns the chosen model and prompt IDs.
func (s *Session) Selection() (string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model, append([]string(nil), s.promptIDs...)
}

// SuggestedFilename returns the filename proposed for saving the output.
func (s *Session) SuggestedFilename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestedFilename
}

// ClearInput empties the input pane.
func (s *Session) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = ""
}

// ClearOutput empties the output pane.
func (s *Session) ClearOutput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = ""
}

// ClearAll resets both panes and the suggested filename. The selection and
// lifecycle state are untouched.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = ""
	s.output = ""
	s.suggestedFilename = DefaultFilename
}

// SuggestFilename derives a filename from the first five words of the first
// line of text, sanitized to alphanumerics and underscores, with a
// timestamp suffix. Filesystem limits cap the base at 50 characters.
func SuggestFilename(text string) string {
	firstLine, _, _ := strings.Cut(text, "\n")

	words := strings.Fields(strings.TrimSpace(firstLine))
	if len(words) > 5 {
		words = words[:5]
	}

	base := sanitize(strings.Join(words, "_"))
	if base == "" || strings.Trim(base, "_") == "" {
		base = "transformed_text"
	}
	if r := []rune(base); len(r) > 50 {
		base = string(r[:50])
	}

	timestamp := time.Now().Format("20060102_150405")
	return base + "_" + timestamp + ".txt"
}

func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
