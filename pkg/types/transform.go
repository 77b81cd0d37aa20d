// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TransformationRequest is one user-triggered transformation. It is built
// per action, immutable, and discarded once the result is rendered.
type TransformationRequest struct {
	// SourceText is the text to transform.
	SourceText string `json:"source_text"`

	// PromptIDs are catalog prompt identifiers, applied in order. At most
	// MaxPromptSelections are honored.
	PromptIDs []string `json:"prompt_ids"`

	// Model is the model name sent to the serving endpoint.
	Model string `json:"model"`
}

// MaxPromptSelections is the cap on prompts concatenated into one request.
const MaxPromptSelections = 10

// TransformationRecord is one completed transformation as stored in history.
type TransformationRecord struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Model      string    `json:"model"`
	PromptIDs  []string  `json:"prompt_ids"`
	InputText  string    `json:"input_text"`
	OutputText string    `json:"output_text"`
}
