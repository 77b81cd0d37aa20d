// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	require.NoError(t, err)
	return c
}

func TestLoadEmbeddedCatalog(t *testing.T) {
	c := mustLoad(t)
	require.Greater(t, c.Len(), 10)

	p, err := c.Get(DefaultPromptID)
	require.NoError(t, err)
	assert.Equal(t, "Basic Cleanup", p.Name)
	assert.NotEmpty(t, p.Prompt)
}

func TestGetUnknownTransformation(t *testing.T) {
	c := mustLoad(t)

	for _, id := range []string{"", "nope", "BASIC_CLEANUP", "summarize "} {
		_, err := c.Get(id)
		assert.ErrorIs(t, err, ErrUnknownTransformation, "id %q", id)
	}
}

func TestAllPromptsWellFormed(t *testing.T) {
	for _, p := range mustLoad(t).All() {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name, "prompt %s", p.ID)
		assert.NotEmpty(t, p.Prompt, "prompt %s", p.ID)
		assert.NotEmpty(t, p.Category, "prompt %s", p.ID)
	}
}

func TestFilter(t *testing.T) {
	c := mustLoad(t)

	tests := []struct {
		term     string
		wantID   string
		wantNone bool
	}{
		{term: "summar", wantID: "summarize"},
		{term: "SHAKESPEARE", wantID: "shakespearean"},
		{term: "meeting", wantID: "meeting_minutes"},
		{term: "zzz-no-such-prompt", wantNone: true},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := c.Filter(tt.term)
			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.NotEmpty(t, got)
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.ID
			}
			assert.Contains(t, ids, tt.wantID)
		})
	}
}

func TestFilterEmptyTermReturnsAll(t *testing.T) {
	c := mustLoad(t)
	assert.Len(t, c.Filter("  "), c.Len())
}

func TestCategoriesCoverCatalog(t *testing.T) {
	c := mustLoad(t)

	total := 0
	seen := map[string]bool{}
	for _, cat := range c.Categories() {
		assert.NotEmpty(t, cat.Name)
		assert.False(t, seen[cat.Name], "duplicate category %s", cat.Name)
		seen[cat.Name] = true
		total += len(cat.Prompts)
	}
	assert.Equal(t, c.Len(), total)
}

func TestSystemPromptConcatenation(t *testing.T) {
	c := mustLoad(t)

	got, err := c.SystemPrompt([]string{"summarize", "formal_tone"})
	require.NoError(t, err)

	sum, _ := c.Get("summarize")
	formal, _ := c.Get("formal_tone")
	assert.Contains(t, got, sum.Prompt)
	assert.Contains(t, got, formal.Prompt)
	assert.Less(t, strings.Index(got, sum.Prompt), strings.Index(got, formal.Prompt))
	assert.True(t, strings.HasSuffix(got, finalInstruction))
}

func TestSystemPromptDefaultsWhenEmpty(t *testing.T) {
	c := mustLoad(t)

	got, err := c.SystemPrompt(nil)
	require.NoError(t, err)

	def, _ := c.Get(DefaultPromptID)
	assert.Contains(t, got, def.Prompt)
}

func TestSystemPromptCapsSelections(t *testing.T) {
	c := mustLoad(t)

	// Ten valid IDs followed by a bogus one: the bogus entry is past the
	// cap and must never be looked up.
	var ids []string
	for _, p := range c.All() {
		ids = append(ids, p.ID)
		if len(ids) == 10 {
			break
		}
	}
	require.Len(t, ids, 10)

	_, err := c.SystemPrompt(append(ids, "does-not-exist"))
	assert.NoError(t, err)
}

func TestSystemPromptUnknownID(t *testing.T) {
	c := mustLoad(t)
	_, err := c.SystemPrompt([]string{"summarize", "bogus"})
	assert.True(t, errors.Is(err, ErrUnknownTransformation))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := `prompts:
  - id: shout
    name: Shout
    description: Uppercases everything
    category: Style
    prompt: Rewrite the text in all capital letters.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	p, err := c.Get("shout")
	require.NoError(t, err)
	assert.Equal(t, "Shout", p.Name)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("prompts: [{id: x}]"), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("prompts: []"), 0o644))
	_, err = LoadFile(empty)
	assert.Error(t, err)

	dup := filepath.Join(dir, "dup.yaml")
	dupContent := `prompts:
  - {id: a, name: A, prompt: p1}
  - {id: a, name: A2, prompt: p2}
`
	require.NoError(t, os.WriteFile(dup, []byte(dupContent), 0o644))
	_, err = LoadFile(dup)
	assert.Error(t, err)
}
