// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog provides the static library of transformation prompts.
// Prompts are short system-prompt fragments; a transformation run selects
// up to ten of them and concatenates them into a single system prompt.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transformer-toolbox/pkg/types"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// ErrUnknownTransformation is returned when a prompt ID is not in the catalog.
var ErrUnknownTransformation = errors.New("unknown transformation")

// DefaultPromptID is applied when a request selects no prompts.
const DefaultPromptID = "basic_cleanup"

// finalInstruction closes a multi-prompt system prompt so the model treats
// the fragments as one combined edit rather than alternatives.
const finalInstruction = "\nApply ALL of the above transformations to the user's input text."

// Prompt is one catalog entry.
type Prompt struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Prompt      string `json:"prompt" yaml:"prompt"`
}

// Category groups prompts for the selector.
type Category struct {
	Name    string   `json:"name"`
	Prompts []Prompt `json:"prompts"`
}

// Catalog is a read-only set of transformation prompts. No mutation is
// exposed past loading.
type Catalog struct {
	prompts map[string]Prompt
	order   []string
}

// catalogFile is the on-disk/embedded YAML shape.
type catalogFile struct {
	Prompts []Prompt `yaml:"prompts"`
}

// Load parses the embedded default catalog.
func Load() (*Catalog, error) {
	return parse(defaultPromptsYAML)
}

// LoadFile parses a user-supplied catalog file, for installations that
// maintain their own prompt library.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(file.Prompts) == 0 {
		return nil, fmt.Errorf("parsing catalog: no prompts defined")
	}

	c := &Catalog{prompts: make(map[string]Prompt, len(file.Prompts))}
	for _, p := range file.Prompts {
		if p.ID == "" || p.Prompt == "" {
			return nil, fmt.Errorf("parsing catalog: prompt %q missing id or prompt text", p.Name)
		}
		if _, dup := c.prompts[p.ID]; dup {
			return nil, fmt.Errorf("parsing catalog: duplicate prompt id %q", p.ID)
		}
		c.prompts[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Get returns the prompt for id.
func (c *Catalog) Get(id string) (Prompt, error) {
	p, ok := c.prompts[id]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownTransformation, id)
	}
	return p, nil
}

// Len returns the number of prompts in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// All returns every prompt in catalog order.
func (c *Catalog) All() []Prompt {
	out := make([]Prompt, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.prompts[id])
	}
	return out
}

// Filter returns prompts whose id, name, or description contains the search
// term, case-insensitively. An empty term returns the whole catalog.
func (c *Catalog) Filter(term string) []Prompt {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.All()
	}

	var out []Prompt
	for _, id := range c.order {
		p := c.prompts[id]
		if strings.Contains(strings.ToLower(p.ID), term) ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

// Categories groups the catalog by category, preserving first-seen category
// order and catalog order within each group. Prompts without a category land
// in "Other".
func (c *Catalog) Categories() []Category {
	index := make(map[string]int)
	var groups []Category

	for _, id := range c.order {
		p := c.prompts[id]
		name := p.Category
		if name == "" {
			name = "Other"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Category{Name: name})
		}
		groups[i].Prompts = append(groups[i].Prompts, p)
	}
	return groups
}

// SystemPrompt concatenates the selected prompts into the system prompt for
// one transformation request. Selections past the cap are dropped; an empty
// selection falls back to the default cleanup prompt. An ID not in the
// catalog fails the whole build.
func (c *Catalog) SystemPrompt(ids []string) (string, error) {
	if len(ids) == 0 {
		ids = []string{DefaultPromptID}
	}
	if len(ids) > types.MaxPromptSelections {
		ids = ids[:types.MaxPromptSelections]
	}

	fragments := make([]string, 0, len(ids))
	for _, id := range ids {
		p, err := c.Get(id)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, p.Prompt)
	}

	return strings.Join(fragments, "\n\n") + finalInstruction, nil
}
