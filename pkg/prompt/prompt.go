// Package prompt is the prompt library for report generation. Templates
// are registered at startup and looked up by section ID, so wording can be
// tuned in one place without touching the pipeline.
package prompt

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Template pairs a system prompt with the output instructions for one
// report section.
type Template struct {
	ID           string
	Name         string
	SystemPrompt string
	Instructions string
}

// Registry holds the registered templates.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

var globalRegistry *Registry
var once sync.Once

// Get returns the global registry, populated with the builtin section
// templates on first use.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{templates: make(map[string]*Template)}
		registerBuiltins(globalRegistry)
	})
	return globalRegistry
}

// Register adds a template, replacing any previous one with the same ID.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("template ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
	return nil
}

// Lookup retrieves a template by ID.
func (r *Registry) Lookup(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.templates[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("template not found: %s", id)
}

// List returns all registered template IDs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	return ids
}

// BuildUserPrompt renders the user message: the symbol, the derived facts
// as JSON, and the section's output instructions.
func (t *Template) BuildUserPrompt(symbol string, facts any) (string, error) {
	payload, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal facts: %w", err)
	}
	return fmt.Sprintf("Company ticker: %s\n\nDerived financial facts:\n%s\n\n%s",
		symbol, payload, t.Instructions), nil
}
