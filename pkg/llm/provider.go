// Package llm wraps the model providers behind a single interface and adds
// the schema-constrained generation loop the report sections rely on.
package llm

import "context"

// Provider generates one JSON document from a system and user prompt.
// Implementations request JSON output from the model but make no promise
// the result parses; the generator owns repair and validation.
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
