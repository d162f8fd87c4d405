package llm

import (
	"context"
	"time"

	"github.com/phuslu/log"
)

// Validatable is implemented by every section payload: Validate checks the
// structural contract (required fields, row counts, enum values) after the
// raw output has been parsed.
type Validatable interface {
	Validate() error
}

// Generator runs the schema-constrained loop: prompt, parse leniently,
// validate, and retry only what retrying can fix. Transport failures get
// up to MaxRetries more attempts with linear backoff; a parsed-but-invalid
// response fails immediately as a SchemaError.
type Generator struct {
	provider   Provider
	maxRetries int
	backoff    time.Duration
}

const defaultMaxRetries = 2

func NewGenerator(provider Provider, maxRetries int) *Generator {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	return &Generator{
		provider:   provider,
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
}

// Generate fills out from one model call, retrying transport failures.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string, out Validatable) error {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Str("provider", g.provider.Name()).
				Int("attempt", attempt).
				Err(lastErr).
				Msg("retrying generation")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(g.backoff * time.Duration(attempt)):
			}
		}

		raw, err := g.provider.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			if IsTransient(err) {
				lastErr = err
				continue
			}
			return err
		}

		if !parseLenient(raw, out) {
			return &SchemaError{Reason: "output is not parseable JSON", Raw: raw}
		}
		if err := out.Validate(); err != nil {
			return &SchemaError{Reason: err.Error(), Raw: raw}
		}
		return nil
	}
	return lastErr
}
