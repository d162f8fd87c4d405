package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type testPayload struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

func (p *testPayload) Validate() error {
	if p.Title == "" {
		return errors.New("title is empty")
	}
	if len(p.Items) == 0 {
		return errors.New("items is empty")
	}
	return nil
}

func TestParseLenient(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"strict json", `{"title":"t","items":["a"]}`, true},
		{"fenced json", "```json\n{\"title\":\"t\",\"items\":[\"a\"]}\n```", true},
		{"bare fence", "```\n{\"title\":\"t\",\"items\":[\"a\"]}\n```", true},
		{"trailing comma", `{"title":"t","items":["a",]}`, true},
		{"single quotes", `{'title':'t','items':['a']}`, true},
		{"unquoted keys", `{title:"t",items:["a"]}`, true},
		{"prose", `I am sorry, I cannot answer that.`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out testPayload
			if got := parseLenient(tc.input, &out); got != tc.ok {
				t.Errorf("parseLenient = %v, want %v", got, tc.ok)
			}
			if tc.ok && out.Title != "t" {
				t.Errorf("parsed title %q, want %q", out.Title, "t")
			}
		})
	}
}

// scriptedProvider returns its responses in order, one per call.
type scriptedProvider struct {
	responses []func() (string, error)
	calls     int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.calls >= len(p.responses) {
		return "", fmt.Errorf("unexpected call %d", p.calls)
	}
	fn := p.responses[p.calls]
	p.calls++
	return fn()
}

func transportFailure() (string, error) {
	return "", &TransportError{StatusCode: 503, Err: errors.New("upstream busy")}
}

func goodResponse() (string, error) {
	return `{"title":"t","items":["a"]}`, nil
}

func newTestGenerator(p Provider, retries int) *Generator {
	g := NewGenerator(p, retries)
	g.backoff = time.Millisecond
	return g
}

func TestGenerateRetriesTransportErrors(t *testing.T) {
	provider := &scriptedProvider{responses: []func() (string, error){
		transportFailure,
		transportFailure,
		goodResponse,
	}}
	g := newTestGenerator(provider, 2)

	var out testPayload
	if err := g.Generate(context.Background(), "sys", "user", &out); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if provider.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", provider.calls)
	}
	if out.Title != "t" {
		t.Errorf("payload not filled: %+v", out)
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	provider := &scriptedProvider{responses: []func() (string, error){
		transportFailure,
		transportFailure,
		transportFailure,
	}}
	g := newTestGenerator(provider, 2)

	var out testPayload
	err := g.Generate(context.Background(), "sys", "user", &out)
	if !IsTransient(err) {
		t.Fatalf("expected the last transport error, got %v", err)
	}
	if provider.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", provider.calls)
	}
}

func TestGenerateDoesNotRetrySchemaFailures(t *testing.T) {
	cases := []struct {
		name     string
		response func() (string, error)
	}{
		{"unparseable output", func() (string, error) { return "not json at all", nil }},
		{"invalid payload", func() (string, error) { return `{"title":"","items":[]}`, nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &scriptedProvider{responses: []func() (string, error){tc.response}}
			g := newTestGenerator(provider, 2)

			var out testPayload
			err := g.Generate(context.Background(), "sys", "user", &out)
			if !IsSchema(err) {
				t.Fatalf("expected a schema error, got %v", err)
			}
			if provider.calls != 1 {
				t.Errorf("schema failures must not be retried, got %d calls", provider.calls)
			}
		})
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	provider := &scriptedProvider{responses: []func() (string, error){
		func() (string, error) { return "", errors.New("invalid api key") },
	}}
	g := newTestGenerator(provider, 2)

	var out testPayload
	err := g.Generate(context.Background(), "sys", "user", &out)
	if err == nil || IsTransient(err) || IsSchema(err) {
		t.Fatalf("expected a plain error, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("non-transient errors must not be retried, got %d calls", provider.calls)
	}
}

func TestGenerateHonorsContextDuringBackoff(t *testing.T) {
	provider := &scriptedProvider{responses: []func() (string, error){
		transportFailure,
		goodResponse,
	}}
	g := NewGenerator(provider, 2)
	g.backoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out testPayload
	err := g.Generate(ctx, "sys", "user", &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("cancelled backoff must not re-call the provider, got %d calls", provider.calls)
	}
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("section failed: %w", &TransportError{Err: errors.New("timeout")})
	if !IsTransient(wrapped) {
		t.Error("wrapped transport error should classify as transient")
	}
	if IsSchema(wrapped) {
		t.Error("transport error is not a schema error")
	}
	if !IsSchema(&SchemaError{Reason: "bad"}) {
		t.Error("schema error should classify as schema")
	}
	if IsTransient(errors.New("boom")) {
		t.Error("plain error is not transient")
	}
}
