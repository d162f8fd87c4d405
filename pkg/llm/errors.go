package llm

import (
	"errors"
	"fmt"
)

// TransportError marks a failure reaching or being served by the model
// endpoint: network errors, timeouts, throttling, server-side errors. These
// are the only failures the generator retries.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError marks a response that arrived but does not satisfy the
// section contract: unparseable output, missing fields, wrong cardinality.
// Retrying the same prompt is pointless, so the generator does not.
type SchemaError struct {
	Reason string
	Raw    string
}

func (e *SchemaError) Error() string {
	return "llm schema error: " + e.Reason
}

// IsTransient reports whether err is a retryable transport failure.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsSchema reports whether err is a contract violation in the model output.
func IsSchema(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
