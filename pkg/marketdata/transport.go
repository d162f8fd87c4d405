// Package marketdata wraps the upstream financial-data providers behind a
// gateway that returns best-effort, null-tolerant snapshots. Upstream
// failures (network errors, rate-limit payloads disguised as 200 responses)
// surface as missing data for that field set, never as a hard failure of
// the whole request.
package marketdata

import (
	"net/http"
	"time"

	"github.com/phuslu/log"
)

// loggingTransport instruments outbound provider calls. It is injected into
// each client's http.Client so instrumentation stays local to the gateway
// instead of patching the process-wide default transport.
type loggingTransport struct {
	next http.RoundTripper
}

func newLoggingTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.Warn().
			Str("host", req.URL.Host).
			Str("path", req.URL.Path).
			Err(err).
			Msg("provider request failed")
		return nil, err
	}
	log.Debug().
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("provider request")
	return resp, nil
}
