package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/stockroom/pkg/idx"
)

// Transport logs every outgoing request once it completes. The logger is
// taken from the request context when present, falling back to Logger.
// When the request carries a ULID request id, the time between minting the
// id and sending the request is logged as queued_ms, which is where a rate
// limiter further out in the chain shows up.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	logger := t.Logger
	if l, ok := fromContext(r.Context()); ok {
		logger = l
	}
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	resp, err := base.RoundTrip(r)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		logger.Debug("http_request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration,
			"error", err,
		)
		return nil, err
	}

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", duration,
	}
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		attrs = append(attrs, "req_id", reqID)
		if id, err := idx.Parse(reqID); err == nil {
			if queued := start.Sub(id.Time()); queued > 0 {
				attrs = append(attrs, "queued_ms", queued.Milliseconds())
			}
		}
	}

	logger.Debug("http_request", attrs...)
	return resp, nil
}
