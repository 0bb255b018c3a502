package common

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HttpClient is an interface for HTTP operations with optional retry logic.
// This allows mocking or custom transport layers in testing.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
	RetryWithExponentialBackoff(ctx context.Context, operation func() (any, error)) (any, error)
	SetSleepForTest(sleep func(d time.Duration))
}

// HTTPError is a custom error that captures unexpected status codes and response bodies.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// IsStatus reports whether err wraps an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}

// userAgentRoundTripper adds a User-Agent header and a client span per request.
type userAgentRoundTripper struct {
	Wrapped   http.RoundTripper
	UserAgent string
	tracer    trace.Tracer
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := rt.tracer.Start(req.Context(), req.Method+" "+req.URL.Host,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.host", req.URL.Host),
			attribute.String("http.path", req.URL.Path),
		))
	defer span.End()

	// clone request to avoid mutating the original
	clone := req.Clone(ctx)
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", rt.UserAgent)
	}
	resp, err := rt.Wrapped.RoundTrip(clone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp, nil
}

// Implementation of HttpClient that wraps a standard *http.Client with retry logic.
type httpClient struct {
	client    *http.Client
	logger    *zap.Logger
	sleepFunc func(d time.Duration)
}

// NewHttpClient returns a new HttpClient with a default 10s timeout, plus a custom User-Agent.
// A nil logger disables retry logging.
func NewHttpClient(userAgent string, base *http.Client, logger *zap.Logger) HttpClient {
	if base == nil {
		base = &http.Client{}
	}
	if base.Transport == nil {
		base.Transport = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base.Transport = &userAgentRoundTripper{
		Wrapped:   base.Transport,
		UserAgent: userAgent,
		tracer:    otel.Tracer("github.com/guarzo/gazettefeed/common"),
	}
	if base.Timeout == 0 {
		base.Timeout = 10 * time.Second
	}

	return &httpClient{
		client:    base,
		logger:    logger,
		sleepFunc: time.Sleep,
	}
}

func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *httpClient) CloseIdleConnections() {
	h.client.CloseIdleConnections()
}

// Exponential backoff constants
const (
	maxRetries = 5
	baseDelay  = 1 * time.Second
	maxDelay   = 32 * time.Second
)

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RetryWithExponentialBackoff attempts the given operation() multiple times if
// we encounter a retryable HTTPError (429 or 5xx). It gives up early when ctx is done.
func (h *httpClient) RetryWithExponentialBackoff(ctx context.Context, operation func() (any, error)) (any, error) {
	var result any
	var err error
	delay := baseDelay

	for i := 0; i < maxRetries; i++ {
		if result, err = operation(); err == nil {
			return result, nil
		}

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || !retryable(httpErr.StatusCode) {
			break
		}
		if i == maxRetries-1 || ctx.Err() != nil {
			break
		}

		// apply jitter
		wait := delay + time.Duration(rand.Int64N(int64(delay)))
		h.logger.Debug("retrying upstream request",
			zap.Int("attempt", i+1),
			zap.Int("status", httpErr.StatusCode),
			zap.Duration("wait", wait))
		h.sleepFunc(wait)

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return nil, err
}

func (h *httpClient) SetSleepForTest(sleep func(d time.Duration)) {
	h.sleepFunc = sleep
}
