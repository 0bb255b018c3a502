package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/modules/analytics"
	"github.com/guarzo/gazettefeed/modules/companieshouse"
	"github.com/guarzo/gazettefeed/modules/gazette"
	"github.com/guarzo/gazettefeed/modules/research"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// Services are the backends the API fronts. Nil services answer 503.
type Services struct {
	Notices   gazette.GazetteService
	Registry  companieshouse.CompaniesHouseService
	Analytics analytics.AnalyticsService
	Research  research.ResearchService
}

// StatsReporter is implemented by every named cache.
type StatsReporter interface {
	Stats() common.CacheStats
}

// Server routes the dashboard API.
type Server struct {
	services Services
	caches   []StatsReporter
	logger   *zap.Logger
	tracer   trace.Tracer
	mux      *http.ServeMux
}

type errorResponse struct {
	Error string `json:"error"`
}

type ctxKey struct{}

// New builds the API. caches are reported by /healthz.
func New(services Services, caches []StatsReporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		services: services,
		caches:   caches,
		logger:   logger,
		tracer:   otel.Tracer("github.com/guarzo/gazettefeed/modules/server"),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/notices", s.handleNotices)
	s.mux.HandleFunc("GET /api/financials", s.handleFinancials)
	s.mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/draft-blog", s.handleDraftBlog)
	s.mux.HandleFunc("POST /api/draft-linkedin", s.handleDraftLinkedIn)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the routed API wrapped in request id, tracing and
// access logging.
func (s *Server) Handler() http.Handler {
	return s.middleware(s.mux)
}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := s.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("request.id", id)))
		defer span.End()
		ctx = context.WithValue(ctx, ctxKey{}, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps a service error onto a status code and logs it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, research.ErrCompanyRequired):
		status = http.StatusBadRequest
		msg = "Company name is required"
	case errors.Is(err, companieshouse.ErrNoAPIKey):
		status = http.StatusServiceUnavailable
		msg = "Companies House API key not configured"
	case errors.Is(err, research.ErrNoGenerator):
		status = http.StatusServiceUnavailable
		msg = "Content generation is not configured"
	}

	trace.SpanFromContext(r.Context()).RecordError(err)
	s.logger.Error("request failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	writeError(w, status, msg)
}
