// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	repository "github.com/okian/xptrack/internal/adapters/repository"
	"github.com/okian/xptrack/internal/domain/model"
	"github.com/okian/xptrack/internal/domain/period"
	"github.com/okian/xptrack/internal/domain/types"
	"github.com/okian/xptrack/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SnapshotDependencies
	ProgressDependencies
	GainsDependencies
}

// Result mirrors the aggregate shape returned by progress queries.
type Result = types.Result

// GainEntry mirrors the row shape returned by gains queries.
type GainEntry = types.GainEntry

// Option configures the Server.
type Option func(*Server)

// WithMaxGainsLimit caps the limit accepted by GET /gains.
func WithMaxGainsLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxGainsLimit = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	snapshotsHandler *SnapshotsHandler
	progressHandler  *ProgressHandler
	gainsHandler     *GainsHandler

	maxGainsLimit int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxGainsLimit: defaultMaxGainsLimit}
	for _, opt := range opts {
		opt(s)
	}

	validate := validator.New()
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.snapshotsHandler = NewSnapshotsHandler(deps)
	s.progressHandler = NewProgressHandler(deps, validate)
	s.gainsHandler = NewGainsHandler(deps, validate, s.maxGainsLimit)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", RequestID(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.HandleFunc("/stats", RequestID(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.HandleFunc("/snapshots/", RequestID(MetricsMiddleware(s.snapshotsHandler.HandlePostSnapshot, "snapshots")))
	mux.HandleFunc("/progress/", RequestID(MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress")))
	mux.HandleFunc("/gains", RequestID(MetricsMiddleware(s.gainsHandler.HandleGetGains, "gains")))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status code and writes it. Server errors are
// logged with the request id.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Named("api").Error(r.Context(), "request failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// classify translates upstream sentinel errors to HTTP status codes.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidAccount),
		errors.Is(err, model.ErrMissingDate),
		errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, period.ErrUnknownPeriod),
		errors.Is(err, period.ErrInvalidWindow):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
