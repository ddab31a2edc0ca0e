package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/xptrack/internal/domain/period"
)

// Gains limits.
const (
	defaultGainsLimit    = 10
	defaultMaxGainsLimit = 100
)

// GainsDependencies defines the interface for gains leaderboard operations.
type GainsDependencies interface {
	ResolvePeriod(name string) (period.Window, error)
	Gains(ctx context.Context, w period.Window, limit int) ([]GainEntry, error)
}

// GainsHandler handles gains leaderboard requests.
type GainsHandler struct {
	deps     GainsDependencies
	validate *validator.Validate
	limitTag string
}

// NewGainsHandler creates a new gains handler. maxLimit caps ?limit.
func NewGainsHandler(deps GainsDependencies, validate *validator.Validate, maxLimit int) *GainsHandler {
	return &GainsHandler{
		deps:     deps,
		validate: validate,
		limitTag: fmt.Sprintf("min=1,max=%d", maxLimit),
	}
}

type gainsQuery struct {
	Period string `validate:"omitempty,oneof=day week month year all"`
}

type gainsResponse struct {
	Name    string      `json:"name"`
	Entries []GainEntry `json:"entries"`
}

// HandleGetGains handles GET /gains?period=&limit= requests.
func (h *GainsHandler) HandleGetGains(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_gains"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	req := gainsQuery{Period: strings.ToLower(strings.TrimSpace(q.Get("period")))}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	limit := defaultGainsLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		limit = n
	}
	if err := h.validate.Var(limit, h.limitTag); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	window, err := h.deps.ResolvePeriod(req.Period)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}

	entries, err := h.deps.Gains(r.Context(), window, limit)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, gainsResponse{Name: window.Name, Entries: entries})
}
