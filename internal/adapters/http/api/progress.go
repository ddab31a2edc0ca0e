package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/xptrack/internal/domain/model"
	"github.com/okian/xptrack/internal/domain/period"
)

// ProgressDependencies defines the interface for progress queries.
type ProgressDependencies interface {
	ResolvePeriod(name string) (period.Window, error)
	Progress(ctx context.Context, account string, w period.Window) (Result, error)
}

// ProgressHandler handles progress requests.
type ProgressHandler struct {
	deps     ProgressDependencies
	validate *validator.Validate
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies, validate *validator.Validate) *ProgressHandler {
	return &ProgressHandler{deps: deps, validate: validate}
}

// progressQuery holds GET /progress query parameters. A preset and explicit
// bounds are mutually exclusive.
type progressQuery struct {
	Period string `validate:"omitempty,oneof=day week month year all"`
	Start  string `validate:"omitempty,excluded_with=Period"`
	End    string `validate:"omitempty,excluded_with=Period"`
}

// HandleGetProgress handles GET /progress/{account} requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_progress"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	account, ok := pathParam(r.URL.Path, "/progress/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	q := r.URL.Query()
	req := progressQuery{
		Period: strings.ToLower(strings.TrimSpace(q.Get("period"))),
		Start:  strings.TrimSpace(q.Get("start")),
		End:    strings.TrimSpace(q.Get("end")),
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	window, err := h.window(req)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}

	result, err := h.deps.Progress(r.Context(), account, window)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProgressHandler) window(req progressQuery) (period.Window, error) {
	if req.Start == "" && req.End == "" {
		return h.deps.ResolvePeriod(req.Period)
	}
	from, err := model.ParseBound(req.Start, false)
	if err != nil {
		return period.Window{}, err
	}
	to, err := model.ParseBound(req.End, true)
	if err != nil {
		return period.Window{}, err
	}
	return period.Custom(from, to)
}
