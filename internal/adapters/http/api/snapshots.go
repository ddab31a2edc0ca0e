package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/xptrack/internal/domain/model"
)

// maxSnapshotBytes bounds POST /snapshots bodies.
const maxSnapshotBytes = 1 << 20

// SnapshotDependencies defines the interface for snapshot ingestion.
type SnapshotDependencies interface {
	Ingest(ctx context.Context, account string, raw model.RawSnapshot) (bool, error)
}

// SnapshotsHandler handles snapshot ingestion requests.
type SnapshotsHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(deps SnapshotDependencies) *SnapshotsHandler {
	return &SnapshotsHandler{deps: deps}
}

type storedResponse struct {
	Status   string `json:"status"`
	Replaced bool   `json:"replaced"`
}

// HandlePostSnapshot handles POST /snapshots/{account} requests.
func (h *SnapshotsHandler) HandlePostSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_snapshot"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	account, ok := pathParam(r.URL.Path, "/snapshots/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var snap model.RawSnapshot
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSnapshotBytes)).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	replaced, err := h.deps.Ingest(r.Context(), account, snap)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, storedResponse{Status: "stored", Replaced: replaced})
}

// pathParam extracts the single segment following prefix.
func pathParam(path, prefix string) (string, bool) {
	p := strings.TrimPrefix(path, prefix)
	if p == path || strings.TrimSpace(p) == "" || strings.Contains(p, "/") {
		return "", false
	}
	return p, true
}
