package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/paceline/internal/app"
)

// SampleIndexHeader carries the index of the sample returned by /demo_data.
const SampleIndexHeader = "X-Sample-Index"

// DataDependencies defines the interface for nearest-time lookups.
type DataDependencies interface {
	Readiness
	Lookup(ctx context.Context, t float64) (DataPoint, int, error)
}

// DataHandler handles data lookup requests.
type DataHandler struct {
	deps DataDependencies
}

// NewDataHandler creates a new data handler.
func NewDataHandler(deps DataDependencies) *DataHandler {
	return &DataHandler{deps: deps}
}

// HandleData handles GET /demo_data?t= requests.
func (h *DataHandler) HandleData(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Ready() {
		writeError(w, service.CodeNotInitialized, service.ErrNotInitialized)
		return
	}
	t, perr := queryFloat(r, "t")
	if perr != nil {
		writeError(w, perr.code, perr)
		return
	}
	dp, idx, err := h.deps.Lookup(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set(SampleIndexHeader, strconv.Itoa(idx))
	writeJSON(w, http.StatusOK, dp)
}
