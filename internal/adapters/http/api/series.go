package api

import (
	"context"
	"net/http"

	service "github.com/okian/paceline/internal/app"
	"github.com/okian/paceline/internal/domain/types"
)

// SeriesDependencies defines the interface for series export.
type SeriesDependencies interface {
	Readiness
	Series(ctx context.Context, step int) (types.SeriesColumns, error)
}

// SeriesHandler handles series export requests.
type SeriesHandler struct {
	deps SeriesDependencies
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(deps SeriesDependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

// HandleSeries handles GET /demo_series?step= requests. step defaults to 1.
func (h *SeriesHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Ready() {
		writeError(w, service.CodeNotInitialized, service.ErrNotInitialized)
		return
	}
	step := 1
	if r.URL.Query().Has("step") {
		v, perr := queryInt(r, "step")
		if perr != nil {
			writeError(w, perr.code, perr)
			return
		}
		step = v
	}
	cols, err := h.deps.Series(r.Context(), step)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}
