package api

import (
	"context"
	"net/http"

	service "github.com/okian/paceline/internal/app"
)

// PredictDependencies defines the interface for prediction.
type PredictDependencies interface {
	Readiness
	Predict(ctx context.Context, idx int) (Prediction, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles GET /demo_predict?idx= requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Ready() {
		writeError(w, service.CodeNotInitialized, service.ErrNotInitialized)
		return
	}
	idx, perr := queryInt(r, "idx")
	if perr != nil {
		writeError(w, perr.code, perr)
		return
	}
	p, err := h.deps.Predict(r.Context(), idx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
