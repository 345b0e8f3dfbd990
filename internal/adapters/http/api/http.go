// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	service "github.com/okian/paceline/internal/app"
	"github.com/okian/paceline/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	DataDependencies
	SeriesDependencies
}

// Readiness reports whether loaded state is available.
type Readiness interface {
	Ready() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	dataHandler    *DataHandler
	seriesHandler  *SeriesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		dataHandler:    NewDataHandler(deps),
		seriesHandler:  NewSeriesHandler(deps),
	}
}

// Register attaches all HTTP routes to r. Every route is GET only; other
// methods get 405 from the router.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Use(RequestIDMiddleware)

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	r.HandleFunc("/demo_predict", MetricsMiddleware(s.predictHandler.HandlePredict, "demo_predict")).Methods(http.MethodGet)
	r.HandleFunc("/demo_data", MetricsMiddleware(s.dataHandler.HandleData, "demo_data")).Methods(http.MethodGet)
	r.HandleFunc("/demo_series", MetricsMiddleware(s.seriesHandler.HandleSeries, "demo_series")).Methods(http.MethodGet)
}

// Prediction mirrors the body of GET /demo_predict.
type Prediction = types.Prediction

// DataPoint mirrors the body of GET /demo_data.
type DataPoint = types.DataPoint

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case service.CodeMissingParameter,
		service.CodeInvalidParameter,
		service.CodeIndexOutOfRange,
		service.CodeInsufficientWindow:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code string, err error) {
	status := statusFor(code)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	if rw, ok := w.(*responseWriter); ok {
		rw.errorCode = code
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeServiceError classifies err and writes it.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, service.Classify(err), err)
}
