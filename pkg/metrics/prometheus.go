package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Inference
	predictions      prometheus.Counter
	predictionErrors *prometheus.CounterVec
	inferenceLatency prometheus.Histogram
	lookups          prometheus.Counter

	// Loaded state
	ready          prometheus.Gauge
	seriesLength   prometheus.Gauge
	windowSamples  prometheus.Gauge
	advanceSamples prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "paceline",
		subsystem:        "inference",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounter(m.counterOpts(
		"predictions_total", "Total number of successful predictions"))
	m.predictionErrors = auto.NewCounterVec(m.counterOpts(
		"prediction_errors_total", "Failed predictions by error kind"), []string{"kind"})
	m.inferenceLatency = auto.NewHistogram(m.histogramOpts(
		"inference_latency_milliseconds", "Model call latency in milliseconds", m.histogramBuckets))
	m.lookups = auto.NewCounter(m.counterOpts(
		"lookups_total", "Total number of nearest-time lookups"))

	m.ready = auto.NewGauge(m.gaugeOpts(
		"ready", "1 when a series and model are loaded"))
	m.seriesLength = auto.NewGauge(m.gaugeOpts(
		"series_length", "Number of samples in the loaded series"))
	m.windowSamples = auto.NewGauge(m.gaugeOpts(
		"window_samples", "Rows per model input"))
	m.advanceSamples = auto.NewGauge(m.gaugeOpts(
		"advance_samples", "Stride between consecutive poll indices"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "Error responses by endpoint, method and error code"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordPrediction increments the successful predictions counter.
func RecordPrediction() {
	globalManager.predictions.Inc()
}

// RecordPredictionError counts a failed prediction by error kind.
func RecordPredictionError(kind string) {
	globalManager.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordInferenceLatency records model latency in milliseconds.
func RecordInferenceLatency(latencyMs float64) {
	globalManager.inferenceLatency.Observe(latencyMs)
}

// RecordLookup increments the lookups counter.
func RecordLookup() {
	globalManager.lookups.Inc()
}

// UpdateReady sets the readiness gauge.
func UpdateReady(ready bool) {
	if ready {
		globalManager.ready.Set(1)
		return
	}
	globalManager.ready.Set(0)
}

// UpdateSeriesLength sets the loaded series length.
func UpdateSeriesLength(n int) {
	globalManager.seriesLength.Set(float64(n))
}

// UpdateWindowSamples sets the model window length.
func UpdateWindowSamples(n int) {
	globalManager.windowSamples.Set(float64(n))
}

// UpdateAdvanceSamples sets the poll stride.
func UpdateAdvanceSamples(n int) {
	globalManager.advanceSamples.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
