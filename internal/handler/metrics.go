package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medportal/medportal/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler creates a new MetricsHandler. Each handler owns its
// registry, so several can coexist in one process.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	if snapshotter == nil {
		return &MetricsHandler{}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(snapshotter))

	return &MetricsHandler{
		exposition: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	h.exposition.ServeHTTP(w, r)
}
