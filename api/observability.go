package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var processStartedAt = time.Now().UTC()

type metricsRegistry struct {
	registry          *prometheus.Registry
	httpRequests      *prometheus.CounterVec
	assistantOutcomes *prometheus.CounterVec
}

func newMetricsRegistry() *metricsRegistry {
	reg := prometheus.NewRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mdip_uptime_seconds",
		Help: "Process uptime in seconds.",
	}, func() float64 {
		return time.Since(processStartedAt).Seconds()
	}))
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mdip_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "status"})
	assistantOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mdip_assistant_turns_total",
		Help: "Assistant turns by domain and outcome.",
	}, []string{"domain", "outcome"})
	reg.MustRegister(httpRequests, assistantOutcomes)
	return &metricsRegistry{
		registry:          reg,
		httpRequests:      httpRequests,
		assistantOutcomes: assistantOutcomes,
	}
}

func (m *metricsRegistry) observeRequest(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *metricsRegistry) observeAssistant(domain, outcome string) {
	m.assistantOutcomes.WithLabelValues(domain, outcome).Inc()
}

func (s *Server) registerObservabilityRoutes() {
	s.router.Get("/healthz", s.healthz)
	s.router.Get("/readyz", s.readyz)
	s.router.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":         true,
		"now":        time.Now().UTC().Format(time.RFC3339Nano),
		"uptime_sec": int64(time.Since(processStartedAt).Seconds()),
		"app_env":    s.cfg.AppEnv,
	})
}

// readyz also checks the database, so an orchestrator can tell a wedged
// instance from a busy one.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "database unavailable"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
