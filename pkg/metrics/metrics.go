// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patientflow/pkg/patient"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	persistFailures prometheus.Counter
	events          *prometheus.CounterVec
}

// New registers the collectors on a fresh registry. census reports the
// current admitted counts and may be nil.
func New(census func(ctx context.Context) (patient.Stats, error)) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patientflow",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "patientflow",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patientflow",
			Name:      "persist_failures_total",
			Help:      "Registry mutations whose durable write failed.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patientflow",
			Name:      "events_published_total",
			Help:      "Registry events by type and result.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(m.requests, m.duration, m.persistFailures, m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if census != nil {
		for _, g := range []string{"male", "female", "other"} {
			gender := g
			reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace:   "patientflow",
				Name:        "admitted_patients",
				Help:        "Currently admitted patients by gender.",
				ConstLabels: prometheus.Labels{"gender": gender},
			}, func() float64 {
				s, err := census(context.Background())
				if err != nil {
					return 0
				}
				switch gender {
				case "male":
					return float64(s.Male)
				case "female":
					return float64(s.Female)
				default:
					return float64(s.Other)
				}
			}))
		}
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// PersistFailed counts a failed durable write.
func (m *Metrics) PersistFailed() { m.persistFailures.Inc() }

// EventPublished counts an event publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.events.WithLabelValues(eventType, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled with the matched
// route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
