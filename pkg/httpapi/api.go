// Package httpapi exposes the patient registry over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"patientflow/pkg/logger"
	"patientflow/pkg/metrics"
	"patientflow/pkg/patient"
	"patientflow/pkg/patient/events"
)

// Deps are the collaborators of the API. Only Repo is required.
type Deps struct {
	Repo    patient.Repository
	Events  events.Publisher
	Log     *logger.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

type api struct {
	repo    patient.Repository
	events  events.Publisher
	log     *logger.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New builds the HTTP handler with routes and middleware.
func New(d Deps) http.Handler {
	a := &api{
		repo:    d.Repo,
		events:  d.Events,
		log:     d.Log,
		metrics: d.Metrics,
		tracer:  d.Tracer,
	}
	if a.events == nil {
		a.events = events.Nop{}
	}
	if a.log == nil {
		a.log = logger.NewNop()
	}
	if a.metrics == nil {
		a.metrics = metrics.New(nil)
	}

	r := mux.NewRouter()
	r.Use(a.traceMiddleware, a.metrics.Middleware)

	r.HandleFunc("/", rootHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	sub := r.PathPrefix("/api").Subrouter()
	sub.HandleFunc("/patients", a.listPatientsHandler).Methods(http.MethodGet)
	sub.HandleFunc("/patients", a.createPatientHandler).Methods(http.MethodPost)
	sub.HandleFunc("/patients/search", a.searchPatientsHandler).Methods(http.MethodGet)
	sub.HandleFunc("/patients/{id:[0-9]+}", a.getPatientHandler).Methods(http.MethodGet)
	sub.HandleFunc("/patients/{id:[0-9]+}", a.dischargePatientHandler).Methods(http.MethodDelete)
	sub.HandleFunc("/statistics", a.statisticsHandler).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// outermost -> innermost
	var h http.Handler = r
	h = corsMiddleware(h)
	h = loggingMiddleware(a.log)(h)
	h = requestIDMiddleware(h)
	h = recoverMiddleware(a.log)(h)
	return h
}
