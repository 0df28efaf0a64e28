package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"patientflow/pkg/otel"
	"patientflow/pkg/patient"
	"patientflow/pkg/patient/events"
)

const (
	publishTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

type createResponse struct {
	Message string          `json:"message"`
	Patient patient.Patient `json:"patient"`
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusFound)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// listPatientsHandler lists admitted patients.
// @Summary List patients
// @Produce json
// @Success 200 {array} patient.Patient
// @Router /api/patients [get]
func (a *api) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listPatientsHandler")
	defer span.End()

	patients, err := a.repo.List(ctx)
	if err != nil {
		a.log.Error(ctx, "list patients", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

// getPatientHandler retrieves a patient by ID.
// @Summary Get patient
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} patient.Patient
// @Failure 404 {object} errorResponse
// @Router /api/patients/{id} [get]
func (a *api) getPatientHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getPatientHandler")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Patient not found")
		return
	}
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}
		a.log.Error(ctx, "get patient", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// createPatientHandler admits a new patient. Any id in the body is ignored.
// The admitted event follows the in-memory registry, so it is published even
// when the durable write fails.
// @Summary Admit patient
// @Accept json
// @Produce json
// @Param patient body patient.Patient true "Patient"
// @Success 201 {object} createResponse
// @Failure 400 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/patients [post]
func (a *api) createPatientHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createPatientHandler")
	defer span.End()

	in, err := patient.FromWire(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.repo.Create(ctx, in)
	if err != nil {
		if !errors.Is(err, patient.ErrPersist) {
			a.log.Error(ctx, "create patient", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		a.metrics.PersistFailed()
		a.log.Error(ctx, "create patient", "error", err, "id", p.ID)
		a.publish(ctx, events.Admitted(p, RequestID(ctx)))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.publish(ctx, events.Admitted(p, RequestID(ctx)))
	writeJSON(w, http.StatusCreated, createResponse{Message: "Patient added successfully", Patient: p})
}

// dischargePatientHandler removes a patient permanently.
// @Summary Discharge patient
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/patients/{id} [delete]
func (a *api) dischargePatientHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "dischargePatientHandler")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Patient not found")
		return
	}
	p, err := a.repo.Discharge(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, patient.ErrNotFound):
			writeError(w, http.StatusNotFound, "Patient not found")
		case errors.Is(err, patient.ErrPersist):
			a.metrics.PersistFailed()
			a.log.Error(ctx, "discharge patient", "error", err, "id", id)
			a.publish(ctx, events.Discharged(p, RequestID(ctx)))
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			a.log.Error(ctx, "discharge patient", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	a.publish(ctx, events.Discharged(p, RequestID(ctx)))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Patient discharged successfully"})
}

// searchPatientsHandler finds patients by id digits or name.
// @Summary Search patients
// @Produce json
// @Param q query string false "Substring of the id or case-insensitive substring of the name"
// @Success 200 {array} patient.Patient
// @Router /api/patients/search [get]
func (a *api) searchPatientsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "searchPatientsHandler")
	defer span.End()

	patients, err := a.repo.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		a.log.Error(ctx, "search patients", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

// statisticsHandler reports admitted patients by gender.
// @Summary Statistics
// @Produce json
// @Success 200 {object} patient.Stats
// @Router /api/statistics [get]
func (a *api) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "statisticsHandler")
	defer span.End()

	stats, err := a.repo.Statistics(ctx)
	if err != nil {
		a.log.Error(ctx, "statistics", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// publish sends e without failing the request; errors are only logged.
func (a *api) publish(ctx context.Context, e events.Event) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := a.events.Publish(pctx, e)
	a.metrics.EventPublished(e.Type, err)
	if err != nil {
		a.log.Warn(ctx, "publish event", "error", err, "type", e.Type, "id", e.PatientID)
	}
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, false
	}
	return id, true
}
