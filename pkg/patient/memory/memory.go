// Package memory implements the patient registry: an in-memory collection
// that is the source of truth, mirrored to durable storage after every
// mutation.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"patientflow/pkg/logger"
	"patientflow/pkg/patient"
)

// Repository provides serialized access to admitted patients. Every
// operation, including mirror writes, runs under a single mutex.
type Repository struct {
	mu       sync.Mutex
	patients []patient.Patient
	index    map[int]int // id -> position in patients
	nextID   int
	mirror   patient.Mirror
	log      *logger.Logger
}

// New loads the registry from mirror. A failed load is logged and the
// registry starts empty; it never aborts startup.
func New(ctx context.Context, mirror patient.Mirror, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Repository{
		index:  make(map[int]int),
		nextID: patient.DefaultNextID,
		mirror: mirror,
		log:    log,
	}
	if mirror == nil {
		return r
	}
	snap, err := mirror.Load(ctx)
	if err != nil {
		log.Warn(ctx, "load registry, starting empty", "error", err)
		return r
	}
	snap = patient.Normalize(snap)
	r.nextID = snap.NextID
	for _, p := range snap.Patients {
		r.index[p.ID] = len(r.patients)
		r.patients = append(r.patients, p)
	}
	log.Info(ctx, "registry loaded", "patients", len(r.patients), "next_id", r.nextID)
	return r
}

// Create admits p under a freshly assigned id. The returned error wraps
// patient.ErrPersist when the mirror write failed; the patient stays admitted.
func (r *Repository) Create(ctx context.Context, p patient.Patient) (patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.index[p.ID] = len(r.patients)
	r.patients = append(r.patients, p)
	return p, r.persistLocked(ctx)
}

// Get retrieves a patient by id.
func (r *Repository) Get(ctx context.Context, id int) (patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.index[id]
	if !ok {
		return patient.Patient{}, patient.ErrNotFound
	}
	return r.patients[pos], nil
}

// List returns a copy of all patients in admission order.
func (r *Repository) List(ctx context.Context) ([]patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]patient.Patient, len(r.patients))
	copy(out, r.patients)
	return out, nil
}

// Search returns patients whose decimal id contains query, or whose name
// contains query ignoring case. An empty query matches everyone.
func (r *Repository) Search(ctx context.Context, query string) ([]patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(query)
	out := make([]patient.Patient, 0)
	for _, p := range r.patients {
		if strings.Contains(strconv.Itoa(p.ID), query) ||
			strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Discharge removes the patient permanently and returns the removed record.
// A miss returns patient.ErrNotFound and writes nothing. As with Create, a
// persist failure still returns the record since the removal is kept.
func (r *Repository) Discharge(ctx context.Context, id int) (patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.index[id]
	if !ok {
		return patient.Patient{}, patient.ErrNotFound
	}
	removed := r.patients[pos]
	r.patients = append(r.patients[:pos], r.patients[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.patients); i++ {
		r.index[r.patients[i].ID] = i
	}
	return removed, r.persistLocked(ctx)
}

// Statistics counts admitted patients by gender.
func (r *Repository) Statistics(ctx context.Context) (patient.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return patient.CountGenders(r.patients), nil
}

// Flush writes the full registry to the mirror.
func (r *Repository) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked(ctx)
}

// persistLocked must be called with r.mu held. The write ignores caller
// cancellation so a half-finished request never leaves a partial write.
func (r *Repository) persistLocked(ctx context.Context) error {
	if r.mirror == nil {
		return nil
	}
	snap := patient.Snapshot{NextID: r.nextID, Patients: r.patients}
	if err := r.mirror.Save(context.WithoutCancel(ctx), snap); err != nil {
		r.log.Error(ctx, "persist registry", "error", err, "patients", len(r.patients))
		return fmt.Errorf("%w: %v", patient.ErrPersist, err)
	}
	return nil
}

var _ patient.Repository = (*Repository)(nil)
