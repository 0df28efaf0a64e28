// Package postgres mirrors the patient registry to PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"patientflow/pkg/patient"
)

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id         INTEGER PRIMARY KEY,
	position   INTEGER NOT NULL,
	name       TEXT NOT NULL,
	age        INTEGER NOT NULL,
	gender     TEXT NOT NULL,
	contact    TEXT NOT NULL,
	disease    TEXT NOT NULL,
	admit_date TEXT NOT NULL,
	doctor     TEXT NOT NULL,
	room       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS registry_counter (
	id      INTEGER PRIMARY KEY,
	next_id INTEGER NOT NULL
);`

// Mirror persists the registry in PostgreSQL.
type Mirror struct {
	db *sql.DB
}

// New creates a PostgreSQL mirror. Call Migrate before first use.
func New(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

// Migrate creates the tables if they do not exist.
func (m *Mirror) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Load reads the counter and every patient in admission order.
func (m *Mirror) Load(ctx context.Context) (patient.Snapshot, error) {
	snap := patient.Snapshot{NextID: patient.DefaultNextID}
	err := m.db.QueryRowContext(ctx, "SELECT next_id FROM registry_counter WHERE id=1").Scan(&snap.NextID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return patient.Snapshot{}, fmt.Errorf("select counter: %w", err)
	}
	rows, err := m.db.QueryContext(ctx,
		"SELECT id,name,age,gender,contact,disease,admit_date,doctor,room FROM patients ORDER BY position")
	if err != nil {
		return patient.Snapshot{}, fmt.Errorf("select patients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p patient.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Disease, &p.AdmitDate, &p.Doctor, &p.Room); err != nil {
			return patient.Snapshot{}, fmt.Errorf("scan patient: %w", err)
		}
		snap.Patients = append(snap.Patients, p)
	}
	return snap, rows.Err()
}

// Save replaces the stored registry in one transaction, bulk loading the
// patients with COPY.
func (m *Mirror) Save(ctx context.Context, s patient.Snapshot) (retErr error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM patients"); err != nil {
		return fmt.Errorf("clear patients: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("patients",
		"id", "position", "name", "age", "gender", "contact", "disease", "admit_date", "doctor", "room"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for i, p := range s.Patients {
		if _, err := stmt.ExecContext(ctx, p.ID, i, p.Name, p.Age, p.Gender, p.Contact, p.Disease, p.AdmitDate, p.Doctor, p.Room); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy patient %d: %w", p.ID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO registry_counter (id,next_id) VALUES (1,$1) ON CONFLICT (id) DO UPDATE SET next_id=EXCLUDED.next_id",
		s.NextID); err != nil {
		return fmt.Errorf("upsert counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var _ patient.Mirror = (*Mirror)(nil)
