// Package sqlite mirrors the patient registry to an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

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

// Mirror persists the registry in a SQLite file.
type Mirror struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Mirror, error) {
	if path == "" {
		path = "patientflow.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Mirror{db: db, path: path}, nil
}

// Path returns the database file path.
func (m *Mirror) Path() string { return m.path }

// Close releases the database handle.
func (m *Mirror) Close() error { return m.db.Close() }

// Load reads the counter and every patient in admission order.
func (m *Mirror) Load(ctx context.Context) (patient.Snapshot, error) {
	snap := patient.Snapshot{NextID: patient.DefaultNextID}
	err := m.db.QueryRowContext(ctx, `SELECT next_id FROM registry_counter WHERE id=1`).Scan(&snap.NextID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return patient.Snapshot{}, fmt.Errorf("select counter: %w", err)
	}
	rows, err := m.db.QueryContext(ctx,
		`SELECT id,name,age,gender,contact,disease,admit_date,doctor,room FROM patients ORDER BY position`)
	if err != nil {
		return patient.Snapshot{}, fmt.Errorf("select patients: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p patient.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Disease, &p.AdmitDate, &p.Doctor, &p.Room); err != nil {
			return patient.Snapshot{}, fmt.Errorf("scan patient: %w", err)
		}
		snap.Patients = append(snap.Patients, p)
	}
	return snap, rows.Err()
}

// Save replaces the stored registry in one transaction.
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM patients`); err != nil {
		return fmt.Errorf("clear patients: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO patients
		(id,position,name,age,gender,contact,disease,admit_date,doctor,room)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, p := range s.Patients {
		if _, err := stmt.ExecContext(ctx, p.ID, i, p.Name, p.Age, p.Gender, p.Contact, p.Disease, p.AdmitDate, p.Doctor, p.Room); err != nil {
			return fmt.Errorf("insert patient %d: %w", p.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registry_counter(id,next_id) VALUES(1,?) ON CONFLICT(id) DO UPDATE SET next_id=excluded.next_id`,
		s.NextID); err != nil {
		return fmt.Errorf("upsert counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var _ patient.Mirror = (*Mirror)(nil)
