// Package file mirrors the patient registry to a line-oriented text file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"patientflow/pkg/patient"
)

// Mirror stores the registry in a single file: the next-id counter on the
// first line, then one delimited line per patient.
type Mirror struct {
	path string
}

// New returns a file mirror at path. The file is created on first Save.
func New(path string) *Mirror {
	return &Mirror{path: path}
}

// Path returns the backing file path.
func (m *Mirror) Path() string { return m.path }

// Load reads the backing file. A missing file yields an empty snapshot.
func (m *Mirror) Load(ctx context.Context) (patient.Snapshot, error) {
	f, err := os.Open(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return patient.Snapshot{NextID: patient.DefaultNextID}, nil
	}
	if err != nil {
		return patient.Snapshot{}, fmt.Errorf("open %s: %w", m.path, err)
	}
	defer f.Close()
	snap, err := patient.DecodeSnapshot(f)
	if err != nil {
		return patient.Snapshot{}, fmt.Errorf("read %s: %w", m.path, err)
	}
	return snap, nil
}

// Save rewrites the whole file. Content goes to a temporary file in the same
// directory which then replaces the target, so readers never see a torn file.
func (m *Mirror) Save(ctx context.Context, s patient.Snapshot) (retErr error) {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dirs: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := patient.EncodeSnapshot(tmp, s); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("replace %s: %w", m.path, err)
	}
	return nil
}

var _ patient.Mirror = (*Mirror)(nil)
