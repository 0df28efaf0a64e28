package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"patientflow/pkg/patient"
	"patientflow/pkg/patient/memory"
)

func TestLoadMissingFile(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "hospital_data.txt"))
	s, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.NextID != patient.DefaultNextID || len(s.Patients) != 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestSaveWritesLineLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hospital_data.txt")
	m := New(path)
	err := m.Save(context.Background(), patient.Snapshot{NextID: 1003, Patients: []patient.Patient{
		{ID: 1001, Name: "Alice", Age: 30, Gender: "Female"},
		{ID: 1002, Name: "Bob", Age: 41, Gender: "Male", Room: "12"},
	}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "1003\n1001|Alice|30|Female|||||\n1002|Bob|41|Male|||||12\n"
	if string(data) != want {
		t.Fatalf("got %q want %q", data, want)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital_data.txt")
	m := New(path)
	ctx := context.Background()
	m.Save(ctx, patient.Snapshot{NextID: 1002, Patients: []patient.Patient{{ID: 1001, Name: "a"}}})
	if err := m.Save(ctx, patient.Snapshot{NextID: 1002}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.NextID != 1002 || len(s.Patients) != 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestLoadSkipsShortLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital_data.txt")
	if err := os.WriteFile(path, []byte("1001\n1001|Alice|30|Female|x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	repo := memory.New(context.Background(), New(path), nil)
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected malformed line to be skipped, got %+v", list)
	}
}

func TestLoadLineEdgeCases(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		names []string
		rooms []string
	}{
		{
			name:  "carriage return kept in last field",
			doc:   "1003\n1001|Alice|30|Female|||||101\r\n1002|Bob|41|Male|||||12\n",
			names: []string{"Alice", "Bob"},
			rooms: []string{"101\r", "12"},
		},
		{
			name:  "record split by a newline inside a field",
			doc:   "1003\n1001|Al\nice|30|Female|||||1\n1002|Bob|41|Male|||||12\n",
			names: []string{"Bob"},
			rooms: []string{"12"},
		},
		{
			name:  "no trailing newline",
			doc:   "1002\n1001|Alice|30|Female|||||7",
			names: []string{"Alice"},
			rooms: []string{"7"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hospital_data.txt")
			if err := os.WriteFile(path, []byte(tc.doc), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			s, err := New(path).Load(context.Background())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(s.Patients) != len(tc.names) {
				t.Fatalf("got %d patients, want %d", len(s.Patients), len(tc.names))
			}
			for i, p := range s.Patients {
				if p.Name != tc.names[i] || p.Room != tc.rooms[i] {
					t.Fatalf("patient %d: got %q/%q want %q/%q", i, p.Name, p.Room, tc.names[i], tc.rooms[i])
				}
			}
		})
	}
}

func TestRestartWithOverlongRecord(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hospital_data.txt")

	repo := memory.New(ctx, New(path), nil)
	for _, name := range []string{"Alice", "Bob", "Carol", strings.Repeat("z", 2<<20)} {
		if _, err := repo.Create(ctx, patient.Patient{Name: name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	restarted := memory.New(ctx, New(path), nil)
	list, _ := restarted.List(ctx)
	if len(list) != 4 || list[0].Name != "Alice" || len(list[3].Name) != 2<<20 {
		t.Fatalf("expected all 4 patients after restart, got %d", len(list))
	}
	p, err := restarted.Create(ctx, patient.Patient{Name: "Dave"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 1005 {
		t.Fatalf("expected 1005, got %d", p.ID)
	}
}

func TestRegistryRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hospital_data.txt")

	repo := memory.New(ctx, New(path), nil)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if _, err := repo.Create(ctx, patient.Patient{Name: name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := repo.Discharge(ctx, 1003); err != nil {
		t.Fatalf("discharge: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "1004\n") {
		t.Fatalf("expected counter 1004 first, got %q", data)
	}

	restarted := memory.New(ctx, New(path), nil)
	list, _ := restarted.List(ctx)
	if len(list) != 2 || list[0].Name != "Alice" || list[1].Name != "Bob" {
		t.Fatalf("unexpected patients after restart: %+v", list)
	}
	p, err := restarted.Create(ctx, patient.Patient{Name: "Dave"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 1004 {
		t.Fatalf("expected 1004, got %d", p.ID)
	}
}
