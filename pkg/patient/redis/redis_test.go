package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"patientflow/pkg/patient"
)

// fakeClient overrides the two commands Mirror uses.
type fakeClient struct {
	redis.Cmdable
	values map[string]string
	err    error
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func TestMirrorMissingKey(t *testing.T) {
	m := New(&fakeClient{values: map[string]string{}}, "")
	s, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.NextID != patient.DefaultNextID || len(s.Patients) != 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestMirrorSaveLoad(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{values: map[string]string{}}
	m := New(fc, "")
	in := patient.Snapshot{NextID: 1003, Patients: []patient.Patient{
		{ID: 1001, Name: "Alice"},
		{ID: 1002, Name: "Bob"},
	}}
	if err := m.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := fc.values[DefaultKey]; !ok {
		t.Fatalf("expected value under %s", DefaultKey)
	}
	out, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.NextID != 1003 || len(out.Patients) != 2 || out.Patients[1].Name != "Bob" {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
}

func TestMirrorErrors(t *testing.T) {
	fc := &fakeClient{values: map[string]string{}, err: errors.New("connection refused")}
	m := New(fc, "k")
	if _, err := m.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if err := m.Save(context.Background(), patient.Snapshot{}); err == nil {
		t.Fatal("expected save error")
	}
}
