package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"patientflow/pkg/patient"
)

// mockClient keeps objects in memory.
type mockClient struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockClient() *mockClient {
	return &mockClient{objects: make(map[string][]byte)}
}

func (c *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (c *mockClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return nil, c.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	c.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestMirrorMissingObject(t *testing.T) {
	m := NewWithClient(newMockClient(), "bucket", "")
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
	client := newMockClient()
	m := NewWithClient(client, "bucket", "registry.txt")
	in := patient.Snapshot{NextID: 1002, Patients: []patient.Patient{{ID: 1001, Name: "Alice", Gender: "Female"}}}
	if err := m.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := string(client.objects["bucket/registry.txt"]); got != "1002\n1001|Alice|0|Female|||||\n" {
		t.Fatalf("unexpected object body %q", got)
	}
	out, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.NextID != 1002 || len(out.Patients) != 1 || out.Patients[0] != in.Patients[0] {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
}

func TestMirrorSaveError(t *testing.T) {
	client := newMockClient()
	client.putErr = errors.New("access denied")
	m := NewWithClient(client, "bucket", "")
	if err := m.Save(context.Background(), patient.Snapshot{NextID: 1001}); err == nil {
		t.Fatal("expected error")
	}
}
