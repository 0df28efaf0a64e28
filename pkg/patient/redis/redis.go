// Package redis mirrors the patient registry to a single Redis key.
package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"patientflow/pkg/patient"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "patientflow:registry"

// Mirror stores the line-encoded registry document under one key.
type Mirror struct {
	client redis.Cmdable
	key    string
}

// New creates a Redis mirror using client.
func New(client redis.Cmdable, key string) *Mirror {
	if key == "" {
		key = DefaultKey
	}
	return &Mirror{client: client, key: key}
}

// Load fetches and decodes the stored document. A missing key yields an
// empty snapshot.
func (m *Mirror) Load(ctx context.Context) (patient.Snapshot, error) {
	data, err := m.client.Get(ctx, m.key).Result()
	if errors.Is(err, redis.Nil) {
		return patient.Snapshot{NextID: patient.DefaultNextID}, nil
	}
	if err != nil {
		return patient.Snapshot{}, fmt.Errorf("get %s: %w", m.key, err)
	}
	return patient.DecodeSnapshot(strings.NewReader(data))
}

// Save overwrites the stored document.
func (m *Mirror) Save(ctx context.Context, s patient.Snapshot) error {
	var buf bytes.Buffer
	if err := patient.EncodeSnapshot(&buf, s); err != nil {
		return err
	}
	if err := m.client.Set(ctx, m.key, buf.String(), 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", m.key, err)
	}
	return nil
}

var _ patient.Mirror = (*Mirror)(nil)
