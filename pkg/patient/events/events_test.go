package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"

	"patientflow/pkg/patient"
)

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublish(t *testing.T) {
	rw := &recordingWriter{}
	k := &Kafka{w: rw}
	p := patient.Patient{ID: 1001, Name: "Alice"}

	if err := k.Publish(context.Background(), Admitted(p, "req-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(rw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(rw.msgs))
	}
	msg := rw.msgs[0]
	if string(msg.Key) != "1001" {
		t.Fatalf("unexpected key %q", msg.Key)
	}
	var e Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Type != TypeAdmitted || e.Patient.Name != "Alice" || e.RequestID != "req-1" {
		t.Fatalf("unexpected event: %+v", e)
	}

	if err := k.Close(); err != nil || !rw.closed {
		t.Fatalf("close: %v closed=%v", err, rw.closed)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), Discharged(patient.Patient{ID: 1}, "")); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
