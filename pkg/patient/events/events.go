// Package events publishes admission and discharge notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"patientflow/pkg/patient"
)

// Event types.
const (
	TypeAdmitted   = "patient.admitted"
	TypeDischarged = "patient.discharged"
)

// Event describes a registry change.
type Event struct {
	Type       string          `json:"type"`
	PatientID  int             `json:"patientId"`
	Patient    patient.Patient `json:"patient"`
	OccurredAt time.Time       `json:"occurredAt"`
	RequestID  string          `json:"requestId,omitempty"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

// Publish drops e.
func (Nop) Publish(context.Context, Event) error { return nil }

// Close is a no-op.
func (Nop) Close() error { return nil }

// messageWriter is the subset of *kafka.Writer used by Kafka.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON messages keyed by patient id.
type Kafka struct {
	w messageWriter
}

// NewKafka creates a publisher writing to topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}}
}

// Publish writes e synchronously.
func (k *Kafka) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(e.PatientID)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", e.Type, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (k *Kafka) Close() error {
	return k.w.Close()
}

// Admitted builds the event for a newly created patient.
func Admitted(p patient.Patient, requestID string) Event {
	return Event{Type: TypeAdmitted, PatientID: p.ID, Patient: p, OccurredAt: time.Now().UTC(), RequestID: requestID}
}

// Discharged builds the event for a removed patient.
func Discharged(p patient.Patient, requestID string) Event {
	return Event{Type: TypeDischarged, PatientID: p.ID, Patient: p, OccurredAt: time.Now().UTC(), RequestID: requestID}
}
