package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	k "ams-backend/internal/kafka"
	"ams-backend/internal/normalizer"
	"ams-backend/internal/worker"
)

var (
	ErrReadMessage  = errors.New("error reading message")
	ErrJSONParse    = errors.New("error parsing JSON")
	ErrIngestFailed = errors.New("error ingesting event")
)

type eventSink interface {
	Ingest(ctx context.Context, e normalizer.Event) (normalizer.Kind, error)
}

// Message is the part of an MQTT message the handler reads.
type Message interface {
	Topic() string
	Payload() []byte
}

type Config struct {
	Name string
	// Reader is only needed for the Kafka consume loop.
	Reader k.Reader
	Sink   eventSink
}

// Ingester feeds decoded device events to the normalizer, either from a
// Kafka consume loop or from MQTT subscription callbacks.
type Ingester struct {
	worker *worker.Worker
	reader k.Reader
	sink   eventSink
}

func New(cfg Config) *Ingester {
	ingester := &Ingester{
		reader: cfg.Reader,
		sink:   cfg.Sink,
	}
	name := cfg.Name
	if name == "" {
		name = "ingest-worker"
	}
	ingester.worker = worker.New(worker.Config{
		Name:      name,
		Processor: ingester,
	})
	return ingester
}

func (i *Ingester) Run(ctx context.Context) {
	i.worker.Run(ctx)
}

func (i *Ingester) Close(ctx context.Context) {
	slog.InfoContext(ctx, "Closing ingester resources...")
	if i.reader != nil {
		if err := i.reader.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing kafka reader", "error", err)
		}
	}
}

// Auto-commit active
func (i *Ingester) ProcessMessage(ctx context.Context) error {
	const fn = "Ingester:ProcessMessage"
	m, err := i.reader.ReadMessage(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrReadMessage, err)
	}
	if err := i.ingest(ctx, m.Value); err != nil {
		return fmt.Errorf("%s:%w", fn, err)
	}
	return nil
}

// HandleMessage is the MQTT subscription callback. Failures are logged; the
// normalizer has already recorded them.
func (i *Ingester) HandleMessage(ctx context.Context, msg Message) {
	if err := i.ingest(ctx, msg.Payload()); err != nil {
		slog.ErrorContext(ctx, "Error handling message", "topic", msg.Topic(), "error", err)
	}
}

func (i *Ingester) ingest(ctx context.Context, data []byte) error {
	var event normalizer.Event
	if err := json.Unmarshal(bytes.TrimSpace(data), &event); err != nil {
		return fmt.Errorf("%w:%w", ErrJSONParse, err)
	}
	if event == nil {
		return fmt.Errorf("%w:payload is not an object", ErrJSONParse)
	}
	if _, err := i.sink.Ingest(ctx, event); err != nil {
		return fmt.Errorf("%w:%w", ErrIngestFailed, err)
	}
	return nil
}
