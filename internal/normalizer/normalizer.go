package normalizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"ams-backend/internal/channel"
	"ams-backend/internal/metrics"
	"ams-backend/internal/store"

	"github.com/google/uuid"
)

const DefaultDeviceID = "android-device"

var (
	ErrWriteFailed   = errors.New("record write failed")
	ErrEncodeFailed  = errors.New("event encode failed")
	ErrPublishFailed = errors.New("control publish failed")
)

type Config struct {
	Store     store.Store
	Publisher channel.Publisher
	// DefaultDeviceID is used for events without a deviceId.
	DefaultDeviceID string
	Now             func() time.Time
	NewID           func() string
}

// Normalizer turns inbound device events into typed records under the
// device's partition. It keeps no state between events.
type Normalizer struct {
	store           store.Store
	publisher       channel.Publisher
	defaultDeviceID string
	now             func() time.Time
	newID           func() string
}

func New(cfg Config) *Normalizer {
	n := &Normalizer{
		store:           cfg.Store,
		publisher:       cfg.Publisher,
		defaultDeviceID: cfg.DefaultDeviceID,
		now:             cfg.Now,
		newID:           cfg.NewID,
	}
	if n.defaultDeviceID == "" {
		n.defaultDeviceID = DefaultDeviceID
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.newID == nil {
		n.newID = uuid.NewString
	}
	return n
}

// Ingest archives the event as RAW_EVENT, then writes the typed records its
// classification calls for. On failure a best-effort ERROR record is written
// and the original error is returned.
func (n *Normalizer) Ingest(ctx context.Context, e Event) (Kind, error) {
	kind, err := n.ingest(ctx, e)
	if err != nil {
		metrics.IngestFailures.Inc()
		n.recordFailure(ctx, e, err)
		return kind, err
	}
	metrics.EventsIngested.WithLabelValues(kind.String()).Inc()
	return kind, nil
}

func (n *Normalizer) ingest(ctx context.Context, e Event) (Kind, error) {
	const fn = "Normalizer:Ingest"
	deviceID := n.deviceID(e)
	timestamp := n.timestamp(e)
	pk := store.DevicePartitionKey(deviceID)

	raw, err := json.Marshal(e)
	if err != nil {
		return KindUnrecognized, fmt.Errorf("%s:%w:%w", fn, ErrEncodeFailed, err)
	}
	if err := n.put(ctx, pk, store.RawEvent, timestamp, map[string]any{store.AttrRawData: string(raw)}); err != nil {
		return KindUnrecognized, fmt.Errorf("%s:%w", fn, err)
	}

	kind := Classify(e)
	for _, rec := range records(kind, e) {
		if err := n.put(ctx, pk, rec.recordType, timestamp, rec.payload); err != nil {
			return kind, fmt.Errorf("%s:%w", fn, err)
		}
	}
	slog.InfoContext(ctx, "Event processed", "device_id", deviceID, "kind", kind.String(), "timestamp", timestamp)

	if kind == KindBrightness && isControlRequest(e) {
		if err := n.forwardBrightness(ctx, e); err != nil {
			return kind, fmt.Errorf("%s:%w", fn, err)
		}
	}
	return kind, nil
}

func (n *Normalizer) put(ctx context.Context, pk string, t store.RecordType, timestamp string, payload map[string]any) error {
	err := n.store.Put(ctx, store.Record{
		PartitionKey: pk,
		SortKey:      store.SortKey(t, timestamp),
		Timestamp:    timestamp,
		Payload:      payload,
	})
	if err != nil {
		return fmt.Errorf("%w:%s:%w", ErrWriteFailed, t, err)
	}
	metrics.RecordsWritten.WithLabelValues(string(t)).Inc()
	return nil
}

func (n *Normalizer) forwardBrightness(ctx context.Context, e Event) error {
	if n.publisher == nil {
		return fmt.Errorf("%w:no command channel configured", ErrPublishFailed)
	}
	payload, err := json.Marshal(map[string]any{store.AttrScreenBrightness: e[store.AttrScreenBrightness]})
	if err != nil {
		return fmt.Errorf("%w:%w", ErrEncodeFailed, err)
	}
	slog.InfoContext(ctx, "Forwarding brightness control request", "screen_brightness", e[store.AttrScreenBrightness])
	if err := n.publisher.Publish(ctx, channel.TopicBrightnessControl, channel.QoSAtLeastOnce, payload); err != nil {
		return fmt.Errorf("%w:%w", ErrPublishFailed, err)
	}
	return nil
}

// recordFailure never returns an error; a failed ERROR write is only logged.
func (n *Normalizer) recordFailure(ctx context.Context, e Event, cause error) {
	eventData, _ := json.Marshal(e)
	slog.ErrorContext(ctx, "Error processing event", "error", cause, "event", string(eventData))

	err := n.store.Put(ctx, store.Record{
		PartitionKey: store.ErrorPartitionKey(n.newID()),
		SortKey:      store.SortKey(store.Error, store.FormatTimestamp(n.now())),
		Payload: map[string]any{
			store.AttrErrorMessage: cause.Error(),
			store.AttrEventData:    string(eventData),
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to save error record", "error", err)
	}
}

// deviceID formats any non-empty scalar id, so a numeric 123 lands in
// DEVICE#123.
func (n *Normalizer) deviceID(e Event) string {
	switch v := e[FieldDeviceID].(type) {
	case nil, map[string]any, []any:
		return n.defaultDeviceID
	case string:
		if v == "" {
			return n.defaultDeviceID
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// timestamp prefers the device supplied epoch milliseconds. Zero, non-numeric
// and out of range values fall back to the normalizer's clock.
func (n *Normalizer) timestamp(e Event) string {
	if ms, ok := millis(e[FieldTimestamp]); ok {
		if ts, ok := store.TimestampFromMillis(ms); ok {
			return ts
		}
		if ms != 0 {
			slog.Warn("Ignoring out of range device timestamp", "timestamp", ms)
		}
	}
	return store.FormatTimestamp(n.now())
}

func millis(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	default:
		return 0, false
	}
}

func isControlRequest(e Event) bool {
	b, _ := e[FieldIsControlRequest].(bool)
	return b
}
