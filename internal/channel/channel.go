package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	k "ams-backend/internal/kafka" // alias to avoid name conflict
	"ams-backend/internal/metrics"

	"github.com/segmentio/kafka-go"
)

// Control topics the devices subscribe to.
const (
	TopicBrightnessControl = "AMS/brightness/control"
	TopicWifiControl       = "AMS/wifi/control"
	TopicBluetoothControl  = "AMS/bluetooth/control"
)

// Delivery guarantees understood by Publish.
const (
	QoSAtMostOnce  byte = 0
	QoSAtLeastOnce byte = 1
)

var ErrPublishFailed = errors.New("publish failed")

// Publisher is the outbound side of the command channel. A nil error means
// the channel accepted the message, not that a device applied it.
type Publisher interface {
	Publish(ctx context.Context, topic string, qos byte, payload []byte) error
}

// KafkaPublisher writes control messages to Kafka topics derived from the
// channel topic names. Writer acknowledgement settings apply regardless of qos.
type KafkaPublisher struct {
	writer k.Writer
}

var _ Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer k.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, qos byte, payload []byte) error {
	const fn = "KafkaPublisher:Publish"
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: k.TopicName(topic),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrPublishFailed, err)
	}
	metrics.CommandsPublished.WithLabelValues(topic).Inc()
	slog.InfoContext(ctx, "Published control message", "topic", topic, "qos", qos)
	return nil
}

func (p *KafkaPublisher) Close(ctx context.Context) {
	slog.InfoContext(ctx, "Closing kafka publisher...")
	if err := p.writer.Close(); err != nil {
		slog.ErrorContext(ctx, "Error closing kafka writer", "error", err)
	}
}
