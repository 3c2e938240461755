package kafka

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"
)

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	_ Reader = (*kafka.Reader)(nil)
	_ Writer = (*kafka.Writer)(nil)
)

type ReaderConfig struct {
	Brokers         []string
	ConsumerGroupID string
	Topic           string
}

// NewReader returns a consumer group reader with auto-commit.
func NewReader(cfg ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.ConsumerGroupID,
		Topic:   TopicName(cfg.Topic),
	})
}

// NewWriter returns a writer without a fixed topic; each message names its own.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// TopicName maps an MQTT style topic ("AMS/wifi/control") to a legal Kafka
// topic ("AMS.wifi.control").
func TopicName(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}
