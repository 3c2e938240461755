package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ams-backend/internal/metrics"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 15 * time.Second
	quiesceMillis  = 1000
)

var (
	ErrConnectFailed   = errors.New("mqtt connect failed")
	ErrPublishFailed   = errors.New("mqtt publish failed")
	ErrSubscribeFailed = errors.New("mqtt subscribe failed")
)

// Message is re-exported for handlers.
type Message = mqtt.Message

// pahoClient is the part of the paho client used here.
type pahoClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

type Config struct {
	BrokerURL string
	ClientID  string
}

type Client struct {
	client pahoClient
}

func Connect(cfg Config) (*Client, error) {
	const fn = "MQTT:Connect"
	opts := mqtt.NewClientOptions()
	url := strings.TrimSpace(cfg.BrokerURL)
	if url == "" {
		url = "tcp://localhost:1883"
	}
	if strings.HasPrefix(url, "mqtt://") {
		url = "tcp://" + strings.TrimPrefix(url, "mqtt://")
	}
	if strings.HasPrefix(url, "mqtts://") {
		url = "ssl://" + strings.TrimPrefix(url, "mqtts://")
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(url)
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		clientID = "ams-backend-" + time.Now().Format("150405.000")
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	}
	opts.OnConnect = func(_ mqtt.Client) {
		slog.Info("mqtt connected", "broker", url)
	}

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%s:%w:timed out after %s", fn, ErrConnectFailed, connectTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrConnectFailed, err)
	}
	return &Client{client: c}, nil
}

// Publish blocks until the broker acknowledges the message (qos 1) or the
// message has been written (qos 0), or until ctx is done.
func (c *Client) Publish(ctx context.Context, topic string, qos byte, payload []byte) error {
	const fn = "MQTT:Publish"
	tok := c.client.Publish(topic, qos, false, payload)
	select {
	case <-tok.Done():
	case <-ctx.Done():
		return fmt.Errorf("%s:%w:%w", fn, ErrPublishFailed, ctx.Err())
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrPublishFailed, err)
	}
	metrics.CommandsPublished.WithLabelValues(topic).Inc()
	slog.InfoContext(ctx, "Published control message", "topic", topic, "qos", qos)
	return nil
}

func (c *Client) Subscribe(topic string, qos byte, handler func(Message)) error {
	const fn = "MQTT:Subscribe"
	tok := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg)
	})
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrSubscribeFailed, err)
	}
	slog.Info("mqtt subscribed", "topic", topic)
	return nil
}

func (c *Client) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Disconnect(quiesceMillis)
}
