package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(err error, completed bool) *fakeToken {
	tok := &fakeToken{done: make(chan struct{}), err: err}
	if completed {
		close(tok.done)
	}
	return tok
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePaho struct {
	token      *fakeToken
	published  []published
	handlers   map[string]mqtt.MessageHandler
	disconnect uint
}

func (f *fakePaho) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	f.published = append(f.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return f.token
}

func (f *fakePaho) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	if f.handlers == nil {
		f.handlers = map[string]mqtt.MessageHandler{}
	}
	f.handlers[topic] = cb
	return f.token
}

func (f *fakePaho) Disconnect(quiesce uint) { f.disconnect = quiesce }

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func Test_Publish(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name        string
		ctx         context.Context
		token       *fakeToken
		expectedErr error
	}{
		{name: "acknowledged", ctx: context.Background(), token: newToken(nil, true)},
		{name: "broker error", ctx: context.Background(), token: newToken(errors.New("not authorized"), true), expectedErr: ErrPublishFailed},
		{name: "context done before ack", ctx: cancelled, token: newToken(nil, false), expectedErr: context.Canceled},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			paho := &fakePaho{token: tt.token}
			c := &Client{client: paho}
			err := c.Publish(tt.ctx, "AMS/wifi/control", 1, []byte(`{}`))
			assert.ErrorIs(t, err, tt.expectedErr)
			require.Len(t, paho.published, 1)
			assert.Equal(t, "AMS/wifi/control", paho.published[0].topic)
			assert.Equal(t, byte(1), paho.published[0].qos)
		})
	}
}

func Test_Subscribe(t *testing.T) {
	paho := &fakePaho{token: newToken(nil, true)}
	c := &Client{client: paho}

	var got []string
	err := c.Subscribe("AMS/monitor/#", 1, func(m Message) {
		got = append(got, m.Topic()+" "+string(m.Payload()))
	})
	require.NoError(t, err)
	paho.handlers["AMS/monitor/#"](nil, fakeMessage{topic: "AMS/monitor/wifi", payload: []byte(`{"wifiStatus":"ON"}`)})
	assert.Equal(t, []string{`AMS/monitor/wifi {"wifiStatus":"ON"}`}, got)

	paho.token = newToken(errors.New("denied"), true)
	err = c.Subscribe("AMS/#", 1, func(Message) {})
	assert.ErrorIs(t, err, ErrSubscribeFailed)
}

func Test_Close(t *testing.T) {
	paho := &fakePaho{}
	(&Client{client: paho}).Close()
	assert.Equal(t, uint(quiesceMillis), paho.disconnect)

	var nilClient *Client
	assert.NotPanics(t, nilClient.Close)
}
