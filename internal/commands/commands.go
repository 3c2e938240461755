package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ams-backend/internal/channel"
	"ams-backend/internal/store"

	"github.com/google/uuid"
)

type Type string

const (
	SetBrightness   Type = "SET_BRIGHTNESS"
	ToggleWifi      Type = "TOGGLE_WIFI"
	ToggleBluetooth Type = "TOGGLE_BLUETOOTH"
)

var (
	ErrInvalidCommand = errors.New("invalid command type")
	ErrEncodeFailed   = errors.New("command encode failed")
	ErrPublishFailed  = errors.New("command publish failed")
)

// binding ties a command type to its topic and the one field it carries.
type binding struct {
	topic     string
	field     string
	param     string
	defaultTo any
}

var bindings = map[Type]binding{
	SetBrightness:   {topic: channel.TopicBrightnessControl, field: store.AttrScreenBrightness, param: "brightness", defaultTo: 50},
	ToggleWifi:      {topic: channel.TopicWifiControl, field: store.AttrWifiStatus, param: "status", defaultTo: "ON"},
	ToggleBluetooth: {topic: channel.TopicBluetoothControl, field: store.AttrBluetoothStatus, param: "status", defaultTo: "ON"},
}

type Request struct {
	DeviceID   string
	Type       Type
	Parameters map[string]any
}

type Result struct {
	CommandID string
	Topic     string
}

type Config struct {
	Publisher channel.Publisher
	Now       func() time.Time
	NewID     func() string
}

// Dispatcher publishes control commands without waiting for the device.
type Dispatcher struct {
	publisher channel.Publisher
	now       func() time.Time
	newID     func() string
}

func New(cfg Config) *Dispatcher {
	d := &Dispatcher{publisher: cfg.Publisher, now: cfg.Now, newID: cfg.NewID}
	if d.now == nil {
		d.now = time.Now
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	return d
}

func Valid(t Type) bool {
	_, ok := bindings[t]
	return ok
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	const fn = "Commands:Dispatch"
	b, ok := bindings[req.Type]
	if !ok {
		return Result{}, fmt.Errorf("%s:%w:%q", fn, ErrInvalidCommand, req.Type)
	}
	value := b.defaultTo
	if v, ok := req.Parameters[b.param]; ok && v != nil {
		value = v
	}
	commandID := d.newID()
	payload, err := json.Marshal(map[string]any{
		"deviceId":  req.DeviceID,
		"commandId": commandID,
		"timestamp": store.FormatTimestamp(d.now()),
		"type":      string(req.Type),
		b.field:     value,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s:%w:%w", fn, ErrEncodeFailed, err)
	}
	if err := d.publisher.Publish(ctx, b.topic, channel.QoSAtLeastOnce, payload); err != nil {
		return Result{}, fmt.Errorf("%s:%w:%w", fn, ErrPublishFailed, err)
	}
	slog.InfoContext(ctx, "Command sent",
		"device_id", req.DeviceID,
		"command_id", commandID,
		"type", req.Type,
		"topic", b.topic,
	)
	return Result{CommandID: commandID, Topic: b.topic}, nil
}
