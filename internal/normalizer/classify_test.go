package normalizer

import (
	"testing"

	"ams-backend/internal/store"

	"github.com/stretchr/testify/assert"
)

func Test_Classify(t *testing.T) {
	cases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{
			name:     "combined status",
			event:    Event{"wifiStatus": "ON", "bluetoothStatus": "OFF", "screenBrightness": 30},
			expected: KindCombined,
		},
		{
			name:     "brightness beats wifi",
			event:    Event{"wifiStatus": "ON", "screenBrightness": 30},
			expected: KindBrightness,
		},
		{
			name:     "wifi beats bluetooth",
			event:    Event{"wifiStatus": "ON", "bluetoothStatus": "ON"},
			expected: KindWifi,
		},
		{
			name:     "bluetooth beats device status",
			event:    Event{"bluetoothStatus": "ON", "deviceName": "Buds", "status": "connected"},
			expected: KindBluetooth,
		},
		{
			name:     "device status needs both fields",
			event:    Event{"deviceName": "Buds", "status": "connected"},
			expected: KindDeviceStatus,
		},
		{
			name:     "device name alone",
			event:    Event{"deviceName": "Buds"},
			expected: KindUnrecognized,
		},
		{
			name:     "empty",
			event:    Event{},
			expected: KindUnrecognized,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.event))
		})
	}
}

func Test_records(t *testing.T) {
	cases := []struct {
		name     string
		event    Event
		expected []typed
	}{
		{
			name:  "combined without ssid skips wifi",
			event: Event{"wifiStatus": "ON", "bluetoothStatus": "OFF", "screenBrightness": 30},
			expected: []typed{
				{recordType: store.Bluetooth, payload: map[string]any{"bluetoothStatus": "OFF", "pairedDevicesCount": 0}},
				{recordType: store.Brightness, payload: map[string]any{"screenBrightness": 30}},
			},
		},
		{
			name:  "wifi ssid defaults to Unknown",
			event: Event{"wifiStatus": "OFF"},
			expected: []typed{
				{recordType: store.Wifi, payload: map[string]any{"wifiStatus": "OFF", "connectedSSID": "Unknown"}},
			},
		},
		{
			name: "bluetooth carries connected devices when reported",
			event: Event{
				"bluetoothStatus":       "ON",
				"pairedDevicesCount":    float64(3),
				"connectedDevicesCount": float64(1),
				"connectedDeviceNames":  []any{"Buds"},
			},
			expected: []typed{
				{recordType: store.Bluetooth, payload: map[string]any{
					"bluetoothStatus":       "ON",
					"pairedDevicesCount":    float64(3),
					"connectedDevicesCount": float64(1),
					"connectedDeviceNames":  []any{"Buds"},
				}},
			},
		},
		{
			name:  "device status",
			event: Event{"deviceName": "Buds", "status": "disconnected", "extra": true},
			expected: []typed{
				{recordType: store.DeviceStatus, payload: map[string]any{"deviceName": "Buds", "status": "disconnected"}},
			},
		},
		{
			name:     "unrecognized",
			event:    Event{"foo": "bar"},
			expected: nil,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, records(Classify(tt.event), tt.event))
		})
	}
}
