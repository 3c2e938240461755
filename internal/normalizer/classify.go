package normalizer

import "ams-backend/internal/store"

// Inbound event field names not stored as typed attributes.
const (
	FieldDeviceID         = "deviceId"
	FieldTimestamp        = "timestamp"
	FieldIsControlRequest = "isControlRequest"
)

// Kind is the closed set of shapes an inbound event can take.
type Kind int

const (
	// KindUnrecognized events are archived as RAW_EVENT only.
	KindUnrecognized Kind = iota
	KindCombined
	KindBrightness
	KindWifi
	KindBluetooth
	KindDeviceStatus
)

func (k Kind) String() string {
	switch k {
	case KindCombined:
		return "combined"
	case KindBrightness:
		return "brightness"
	case KindWifi:
		return "wifi"
	case KindBluetooth:
		return "bluetooth"
	case KindDeviceStatus:
		return "device_status"
	default:
		return "unrecognized"
	}
}

// Event is a decoded inbound payload. Any subset of fields may be present.
type Event map[string]any

func (e Event) has(fields ...string) bool {
	for _, f := range fields {
		if _, ok := e[f]; !ok {
			return false
		}
	}
	return true
}

type rule struct {
	kind  Kind
	match func(Event) bool
}

// rules is evaluated in order; the first match wins. Combined must stay first.
var rules = []rule{
	{KindCombined, func(e Event) bool {
		return e.has(store.AttrWifiStatus, store.AttrBluetoothStatus, store.AttrScreenBrightness)
	}},
	{KindBrightness, func(e Event) bool { return e.has(store.AttrScreenBrightness) }},
	{KindWifi, func(e Event) bool { return e.has(store.AttrWifiStatus) }},
	{KindBluetooth, func(e Event) bool { return e.has(store.AttrBluetoothStatus) }},
	{KindDeviceStatus, func(e Event) bool { return e.has(store.AttrDeviceName, store.AttrStatus) }},
}

func Classify(e Event) Kind {
	for _, r := range rules {
		if r.match(e) {
			return r.kind
		}
	}
	return KindUnrecognized
}

// typed is one typed record to append, before keys are assigned.
type typed struct {
	recordType store.RecordType
	payload    map[string]any
}

// records maps a classified event to the typed records it produces.
func records(kind Kind, e Event) []typed {
	switch kind {
	case KindCombined:
		var out []typed
		if e.has(store.AttrWifiStatus, store.AttrConnectedSSID) {
			out = append(out, wifiRecord(e))
		}
		if e.has(store.AttrBluetoothStatus) {
			out = append(out, bluetoothRecord(e))
		}
		if e.has(store.AttrScreenBrightness) {
			out = append(out, brightnessRecord(e))
		}
		return out
	case KindBrightness:
		return []typed{brightnessRecord(e)}
	case KindWifi:
		return []typed{wifiRecord(e)}
	case KindBluetooth:
		return []typed{bluetoothRecord(e)}
	case KindDeviceStatus:
		return []typed{{
			recordType: store.DeviceStatus,
			payload: map[string]any{
				store.AttrDeviceName: e[store.AttrDeviceName],
				store.AttrStatus:     e[store.AttrStatus],
			},
		}}
	default:
		return nil
	}
}

func wifiRecord(e Event) typed {
	return typed{
		recordType: store.Wifi,
		payload: map[string]any{
			store.AttrWifiStatus:    e[store.AttrWifiStatus],
			store.AttrConnectedSSID: valueOr(e, store.AttrConnectedSSID, "Unknown"),
		},
	}
}

func bluetoothRecord(e Event) typed {
	p := map[string]any{
		store.AttrBluetoothStatus:    e[store.AttrBluetoothStatus],
		store.AttrPairedDevicesCount: valueOr(e, store.AttrPairedDevicesCount, 0),
	}
	for _, f := range []string{store.AttrConnectedDevicesCount, store.AttrConnectedDeviceNames} {
		if v, ok := e[f]; ok {
			p[f] = v
		}
	}
	return typed{recordType: store.Bluetooth, payload: p}
}

func brightnessRecord(e Event) typed {
	return typed{
		recordType: store.Brightness,
		payload:    map[string]any{store.AttrScreenBrightness: e[store.AttrScreenBrightness]},
	}
}

func valueOr(e Event, field string, def any) any {
	if v, ok := e[field]; ok {
		return v
	}
	return def
}
