package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ams-backend/internal/store"
)

// readTypes are the record types whose newest record feeds a snapshot.
// RAW_EVENT and DEVICE_STATUS only contribute lastUpdated; every ingested
// event writes a RAW_EVENT, so its newest record is normally the newest overall.
var readTypes = []store.RecordType{
	store.Wifi,
	store.Bluetooth,
	store.Brightness,
	store.RawEvent,
	store.DeviceStatus,
}

const (
	DefaultStatus = "Unknown"
	DefaultSSID   = "Not connected"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrQueryFailed    = errors.New("status query failed")
)

type Wifi struct {
	Status string `json:"status"`
	SSID   string `json:"ssid"`
}

type Bluetooth struct {
	Status               string   `json:"status"`
	PairedDevices        int      `json:"pairedDevices"`
	ConnectedDevices     int      `json:"connectedDevices"`
	ConnectedDeviceNames []string `json:"connectedDeviceNames"`
}

type Screen struct {
	Brightness float64 `json:"brightness"`
}

// Snapshot is the merged current view of one device.
type Snapshot struct {
	DeviceID    string    `json:"deviceId"`
	LastUpdated string    `json:"lastUpdated"`
	Wifi        Wifi      `json:"wifi"`
	Bluetooth   Bluetooth `json:"bluetooth"`
	Screen      Screen    `json:"screen"`
}

type Config struct {
	Store store.Store
}

type Aggregator struct {
	store store.Store
}

func New(cfg Config) *Aggregator {
	return &Aggregator{store: cfg.Store}
}

// Status reads the newest record of each metric type with one descending
// single-record query per sort key prefix. Sort keys group records by type,
// so a shared page would be filled by whichever types sort last.
func (a *Aggregator) Status(ctx context.Context, deviceID string) (Snapshot, error) {
	const fn = "Status:Status"
	pk := store.DevicePartitionKey(deviceID)

	latest := make(map[store.RecordType]*store.Record, len(readTypes))
	for _, t := range readTypes {
		recs, err := a.store.Query(ctx, store.Query{
			PartitionKey: pk,
			Condition:    store.SortKeyBeginsWith(t.Prefix()),
			Descending:   true,
			Limit:        1,
		})
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s:%w:%s:%w", fn, ErrQueryFailed, t, err)
		}
		if len(recs) > 0 {
			latest[t] = &recs[0]
		}
	}
	if len(latest) == 0 {
		return Snapshot{}, fmt.Errorf("%s:%w", fn, ErrDeviceNotFound)
	}
	slog.DebugContext(ctx, "Status records read", "device_id", deviceID, "types", len(latest))

	var lastUpdated string
	for _, rec := range latest {
		if rec.Timestamp > lastUpdated {
			lastUpdated = rec.Timestamp
		}
	}

	snap := Snapshot{
		DeviceID:    deviceID,
		LastUpdated: lastUpdated,
		Wifi:        Wifi{Status: DefaultStatus, SSID: DefaultSSID},
		Bluetooth:   Bluetooth{Status: DefaultStatus, ConnectedDeviceNames: []string{}},
	}
	if wifi := latest[store.Wifi]; wifi != nil {
		snap.Wifi.Status = stringOr(wifi.Payload[store.AttrWifiStatus], DefaultStatus)
		snap.Wifi.SSID = stringOr(wifi.Payload[store.AttrConnectedSSID], DefaultSSID)
	}
	if bluetooth := latest[store.Bluetooth]; bluetooth != nil {
		snap.Bluetooth.Status = stringOr(bluetooth.Payload[store.AttrBluetoothStatus], DefaultStatus)
		snap.Bluetooth.PairedDevices = int(store.Number(bluetooth.Payload[store.AttrPairedDevicesCount]))
		snap.Bluetooth.ConnectedDevices = int(store.Number(bluetooth.Payload[store.AttrConnectedDevicesCount]))
		snap.Bluetooth.ConnectedDeviceNames = names(bluetooth.Payload[store.AttrConnectedDeviceNames])
	}
	if brightness := latest[store.Brightness]; brightness != nil {
		snap.Screen.Brightness = store.Number(brightness.Payload[store.AttrScreenBrightness])
	}
	return snap, nil
}

func stringOr(v any, def string) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return def
	default:
		return fmt.Sprint(t)
	}
}

func names(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for _, n := range t {
			if s, ok := n.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
