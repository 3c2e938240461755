package store

import (
	"errors"
	"strings"
	"time"
)

type RecordType string

const (
	RawEvent     RecordType = "RAW_EVENT"
	Wifi         RecordType = "WIFI"
	Bluetooth    RecordType = "BLUETOOTH"
	Brightness   RecordType = "BRIGHTNESS"
	DeviceStatus RecordType = "DEVICE_STATUS"
	Error        RecordType = "ERROR"
	// Event is only ever read: the directory scan still matches it for
	// records written by earlier firmware.
	Event RecordType = "EVENT"
)

// Partition key prefixes.
const (
	PrefixDevice = "DEVICE#"
	PrefixError  = "ERROR#"
)

// Attribute names of the record payloads. They match the field names the
// devices send so typed records can be read back without a mapping table.
const (
	AttrWifiStatus            = "wifiStatus"
	AttrConnectedSSID         = "connectedSSID"
	AttrBluetoothStatus       = "bluetoothStatus"
	AttrPairedDevicesCount    = "pairedDevicesCount"
	AttrConnectedDevicesCount = "connectedDevicesCount"
	AttrConnectedDeviceNames  = "connectedDeviceNames"
	AttrScreenBrightness      = "screenBrightness"
	AttrDeviceName            = "deviceName"
	AttrStatus                = "status"
	AttrRawData               = "raw_data"
	AttrErrorMessage          = "error_message"
	AttrEventData             = "event_data"
)

// TimestampLayout is the only encoding written into sort keys. It is fixed
// width and zero padded, so byte order of two sort keys of the same record
// type is also their chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Prefix returns the sort key prefix of the record type, e.g. "WIFI#".
func (t RecordType) Prefix() string {
	return string(t) + "#"
}

func DevicePartitionKey(deviceID string) string {
	return PrefixDevice + deviceID
}

func ErrorPartitionKey(id string) string {
	return PrefixError + id
}

func SortKey(t RecordType, timestamp string) string {
	return t.Prefix() + timestamp
}

// DeviceID extracts the device id from a DEVICE# partition key.
func DeviceID(partitionKey string) (string, bool) {
	if !strings.HasPrefix(partitionKey, PrefixDevice) {
		return "", false
	}
	id := strings.TrimPrefix(partitionKey, PrefixDevice)
	return id, id != ""
}

// TypeOf classifies a sort key by its record type prefix.
func TypeOf(sortKey string) (RecordType, bool) {
	i := strings.IndexByte(sortKey, '#')
	if i <= 0 {
		return "", false
	}
	return RecordType(sortKey[:i]), true
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MaxMillis is 9999-12-31T23:59:59.999Z, the last instant TimestampLayout
// encodes in four year digits.
const MaxMillis int64 = 253402300799999

// TimestampFromMillis converts a device supplied epoch-millisecond value.
// Values outside (0, MaxMillis] would break the fixed width of the layout and
// are rejected.
func TimestampFromMillis(ms int64) (string, bool) {
	if ms <= 0 || ms > MaxMillis {
		return "", false
	}
	return FormatTimestamp(time.UnixMilli(ms)), true
}

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 with or without a zone designator
// (trailing "Z" included). Values without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

// NormalizeTimestamp re-encodes a parseable ISO-8601 value in TimestampLayout.
func NormalizeTimestamp(s string) (string, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	return FormatTimestamp(t), nil
}
