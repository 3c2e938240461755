package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ams-backend/internal/store"
)

const DefaultWindow = 24 * time.Hour

var (
	ErrInvalidRange = errors.New("invalid time range")
	ErrQueryFailed  = errors.New("history query failed")
)

// Request bounds are ISO-8601 strings; empty means the default window.
type Request struct {
	DeviceID string
	DataType string
	From     string
	To       string
}

// Point is one history sample. Only the fields of the requested data type
// are set.
type Point struct {
	Timestamp     string   `json:"timestamp"`
	Value         *float64 `json:"value,omitempty"`
	Status        *string  `json:"status,omitempty"`
	SSID          *string  `json:"ssid,omitempty"`
	PairedDevices *int     `json:"pairedDevices,omitempty"`
}

type Result struct {
	DeviceID string  `json:"deviceId"`
	DataType string  `json:"dataType"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Data     []Point `json:"data"`
}

type Config struct {
	Store store.Store
	Now   func() time.Time
}

type Query struct {
	store store.Store
	now   func() time.Time
}

func New(cfg Config) *Query {
	q := &Query{store: cfg.Store, now: cfg.Now}
	if q.now == nil {
		q.now = time.Now
	}
	return q
}

// DataType maps a requested type onto one of the history record types.
// Unknown or empty values select BRIGHTNESS.
func DataType(v string) store.RecordType {
	switch t := store.RecordType(strings.ToUpper(strings.TrimSpace(v))); t {
	case store.Brightness, store.Wifi, store.Bluetooth:
		return t
	default:
		return store.Brightness
	}
}

func (q *Query) History(ctx context.Context, req Request) (Result, error) {
	const fn = "History:History"
	dataType := DataType(req.DataType)
	now := q.now()
	from, err := bound(req.From, now.Add(-DefaultWindow))
	if err != nil {
		return Result{}, fmt.Errorf("%s:%w:from:%w", fn, ErrInvalidRange, err)
	}
	to, err := bound(req.To, now)
	if err != nil {
		return Result{}, fmt.Errorf("%s:%w:to:%w", fn, ErrInvalidRange, err)
	}

	recs, err := q.store.Query(ctx, store.Query{
		PartitionKey: store.DevicePartitionKey(req.DeviceID),
		Condition:    store.SortKeyBetween(store.SortKey(dataType, from), store.SortKey(dataType, to)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s:%w:%w", fn, ErrQueryFailed, err)
	}

	points := make([]Point, 0, len(recs))
	for _, rec := range recs {
		points = append(points, toPoint(dataType, rec))
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	return Result{
		DeviceID: req.DeviceID,
		DataType: string(dataType),
		From:     from,
		To:       to,
		Data:     points,
	}, nil
}

// bound re-encodes a bound in the sort key layout so the lexical range matches
// the chronological one.
func bound(v string, def time.Time) (string, error) {
	if strings.TrimSpace(v) == "" {
		return store.FormatTimestamp(def), nil
	}
	return store.NormalizeTimestamp(v)
}

func toPoint(t store.RecordType, rec store.Record) Point {
	p := Point{Timestamp: rec.Timestamp}
	switch t {
	case store.Brightness:
		p.Value = ptr(store.Number(rec.Payload[store.AttrScreenBrightness]))
	case store.Wifi:
		p.Status = ptr(stringOr(rec.Payload, store.AttrWifiStatus, "OFF"))
		p.SSID = ptr(stringOr(rec.Payload, store.AttrConnectedSSID, "Not connected"))
	case store.Bluetooth:
		p.Status = ptr(stringOr(rec.Payload, store.AttrBluetoothStatus, "OFF"))
		p.PairedDevices = ptr(int(store.Number(rec.Payload[store.AttrPairedDevicesCount])))
	}
	return p
}

func stringOr(payload map[string]any, field, def string) string {
	switch v := payload[field].(type) {
	case string:
		return v
	case nil:
		return def
	default:
		return fmt.Sprint(v)
	}
}

func ptr[T any](v T) *T {
	return &v
}
