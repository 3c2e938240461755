package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"ams-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

func newQuery(s store.Store) *Query {
	return New(Config{Store: s, Now: func() time.Time { return fixedNow }})
}

func put(t *testing.T, s store.Store, rt store.RecordType, ts string, payload map[string]any) {
	t.Helper()
	require.NoError(t, s.Put(context.Background(), store.Record{
		PartitionKey: "DEVICE#d1",
		SortKey:      store.SortKey(rt, ts),
		Timestamp:    ts,
		Payload:      payload,
	}))
}

func Test_DataType(t *testing.T) {
	cases := []struct {
		input    string
		expected store.RecordType
	}{
		{input: "wifi", expected: store.Wifi},
		{input: "Bluetooth", expected: store.Bluetooth},
		{input: "BRIGHTNESS", expected: store.Brightness},
		{input: "", expected: store.Brightness},
		{input: "RAW_EVENT", expected: store.Brightness},
	}
	for _, tt := range cases {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DataType(tt.input))
		})
	}
}

func Test_HistoryRoundTrip(t *testing.T) {
	mem := store.NewMemory()
	var expected []Point
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 12 {
		ts := store.FormatTimestamp(base.Add(time.Duration(i) * 90 * time.Minute))
		put(t, mem, store.Brightness, ts, map[string]any{"screenBrightness": float64(i * 5)})
		expected = append(expected, Point{Timestamp: ts, Value: ptr(float64(i * 5))})
	}
	put(t, mem, store.Wifi, "2025-03-01T01:00:00.000Z", map[string]any{"wifiStatus": "ON"})

	got, err := newQuery(mem).History(context.Background(), Request{
		DeviceID: "d1",
		DataType: "brightness",
		From:     expected[0].Timestamp,
		To:       expected[len(expected)-1].Timestamp,
	})
	require.NoError(t, err)
	assert.Equal(t, "BRIGHTNESS", got.DataType)
	assert.Equal(t, expected, got.Data)
}

func Test_History(t *testing.T) {
	mem := store.NewMemory()
	put(t, mem, store.Wifi, "2025-03-02T09:00:00.000Z", map[string]any{"wifiStatus": "ON", "connectedSSID": "Home"})
	put(t, mem, store.Wifi, "2025-03-02T10:00:00.000Z", map[string]any{})
	put(t, mem, store.Bluetooth, "2025-03-02T10:00:00.000Z", map[string]any{"bluetoothStatus": "ON", "pairedDevicesCount": float64(2)})
	put(t, mem, store.Bluetooth, "2025-03-02T11:00:00.000Z", map[string]any{})
	put(t, mem, store.Brightness, "2025-02-27T10:00:00.000Z", map[string]any{"screenBrightness": float64(10)})

	cases := []struct {
		name     string
		req      Request
		expected Result
	}{
		{
			name: "wifi with defaults over the last day",
			req:  Request{DeviceID: "d1", DataType: "WIFI"},
			expected: Result{
				DeviceID: "d1",
				DataType: "WIFI",
				From:     "2025-03-01T12:00:00.000Z",
				To:       "2025-03-02T12:00:00.000Z",
				Data: []Point{
					{Timestamp: "2025-03-02T09:00:00.000Z", Status: ptr("ON"), SSID: ptr("Home")},
					{Timestamp: "2025-03-02T10:00:00.000Z", Status: ptr("OFF"), SSID: ptr("Not connected")},
				},
			},
		},
		{
			name: "bluetooth",
			req:  Request{DeviceID: "d1", DataType: "bluetooth", From: "2025-03-02T00:00:00Z", To: "2025-03-02T23:59:59Z"},
			expected: Result{
				DeviceID: "d1",
				DataType: "BLUETOOTH",
				From:     "2025-03-02T00:00:00.000Z",
				To:       "2025-03-02T23:59:59.000Z",
				Data: []Point{
					{Timestamp: "2025-03-02T10:00:00.000Z", Status: ptr("ON"), PairedDevices: ptr(2)},
					{Timestamp: "2025-03-02T11:00:00.000Z", Status: ptr("OFF"), PairedDevices: ptr(0)},
				},
			},
		},
		{
			name: "brightness outside default window is empty",
			req:  Request{DeviceID: "d1"},
			expected: Result{
				DeviceID: "d1",
				DataType: "BRIGHTNESS",
				From:     "2025-03-01T12:00:00.000Z",
				To:       "2025-03-02T12:00:00.000Z",
				Data:     []Point{},
			},
		},
		{
			name: "unknown device is empty",
			req:  Request{DeviceID: "nope", DataType: "WIFI", From: "2025-01-01", To: "2026-01-01"},
			expected: Result{
				DeviceID: "nope",
				DataType: "WIFI",
				From:     "2025-01-01T00:00:00.000Z",
				To:       "2026-01-01T00:00:00.000Z",
				Data:     []Point{},
			},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newQuery(mem).History(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func Test_HistorySortsResults(t *testing.T) {
	s := store.NewMockStore(t)
	s.EXPECT().Query(mock.Anything, store.Query{
		PartitionKey: "DEVICE#d1",
		Condition:    store.SortKeyBetween("BRIGHTNESS#2025-03-01T12:00:00.000Z", "BRIGHTNESS#2025-03-02T12:00:00.000Z"),
	}).Return([]store.Record{
		{Timestamp: "2025-03-02T11:00:00.000Z", Payload: map[string]any{"screenBrightness": float64(3)}},
		{Timestamp: "2025-03-02T09:00:00.000Z", Payload: map[string]any{"screenBrightness": float64(1)}},
		{Timestamp: "2025-03-02T10:00:00.000Z", Payload: map[string]any{"screenBrightness": float64(2)}},
	}, nil)

	got, err := newQuery(s).History(context.Background(), Request{DeviceID: "d1"})
	require.NoError(t, err)
	var values []float64
	for _, p := range got.Data {
		values = append(values, *p.Value)
	}
	assert.Equal(t, []float64{1, 2, 3}, values)
}

func Test_HistoryErrors(t *testing.T) {
	cases := []struct {
		name        string
		req         Request
		setupStore  func() store.Store
		expectedErr error
	}{
		{
			name:        "bad from",
			req:         Request{DeviceID: "d1", From: "last week"},
			setupStore:  func() store.Store { return store.NewMockStore(t) },
			expectedErr: ErrInvalidRange,
		},
		{
			name:        "bad to",
			req:         Request{DeviceID: "d1", To: "2025-13-45"},
			setupStore:  func() store.Store { return store.NewMockStore(t) },
			expectedErr: ErrInvalidRange,
		},
		{
			name: "store failure",
			req:  Request{DeviceID: "d1"},
			setupStore: func() store.Store {
				s := store.NewMockStore(t)
				s.EXPECT().Query(mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
				return s
			},
			expectedErr: ErrQueryFailed,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newQuery(tt.setupStore()).History(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
