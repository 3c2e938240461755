package directory

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

const nowTS = "2025-03-02T12:00:00.000Z"

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	recs := []store.Record{
		{PartitionKey: "DEVICE#d1", SortKey: "RAW_EVENT#2025-03-01T10:00:00.000Z", Timestamp: "2025-03-01T10:00:00.000Z"},
		{PartitionKey: "DEVICE#d1", SortKey: "RAW_EVENT#2025-03-01T11:00:00.000Z", Timestamp: "2025-03-01T11:00:00.000Z"},
		{PartitionKey: "DEVICE#d1", SortKey: "WIFI#2025-03-02T11:00:00.000Z", Timestamp: "2025-03-02T11:00:00.000Z"},
		{PartitionKey: "DEVICE#d2", SortKey: "EVENT#2025-03-01T12:30:00Z", Timestamp: "2025-03-01T12:30:00Z"},
		{PartitionKey: "DEVICE#d3", SortKey: "RAW_EVENT#garbage", Timestamp: "garbage"},
		{PartitionKey: "ERROR#x", SortKey: "RAW_EVENT#2025-03-02T00:00:00.000Z", Timestamp: "2025-03-02T00:00:00.000Z"},
	}
	for _, r := range recs {
		require.NoError(t, mem.Put(context.Background(), r))
	}
	return mem
}

func Test_List(t *testing.T) {
	cases := []struct {
		name     string
		store    func(*testing.T) store.Store
		cfg      Config
		expected Listing
	}{
		{
			name:  "unified device takes the newest activity",
			store: func(t *testing.T) store.Store { return seeded(t) },
			cfg:   Config{UnifiedDeviceMode: true, ScanPageSize: 2},
			expected: Listing{
				Devices:   []Device{{DeviceID: "android-device", LastSeen: "2025-03-01T12:30:00.000Z"}},
				Timestamp: nowTS,
				Debug: ScanDebug{
					TotalDevices:             1,
					ScanCompleted:            true,
					UnifiedDevice:            true,
					OriginalDevicesFound:     []string{"d1", "d2"},
					TotalTimestampsCollected: 3,
					PagesScanned:             3,
				},
			},
		},
		{
			name:  "one entry per device",
			store: func(t *testing.T) store.Store { return seeded(t) },
			cfg:   Config{ScanPageSize: 100},
			expected: Listing{
				Devices: []Device{
					{DeviceID: "d1", LastSeen: "2025-03-01T11:00:00.000Z"},
					{DeviceID: "d2", LastSeen: "2025-03-01T12:30:00.000Z"},
				},
				Timestamp: nowTS,
				Debug: ScanDebug{
					TotalDevices:             2,
					ScanCompleted:            true,
					OriginalDevicesFound:     []string{"d1", "d2"},
					TotalTimestampsCollected: 3,
					PagesScanned:             1,
				},
			},
		},
		{
			name:  "empty table reports the unified device as seen now",
			store: func(*testing.T) store.Store { return store.NewMemory() },
			cfg:   Config{UnifiedDeviceMode: true},
			expected: Listing{
				Devices:   []Device{{DeviceID: "android-device", LastSeen: nowTS}},
				Timestamp: nowTS,
				Debug: ScanDebug{
					TotalDevices:         1,
					ScanCompleted:        true,
					UnifiedDevice:        true,
					OriginalDevicesFound: []string{},
					PagesScanned:         1,
				},
			},
		},
		{
			name:  "fast path skips the scan",
			store: func(t *testing.T) store.Store { return store.NewMockStore(t) },
			cfg:   Config{UnifiedDeviceMode: true, FastPath: true, UnifiedDeviceID: "phone"},
			expected: Listing{
				Devices:   []Device{{DeviceID: "phone", LastSeen: nowTS}},
				Timestamp: nowTS,
				Debug:     FastPathDebug{TotalDevices: 1, UnifiedDevice: true, AlwaysOnline: true},
			},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Store = tt.store(t)
			cfg.Now = func() time.Time { return fixedNow }
			got, err := New(cfg).List(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func Test_ListScanInput(t *testing.T) {
	s := store.NewMockStore(t)
	s.EXPECT().Scan(mock.Anything, store.ScanInput{
		Prefixes: []string{"EVENT#", "RAW_EVENT#"},
		KeysOnly: true,
		Limit:    50,
	}).Return(store.ScanPage{NextToken: "next"}, nil).Once()
	s.EXPECT().Scan(mock.Anything, store.ScanInput{
		Prefixes: []string{"EVENT#", "RAW_EVENT#"},
		KeysOnly: true,
		Limit:    50,
		Token:    "next",
	}).Return(store.ScanPage{}, errors.New("throttled")).Once()

	_, err := New(Config{Store: s, ScanPageSize: 50}).List(context.Background())
	assert.ErrorIs(t, err, ErrScanFailed)
}
