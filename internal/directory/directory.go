package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ams-backend/internal/store"
)

const DefaultUnifiedDeviceID = "android-device"

var ErrScanFailed = errors.New("directory scan failed")

// activityPrefixes select the records that count as device activity.
var activityPrefixes = []string{store.Event.Prefix(), store.RawEvent.Prefix()}

type Device struct {
	DeviceID string `json:"deviceId"`
	LastSeen string `json:"lastSeen"`
}

// ScanDebug describes a listing built from a table scan.
type ScanDebug struct {
	TotalDevices             int      `json:"total_devices"`
	ScanCompleted            bool     `json:"scan_completed"`
	UnifiedDevice            bool     `json:"unified_device"`
	OriginalDevicesFound     []string `json:"original_devices_found"`
	TotalTimestampsCollected int      `json:"total_timestamps_collected"`
	PagesScanned             int      `json:"pages_scanned"`
}

// FastPathDebug describes a listing that skipped the scan.
type FastPathDebug struct {
	TotalDevices  int  `json:"total_devices"`
	UnifiedDevice bool `json:"unified_device"`
	AlwaysOnline  bool `json:"always_online"`
}

type Listing struct {
	Devices   []Device `json:"devices"`
	Timestamp string   `json:"timestamp"`
	// Debug is a ScanDebug or a FastPathDebug.
	Debug any `json:"debug"`
}

type Config struct {
	Store store.Store
	// UnifiedDeviceMode reports every physical device as one logical device.
	UnifiedDeviceMode bool
	// FastPath skips the scan and reports the unified device as seen now.
	FastPath        bool
	UnifiedDeviceID string
	ScanPageSize    int
	Now             func() time.Time
}

type Directory struct {
	store           store.Store
	unified         bool
	fastPath        bool
	unifiedDeviceID string
	scanPageSize    int
	now             func() time.Time
}

func New(cfg Config) *Directory {
	d := &Directory{
		store:           cfg.Store,
		unified:         cfg.UnifiedDeviceMode,
		fastPath:        cfg.FastPath,
		unifiedDeviceID: cfg.UnifiedDeviceID,
		scanPageSize:    cfg.ScanPageSize,
		now:             cfg.Now,
	}
	if d.unifiedDeviceID == "" {
		d.unifiedDeviceID = DefaultUnifiedDeviceID
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

func (d *Directory) List(ctx context.Context) (Listing, error) {
	const fn = "Directory:List"
	now := store.FormatTimestamp(d.now())
	if d.fastPath {
		return Listing{
			Devices:   []Device{{DeviceID: d.unifiedDeviceID, LastSeen: now}},
			Timestamp: now,
			Debug:     FastPathDebug{TotalDevices: 1, UnifiedDevice: true, AlwaysOnline: true},
		}, nil
	}

	seen := map[string]time.Time{}
	var collected int
	pages, err := store.ScanAll(ctx, d.store, store.ScanInput{
		Prefixes: activityPrefixes,
		KeysOnly: true,
		Limit:    d.scanPageSize,
	}, func(rec store.Record) {
		deviceID, ok := store.DeviceID(rec.PartitionKey)
		if !ok || rec.Timestamp == "" {
			return
		}
		ts, err := store.ParseTimestamp(rec.Timestamp)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unparseable timestamp",
				"device_id", deviceID,
				"sort_key", rec.SortKey,
				"timestamp", rec.Timestamp,
			)
			return
		}
		collected++
		if last, ok := seen[deviceID]; !ok || ts.After(last) {
			seen[deviceID] = ts
		}
	})
	if err != nil {
		return Listing{}, fmt.Errorf("%s:%w:%w", fn, ErrScanFailed, err)
	}

	found := make([]string, 0, len(seen))
	for id := range seen {
		found = append(found, id)
	}
	sort.Strings(found)

	var devices []Device
	if d.unified {
		devices = []Device{{DeviceID: d.unifiedDeviceID, LastSeen: latest(seen, now)}}
	} else {
		devices = make([]Device, 0, len(found))
		for _, id := range found {
			devices = append(devices, Device{DeviceID: id, LastSeen: store.FormatTimestamp(seen[id])})
		}
	}
	slog.InfoContext(ctx, "Directory scan completed",
		"devices_found", len(found),
		"timestamps_collected", collected,
		"pages", pages,
	)

	return Listing{
		Devices:   devices,
		Timestamp: now,
		Debug: ScanDebug{
			TotalDevices:             len(devices),
			ScanCompleted:            true,
			UnifiedDevice:            d.unified,
			OriginalDevicesFound:     found,
			TotalTimestampsCollected: collected,
			PagesScanned:             pages,
		},
	}, nil
}

// latest returns the newest last-seen time, or fallback when nothing was seen.
func latest(seen map[string]time.Time, fallback string) string {
	var newest time.Time
	for _, ts := range seen {
		if ts.After(newest) {
			newest = ts
		}
	}
	if newest.IsZero() {
		return fallback
	}
	return store.FormatTimestamp(newest)
}
