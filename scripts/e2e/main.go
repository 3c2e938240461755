package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/segmentio/kafka-go"
)

// Steps:
// 1. Publish a combined report followed by individual updates for one device to device-events
// 2. Wait for the ingest worker to store them
// 3. Fetch the device status and compare against the expected snapshot
// 4. Fetch brightness history and check it is ascending and complete

const (
	deviceID = "e2e-device"
	baseURL  = "http://localhost:8080"
)

type snapshot struct {
	DeviceID string `json:"deviceId"`
	Wifi     struct {
		Status string `json:"status"`
		SSID   string `json:"ssid"`
	} `json:"wifi"`
	Bluetooth struct {
		Status        string `json:"status"`
		PairedDevices int    `json:"pairedDevices"`
	} `json:"bluetooth"`
	Screen struct {
		Brightness float64 `json:"brightness"`
	} `json:"screen"`
}

func main() {
	base := time.Now().Add(-time.Minute).UnixMilli()
	events := []map[string]any{
		{"deviceId": deviceID, "timestamp": base, "screenBrightness": 40, "wifiStatus": "ON", "connectedSSID": "Office", "bluetoothStatus": "OFF", "pairedDevicesCount": 1},
		{"deviceId": deviceID, "timestamp": base + 1000, "screenBrightness": 65},
		{"deviceId": deviceID, "timestamp": base + 2000, "wifiStatus": "OFF"},
		{"deviceId": deviceID, "timestamp": base + 3000, "bluetoothStatus": "ON", "pairedDevicesCount": 3},
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "device-events",
	})
	defer writer.Close()

	var messages []kafka.Message
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			panic(err)
		}
		messages = append(messages, kafka.Message{Key: []byte(deviceID), Value: value})
	}
	if err := writer.WriteMessages(context.TODO(), messages...); err != nil {
		panic(fmt.Errorf("failed to write messages: %w", err))
	}
	fmt.Printf("Published %d events to Kafka topic 'device-events'\n", len(messages))

	// Allow some time for the consumer to process events
	time.Sleep(10 * time.Second)

	var got snapshot
	fetch("/devices/"+deviceID, &got)
	fmt.Printf("Status: %+v\n", got)

	failed := false
	check := func(name string, want, have any) {
		if fmt.Sprint(want) != fmt.Sprint(have) {
			fmt.Printf("MISMATCH %s: expected %v, got %v\n", name, want, have)
			failed = true
		}
	}
	check("wifi.status", "OFF", got.Wifi.Status)
	check("wifi.ssid", "Unknown", got.Wifi.SSID)
	check("bluetooth.status", "ON", got.Bluetooth.Status)
	check("bluetooth.pairedDevices", 3, got.Bluetooth.PairedDevices)
	check("screen.brightness", 65, got.Screen.Brightness)

	var hist struct {
		Data []struct {
			Timestamp string  `json:"timestamp"`
			Value     float64 `json:"value"`
		} `json:"data"`
	}
	fetch("/devices/"+deviceID+"/history?type=BRIGHTNESS", &hist)
	check("history.len", 2, len(hist.Data))
	for i := 1; i < len(hist.Data); i++ {
		if hist.Data[i-1].Timestamp > hist.Data[i].Timestamp {
			fmt.Println("MISMATCH history order:", hist.Data[i-1].Timestamp, hist.Data[i].Timestamp)
			failed = true
		}
	}

	if failed {
		fmt.Println("E2E test failed")
		os.Exit(1)
	}
	fmt.Println("E2E test completed")
}

func fetch(path string, out any) {
	resp, err := http.Get(baseURL + path)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		panic(fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		panic(fmt.Errorf("GET %s: %w: %s", path, err, body))
	}
}
