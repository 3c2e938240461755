package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080"

func post(path string, body any) {
	payload, _ := json.Marshal(body)
	fmt.Println("POST", path, string(payload))
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	fmt.Println("  status:", resp.Status, "body:", string(out))
}

func get(path string) {
	resp, err := http.Get(baseURL + path)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	fmt.Println("GET", path, resp.Status)
	fmt.Println("  ", string(out))
}

func main() {
	now := time.Now().UnixMilli()

	// 1. Combined status report
	post("/events", map[string]any{
		"deviceId":           "device123",
		"timestamp":          now,
		"screenBrightness":   80,
		"wifiStatus":         "ON",
		"connectedSSID":      "Home",
		"bluetoothStatus":    "ON",
		"pairedDevicesCount": 2,
	})

	// 2. Individual brightness update
	post("/events", map[string]any{
		"deviceId":         "device123",
		"timestamp":        now + 1000,
		"screenBrightness": 55,
	})

	// 3. Read back
	get("/devices")
	get("/devices/device123")
	get("/devices/device123/history?type=BRIGHTNESS")

	// 4. Command
	post("/devices/device123/commands", map[string]any{
		"commandType": "SET_BRIGHTNESS",
		"parameters":  map[string]any{"brightness": 30},
	})
}
