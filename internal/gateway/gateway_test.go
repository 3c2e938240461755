package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"testing"

	"ams-backend/internal/normalizer"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	kind  normalizer.Kind
	err   error
	panic bool
	got   normalizer.Event
}

func (f *fakeIngester) Ingest(_ context.Context, e normalizer.Event) (normalizer.Kind, error) {
	if f.panic {
		panic("boom")
	}
	f.got = e
	return f.kind, f.err
}

func Test_IngestHandler(t *testing.T) {
	cases := []struct {
		name     string
		ingester *fakeIngester
		expected IngestResponse
	}{
		{
			name:     "combined",
			ingester: &fakeIngester{kind: normalizer.KindCombined},
			expected: IngestResponse{StatusCode: 200, Body: "Combined device status data processed successfully!"},
		},
		{
			name:     "individual",
			ingester: &fakeIngester{kind: normalizer.KindWifi},
			expected: IngestResponse{StatusCode: 200, Body: "Individual metric data processed successfully!"},
		},
		{
			name:     "failure",
			ingester: &fakeIngester{err: errors.New("throttled")},
			expected: IngestResponse{StatusCode: 500, Body: "Error: throttled"},
		},
		{
			name:     "panic",
			ingester: &fakeIngester{panic: true},
			expected: IngestResponse{StatusCode: 500, Body: "Error: boom"},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewIngestHandler(tt.ingester).HandleRequest(context.Background(), map[string]any{"wifiStatus": "ON"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp)
		})
	}
}

func Test_APIHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/devices/{deviceId}/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chi.URLParam(r, "deviceId") + "|" + r.URL.Query().Get("type") + "|" + r.Header.Get("X-Api-Key")))
	})
	r.Post("/devices/{deviceId}/commands", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(body)
	})
	h := NewAPIHandler(r)

	cases := []struct {
		name           string
		req            events.APIGatewayProxyRequest
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "path, query and headers",
			req: events.APIGatewayProxyRequest{
				HTTPMethod:            http.MethodGet,
				Path:                  "/devices/d1/history",
				QueryStringParameters: map[string]string{"type": "WIFI"},
				Headers:               map[string]string{"X-Api-Key": "k"},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "d1|WIFI|k",
		},
		{
			name: "base64 body",
			req: events.APIGatewayProxyRequest{
				HTTPMethod:      http.MethodPost,
				Path:            "/devices/d1/commands",
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"commandType":"TOGGLE_WIFI"}`)),
				IsBase64Encoded: true,
			},
			expectedStatus: http.StatusAccepted,
			expectedBody:   `{"commandType":"TOGGLE_WIFI"}`,
		},
		{
			name:           "unknown route",
			req:            events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/nope"},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.HandleRequest(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, resp.Body)
			}
		})
	}

	_, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/devices/d1/commands",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	assert.ErrorIs(t, err, ErrBadRequest)
}
