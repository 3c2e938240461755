package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"ams-backend/internal/normalizer"

	"github.com/aws/aws-lambda-go/events"
)

var ErrBadRequest = errors.New("invalid proxy request")

type eventIngester interface {
	Ingest(ctx context.Context, e normalizer.Event) (normalizer.Kind, error)
}

// IngestResponse is what the ingestion trigger receives back.
type IngestResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// IngestHandler receives decoded device events straight from the broker rule
// that triggers the function.
type IngestHandler struct {
	ingester eventIngester
}

func NewIngestHandler(ingester eventIngester) *IngestHandler {
	return &IngestHandler{ingester: ingester}
}

// HandleRequest never returns an error; failures are reported in the
// response so the trigger does not redeliver.
func (h *IngestHandler) HandleRequest(ctx context.Context, event map[string]any) (resp IngestResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Panic while ingesting event", "panic", r)
			resp = IngestResponse{StatusCode: http.StatusInternalServerError, Body: fmt.Sprintf("Error: %v", r)}
			err = nil
		}
	}()
	kind, ierr := h.ingester.Ingest(ctx, normalizer.Event(event))
	if ierr != nil {
		return IngestResponse{StatusCode: http.StatusInternalServerError, Body: "Error: " + ierr.Error()}, nil
	}
	body := "Individual metric data processed successfully!"
	if kind == normalizer.KindCombined {
		body = "Combined device status data processed successfully!"
	}
	return IngestResponse{StatusCode: http.StatusOK, Body: body}, nil
}

// APIHandler serves API Gateway proxy events through an http.Handler.
type APIHandler struct {
	router http.Handler
}

func NewAPIHandler(router http.Handler) *APIHandler {
	return &APIHandler{router: router}
}

func (h *APIHandler) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	const fn = "Gateway:HandleRequest"
	httpReq, err := toHTTPRequest(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("%s:%w:%w", fn, ErrBadRequest, err)
	}
	w := newResponseBuffer()
	h.router.ServeHTTP(w, httpReq)
	return w.toProxyResponse(), nil
}

func toHTTPRequest(ctx context.Context, req events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, err
		}
		body = decoded
	}

	query := url.Values{}
	for k, vs := range req.MultiValueQueryStringParameters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	for k, v := range req.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query.Set(k, v)
		}
	}
	u := url.URL{Path: req.Path, RawQuery: query.Encode()}

	method := req.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, vs := range req.MultiValueHeaders {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, v := range req.Headers {
		if httpReq.Header.Get(k) == "" {
			httpReq.Header.Set(k, v)
		}
	}
	if ip := req.RequestContext.Identity.SourceIP; ip != "" {
		httpReq.RemoteAddr = ip
	}
	return httpReq, nil
}

type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *responseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *responseBuffer) toProxyResponse() events.APIGatewayProxyResponse {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(b.header))
	for k, vs := range b.header {
		headers[k] = strings.Join(vs, ",")
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           headers,
		MultiValueHeaders: map[string][]string(b.header),
		Body:              b.body.String(),
	}
}
