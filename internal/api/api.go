package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"ams-backend/internal/commands"
	"ams-backend/internal/directory"
	"ams-backend/internal/history"
	"ams-backend/internal/metrics"
	"ams-backend/internal/normalizer"
	"ams-backend/internal/status"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	msgDeviceNotFound   = "Device not found"
	msgInvalidCommand   = "Invalid command type"
	msgInvalidBody      = "invalid request body"
	msgCombinedIngest   = "Combined device status data processed successfully!"
	msgIndividualIngest = "Individual metric data processed successfully!"
)

type statusReader interface {
	Status(ctx context.Context, deviceID string) (status.Snapshot, error)
}

type historyReader interface {
	History(ctx context.Context, req history.Request) (history.Result, error)
}

type deviceLister interface {
	List(ctx context.Context) (directory.Listing, error)
}

type commandDispatcher interface {
	Dispatch(ctx context.Context, req commands.Request) (commands.Result, error)
}

type eventIngester interface {
	Ingest(ctx context.Context, e normalizer.Event) (normalizer.Kind, error)
}

type Config struct {
	Status    statusReader
	History   historyReader
	Directory deviceLister
	Commands  commandDispatcher
	Ingester  eventIngester
}

type API struct {
	status    statusReader
	history   historyReader
	directory deviceLister
	commands  commandDispatcher
	ingester  eventIngester
}

func New(cfg Config) *API {
	return &API{
		status:    cfg.Status,
		history:   cfg.History,
		directory: cfg.Directory,
		commands:  cfg.Commands,
		ingester:  cfg.Ingester,
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoverJSON)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", a.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Post("/events", a.IngestEvent)
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", a.ListDevices)
		r.Get("/{deviceId}", a.GetDeviceStatus)
		r.Get("/{deviceId}/history", a.GetDeviceHistory)
		r.Post("/{deviceId}/commands", a.SendDeviceCommand)
	})
	return r
}

func (a *API) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	listing, err := a.directory.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (a *API) GetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	snap, err := a.status.Status(r.Context(), deviceID)
	if errors.Is(err, status.ErrDeviceNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msgDeviceNotFound})
		return
	}
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) GetDeviceHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := a.history.History(r.Context(), history.Request{
		DeviceID: chi.URLParam(r, "deviceId"),
		DataType: q.Get("type"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	if errors.Is(err, history.ErrInvalidRange) {
		writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) SendDeviceCommand(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}
	commandType := commands.Type(req.CommandType)
	if !commands.Valid(commandType) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidCommand})
		return
	}
	res, err := a.commands.Dispatch(r.Context(), commands.Request{
		DeviceID:   deviceID,
		Type:       commandType,
		Parameters: req.Parameters,
	})
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, CommandResponse{
		Success:   true,
		Message:   fmt.Sprintf("Command %s sent to device %s", commandType, deviceID),
		CommandID: res.CommandID,
	})
}

func (a *API) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var event normalizer.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}
	kind, err := a.ingester.Ingest(r.Context(), event)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Error: " + err.Error()})
		return
	}
	msg := msgIndividualIngest
	if kind == normalizer.KindCombined {
		msg = msgCombinedIngest
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// writeJSON sets the CORS header itself so every response carries it, not
// only those answering a request with an Origin header.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	slog.ErrorContext(ctx, "Request failed", "status", status, "error", err)
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "Handler panic", "panic", rec, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: fmt.Sprint(rec)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
