package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ams_events_ingested_total",
			Help: "Inbound device events by classified kind.",
		},
		[]string{"kind"},
	)
	RecordsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ams_records_written_total",
			Help: "Records appended to the device table by record type.",
		},
		[]string{"type"},
	)
	IngestFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ams_ingest_failures_total",
			Help: "Inbound events that ended in the error path.",
		},
	)
	CommandsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ams_commands_published_total",
			Help: "Control messages accepted by the command channel by topic.",
		},
		[]string{"topic"},
	)
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ams_http_requests_total",
			Help: "HTTP requests by route, method, and status.",
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(EventsIngested, RecordsWritten, IngestFailures, CommandsPublished, requestCounter)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware counts requests by chi route pattern so path parameters do not
// explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := UnmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		requestCounter.WithLabelValues(route, r.Method, strconv.Itoa(rw.status)).Inc()
	})
}

// UnmatchedRoute labels requests no route pattern matched.
const UnmatchedRoute = "unmatched"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
