package status

import (
	"encoding/json"
	"net/http"

	"github.com/deepakmuvva99/transmitter/pkg/metrics"
	"github.com/deepakmuvva99/transmitter/pkg/store"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// These are the status API URL paths.
const (
	APIPathLivenessQuery  = "/health"
	APIPathReadinessQuery = "/ready"
	APIPathQueueQuery     = "/queue"
)

// API serves the status API. Progress of the pipeline is observable only
// through logs and the buffer/quarantine contents; /queue exposes the
// latter without shelling into the device.
type API struct {
	store        store.Store
	pendingDepth metrics.Gauge
	logger       log.Logger
}

// NewAPI creates a API with the correct dependencies.
func NewAPI(store store.Store, pendingDepth metrics.Gauge, logger log.Logger) *API {
	return &API{
		store:        store,
		pendingDepth: pendingDepth,
		logger:       logger,
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	iw := &interceptingWriter{http.StatusOK, w}
	w = iw

	// Routing table
	method, path := r.Method, r.URL.Path
	switch {
	case method == "GET" && path == APIPathLivenessQuery:
		a.handleLiveness(w, r)
	case method == "GET" && path == APIPathReadinessQuery:
		a.handleReadiness(w, r)
	case method == "GET" && path == APIPathQueueQuery:
		a.handleQueue(w, r)
	default:
		// Nothing found
		http.NotFound(w, r)
	}
}

func (a *API) handleLiveness(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(struct{}{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (a *API) handleReadiness(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(struct{}{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (a *API) handleQueue(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	pending, err := a.store.ListPending()
	if err != nil {
		level.Warn(a.logger).Log("handler", "queue", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	quarantined, err := a.store.Quarantined()
	if err != nil {
		level.Warn(a.logger).Log("handler", "queue", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	a.pendingDepth.Set(float64(len(pending)))

	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(struct {
		Pending     int `json:"pending"`
		Quarantined int `json:"quarantined"`
	}{
		Pending:     len(pending),
		Quarantined: len(quarantined),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type interceptingWriter struct {
	code int
	http.ResponseWriter
}

func (iw *interceptingWriter) WriteHeader(code int) {
	iw.code = code
	iw.ResponseWriter.WriteHeader(code)
}
