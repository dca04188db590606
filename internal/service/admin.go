package service

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// StatsProvider is implemented by engines that can report a point-in-time
// snapshot of their size, letting the admin surface stay decoupled from
// any one engine's internals.
type StatsProvider interface {
	Stats() Stats
}

// Stats is the JSON body /stats returns.
type Stats struct {
	LiveKeys int64 `json:"liveKeys"`
	Garbage  int64 `json:"garbage"`
}

// AdminServer is an optional HTTP surface exposing liveness and coarse
// store statistics. It is observability, not a second data-plane API: no
// route here can set, get, or remove a key.
type AdminServer struct {
	addr   string
	log    *zap.SugaredLogger
	stats  StatsProvider
	server *http.Server
	ready  atomic.Bool
}

// NewAdminServer constructs an admin HTTP server bound to addr. stats may
// be nil, in which case /stats reports zero values.
func NewAdminServer(addr string, stats StatsProvider, log *zap.SugaredLogger) *AdminServer {
	a := &AdminServer{addr: addr, stats: stats, log: log}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", a.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)

	a.server = &http.Server{Addr: addr, Handler: router}
	return a
}

// ListenAndServe blocks serving admin requests until the server is closed.
func (a *AdminServer) ListenAndServe() error {
	a.ready.Store(true)
	a.log.Infow("admin surface listening", "addr", a.addr)

	err := a.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts down the admin HTTP server.
func (a *AdminServer) Close() error {
	return a.server.Close()
}

func (a *AdminServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !a.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (a *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats Stats
	if a.stats != nil {
		stats = a.stats.Stats()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
