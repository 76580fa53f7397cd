// Package httpapi serves a read-only view of the watchface: health, the
// current frame and the exchange journal.
package httpapi

import (
	"net/http"
	"time"
)

func NewMux(deps Deps) *http.ServeMux {
	h := &api{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /api/v1/display", h.handleDisplay)
	mux.HandleFunc("GET /api/v1/exchanges", h.handleExchanges)
	mux.HandleFunc("GET /api/v1/exchanges/stats", h.handleExchangeStats)
	return mux
}

func NewServer(addr string, deps Deps) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           requestLogger(deps.Logger, recoverer(deps.Logger, NewMux(deps))),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
