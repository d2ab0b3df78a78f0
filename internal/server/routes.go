package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quranlabs/murattil/internal/health"
)

// NewMux assembles the server's HTTP routes: the WebSocket session
// endpoint at /ws, Prometheus metrics at /metrics and the health probes
// registered by h.
func NewMux(g *Gateway, h *health.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", g)
	mux.Handle("/metrics", promhttp.Handler())
	h.Register(mux)
	return mux
}
