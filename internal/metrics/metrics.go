package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetch_total", Help: "Data-source fetches by kind and whether the result was live or simulated"},
		[]string{"kind", "source"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signal requests by symbol and whether the result was live or frozen"},
		[]string{"symbol", "source"},
	)
	SignalScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "signal_score", Help: "Latest bias score per symbol and side"},
		[]string{"symbol", "side"},
	)
	RecorderErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "recorder_errors_total", Help: "Signal log writes that failed"},
	)
)

func init() {
	prometheus.MustRegister(FetchTotal, SignalsTotal, SignalScore, RecorderErrors)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
