package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	SummariesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "summaries_total", Help: "Summary rows persisted"},
		[]string{"symbol", "kind"},
	)
	ScanErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scan_errors_total", Help: "Window scans aborted by I/O or parse errors"},
		[]string{"symbol"},
	)
	DroppedTicks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "dropped_ticks_total", Help: "Ticks for untracked symbols"},
	)
	FeedErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "feed_errors_total", Help: "Error payloads received from the feed"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, SummariesTotal, ScanErrors, DroppedTicks, FeedErrors)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
