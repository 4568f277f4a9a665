package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minireact"

// Result labels for processed files.
const (
	ResultWritten   = "written"
	ResultUnchanged = "unchanged"
	ResultFailed    = "failed"
	ResultRemoved   = "removed"
)

// Recorder tracks per-file outcomes on its own registry so several
// recorders can coexist in one process.
type Recorder struct {
	registry *prometheus.Registry

	Files    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Bytes    prometheus.Counter
	Tracked  prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files processed, by asset kind and result.",
		}, []string{"kind", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent transforming or copying one file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "written_bytes_total",
			Help:      "Bytes written to the destination tree.",
		}),
		Tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_files",
			Help:      "Source files currently known to the transpiler.",
		}),
	}

	r.registry.MustRegister(r.Files, r.Duration, r.Bytes, r.Tracked)
	return r
}

// Observe records one processed file.
func (r *Recorder) Observe(kind, result string, bytes int64, elapsed time.Duration) {
	r.Files.WithLabelValues(kind, result).Inc()
	r.Duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if result == ResultWritten && bytes > 0 {
		r.Bytes.Add(float64(bytes))
	}
}

func (r *Recorder) SetTracked(n int) {
	r.Tracked.Set(float64(n))
}

// Handler serves the scrape endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
