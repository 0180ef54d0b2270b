// Package metrics exports deduplication statistics to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/arcvalue/internal/dedup"
)

const namespace = "arcvalue"

// Observer implements dedup.Observer with Prometheus collectors. It is
// safe for concurrent use.
type Observer struct {
	lookups   *prometheus.CounterVec
	distinct  *prometheus.GaugeVec
	estimated prometheus.Gauge
	documents prometheus.Gauge
	duration  prometheus.Histogram
}

var _ dedup.Observer = (*Observer)(nil)

// NewObserver creates an observer and registers its collectors with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "lookups_total",
			Help:      "Content-set lookups by shape and result.",
		}, []string{"shape", "result"}),
		distinct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "distinct_contents",
			Help:      "Distinct canonical contents registered in the session.",
		}, []string{"shape"}),
		estimated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "estimated_size_bytes",
			Help:      "Estimated bytes held by canonical contents.",
		}),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "documents",
			Help:      "Documents canonicalized by the session.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a dedup run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{o.lookups, o.distinct, o.estimated, o.documents, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return o, nil
}

func (o *Observer) Hit(shape dedup.Shape) {
	o.lookups.WithLabelValues(shape.String(), "hit").Inc()
}

func (o *Observer) Miss(shape dedup.Shape) {
	o.lookups.WithLabelValues(shape.String(), "miss").Inc()
}

// Snapshot sets the gauges from the current state of s.
func (o *Observer) Snapshot(s *dedup.Session) {
	st := s.Stats()
	for _, shape := range dedup.Shapes {
		o.distinct.WithLabelValues(shape.String()).Set(float64(st.Shape(shape).Distinct))
	}
	o.documents.Set(float64(st.Documents))
	o.estimated.Set(float64(s.EstimateSize()))
}

// ObserveRun records the duration of one run.
func (o *Observer) ObserveRun(d time.Duration) {
	o.duration.Observe(d.Seconds())
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
