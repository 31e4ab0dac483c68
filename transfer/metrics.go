package transfer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Directions used as metric labels.
const (
	DirectionImport = "import"
	DirectionExport = "export"
)

// Metrics counts transfers and their duration.
type Metrics struct {
	transfers *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	skipped   *prometheus.CounterVec
}

// NewMetrics creates the transfer metrics and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drmgr",
			Name:      "transfers_total",
			Help:      "Design rule transfers by direction and result.",
		}, []string{"direction", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "drmgr",
			Name:      "transfer_duration_seconds",
			Help:      "Time spent on a design rule transfer.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"direction"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drmgr",
			Name:      "sections_skipped_total",
			Help:      "Selected sections absent from the source tree.",
		}, []string{"direction"}),
	}
	if reg != nil {
		reg.MustRegister(m.transfers, m.duration, m.skipped)
	}
	return m
}

func (m *Metrics) observe(direction string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.transfers.WithLabelValues(direction, result).Inc()
	m.duration.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}

func (m *Metrics) skip(direction string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.skipped.WithLabelValues(direction).Add(float64(n))
}
