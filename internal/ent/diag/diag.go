// Package diag collects counters of dropped and produced rows for every
// stage of the pipeline. The counters can be saved in the Prometheus text
// format, suitable for the node exporter textfile collector.
package diag

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "phenogrid"

// Reasons for dropping data.
const (
	ReasonParse         = "parse"
	ReasonOutOfDomain   = "out_of_domain"
	ReasonNoRange       = "no_range"
	ReasonUnreadable    = "unreadable_range"
	ReasonInsufficient  = "insufficient_data"
	ReasonDuplicate     = "duplicate"
	ReasonNotOfInterest = "not_of_interest"
	ReasonOtherIndex    = "other_index"
	ReasonMissing       = "missing_value"
	ReasonNoData        = "no_data_filled"
	ReasonJoin          = "join"
	ReasonNoRichness    = "no_richness"
)

// Diag keeps pipeline counters in its own registry.
type Diag struct {
	reg      *prometheus.Registry
	dropped  *prometheus.CounterVec
	rows     *prometheus.GaugeVec
	duration *prometheus.GaugeVec
}

// New creates a Diag with an empty registry.
func New() *Diag {
	d := Diag{
		reg: prometheus.NewRegistry(),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_total",
				Help:      "Number of records dropped by stage and reason",
			},
			[]string{"stage", "reason"},
		),
		rows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rows",
				Help:      "Number of records produced by stage",
			},
			[]string{"stage"},
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent in a stage",
			},
			[]string{"stage"},
		),
	}
	d.reg.MustRegister(d.dropped, d.rows, d.duration)
	return &d
}

// Dropped adds n to the counter of records dropped by a stage.
func (d *Diag) Dropped(stage, reason string, n int) {
	if n <= 0 {
		return
	}
	d.dropped.WithLabelValues(stage, reason).Add(float64(n))
}

// Rows sets the number of records produced by a stage.
func (d *Diag) Rows(stage string, n int) {
	d.rows.WithLabelValues(stage).Set(float64(n))
}

// Duration sets time spent by a stage.
func (d *Diag) Duration(stage string, dur time.Duration) {
	d.duration.WithLabelValues(stage).Set(dur.Seconds())
}

// Registry gives access to collected metrics.
func (d *Diag) Registry() *prometheus.Registry {
	return d.reg
}

// WriteFile saves metrics to a file in the Prometheus text format.
func (d *Diag) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, d.reg)
}
