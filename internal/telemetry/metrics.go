// SPDX-License-Identifier: MIT

package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/hdfe/demean"
)

const namespace = "hdfe"

// Metrics holds the estimation collectors. It implements demean.Observer.
type Metrics struct {
	DemeanSweeps       prometheus.Histogram
	DemeanNotConverged prometheus.Counter
	Fits               *prometheus.CounterVec
	CollinearDropped   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg (nil skips
// registration).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DemeanSweeps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "demean",
			Name:      "sweeps",
			Help:      "Full alternating-projection sweeps per demeaned column.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
		}),
		DemeanNotConverged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "demean",
			Name:      "not_converged_total",
			Help:      "Columns that hit the sweep cap without converging.",
		}),
		Fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_total",
			Help:      "Completed estimations by covariance scheme.",
		}, []string{"scheme"}),
		CollinearDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collinear_dropped_total",
			Help:      "Regressors dropped for collinearity.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.DemeanSweeps, m.DemeanNotConverged, m.Fits, m.CollinearDropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveDemean records one demeaned column.
func (m *Metrics) ObserveDemean(_ string, st demean.Stats, err error) {
	if m == nil {
		return
	}
	if st.Sweeps > 0 {
		m.DemeanSweeps.Observe(float64(st.Sweeps))
	}
	if errors.Is(err, demean.ErrNotConverged) {
		m.DemeanNotConverged.Inc()
	}
}

// ObserveFit records one completed estimation.
func (m *Metrics) ObserveFit(scheme string, dropped int) {
	if m == nil {
		return
	}
	m.Fits.WithLabelValues(scheme).Inc()
	if dropped > 0 {
		m.CollinearDropped.Add(float64(dropped))
	}
}
