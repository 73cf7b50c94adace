package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for roll counters.
const (
	OutcomeOK            = "ok"
	OutcomeInvalid       = "invalid"
	OutcomeLimit         = "limit"
	OutcomeSourceFailure = "source_failure"
)

// Metrics provides observability for dice rolls.
//
// Each Metrics owns a private registry so servers and tests can create as
// many as they need.
type Metrics struct {
	registry *prometheus.Registry

	// Roll requests by mode and outcome
	Rolls *prometheus.CounterVec

	// Individual dice drawn by die size
	DiceDrawn *prometheus.CounterVec

	// Parse-only requests by validity
	Parses *prometheus.CounterVec

	// Roll latency from parse to record
	RollLatency prometheus.Histogram
}

// New creates a Metrics instance with all dice metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Rolls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dicetower_rolls_total",
			Help: "Total roll requests by mode and outcome",
		}, []string{"mode", "outcome"}),

		DiceDrawn: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dicetower_dice_drawn_total",
			Help: "Total individual dice drawn by number of sides",
		}, []string{"sides"}),

		Parses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dicetower_parses_total",
			Help: "Total notation parse requests by validity",
		}, []string{"valid"}),

		RollLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dicetower_roll_duration_seconds",
			Help:    "Duration of a roll request including both sides of advantage",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}),
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncrementRoll records a roll request outcome.
func (m *Metrics) IncrementRoll(mode, outcome string) {
	if m != nil {
		m.Rolls.WithLabelValues(mode, outcome).Inc()
	}
}

// AddDiceDrawn records count dice of the given size.
func (m *Metrics) AddDiceDrawn(sides string, count int) {
	if m != nil && count > 0 {
		m.DiceDrawn.WithLabelValues(sides).Add(float64(count))
	}
}

// IncrementParse records a parse-only request.
func (m *Metrics) IncrementParse(valid bool) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	m.Parses.WithLabelValues(label).Inc()
}

// ObserveRollLatency records the duration of a roll request.
func (m *Metrics) ObserveRollLatency(d time.Duration) {
	if m != nil {
		m.RollLatency.Observe(d.Seconds())
	}
}
