// Package observability exposes Prometheus metrics for the onboarding wizard
// and the application tracker.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	// WizardAdvances counts step advances by outcome (ok, invalid, error).
	WizardAdvances *prometheus.CounterVec

	// WizardAbandons counts confirmed abandonments.
	WizardAbandons prometheus.Counter

	// Submissions counts terminal submissions by outcome (ok, degraded).
	Submissions *prometheus.CounterVec

	// SubmissionDuration measures the time from submit to barrier release.
	SubmissionDuration prometheus.Histogram

	// PortfolioLoads counts portfolio loads by outcome (ok, cached, error).
	PortfolioLoads *prometheus.CounterVec

	// PortfolioLoadDuration measures full portfolio load time.
	PortfolioLoadDuration prometheus.Histogram

	// ApplicationDeletes counts deletion attempts by outcome (ok, rejected, error).
	ApplicationDeletes *prometheus.CounterVec
}

// NewMetrics registers all collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WizardAdvances: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholarstream",
			Subsystem: "wizard",
			Name:      "advances_total",
			Help:      "Wizard step advances by outcome.",
		}, []string{"outcome"}),

		WizardAbandons: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "scholarstream",
			Subsystem: "wizard",
			Name:      "abandons_total",
			Help:      "Confirmed wizard abandonments.",
		}),

		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholarstream",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Terminal submissions by outcome.",
		}, []string{"outcome"}),

		SubmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scholarstream",
			Subsystem: "wizard",
			Name:      "submission_duration_seconds",
			Help:      "Time from submit to barrier release.",
			Buckets:   prometheus.DefBuckets,
		}),

		PortfolioLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholarstream",
			Subsystem: "tracker",
			Name:      "portfolio_loads_total",
			Help:      "Portfolio loads by outcome.",
		}, []string{"outcome"}),

		PortfolioLoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scholarstream",
			Subsystem: "tracker",
			Name:      "portfolio_load_duration_seconds",
			Help:      "Full portfolio load time.",
			Buckets:   prometheus.DefBuckets,
		}),

		ApplicationDeletes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholarstream",
			Subsystem: "tracker",
			Name:      "application_deletes_total",
			Help:      "Application deletion attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// NewDefaultMetrics registers on the default Prometheus registry.
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
	OutcomeCached   = "cached"
	OutcomeRejected = "rejected"
)
