package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for logins and token minting. All methods
// are nil-safe so components can run without a registry in tests.
type Metrics struct {
	// Login outcomes by result ("success", "failure")
	LoginOutcome *prometheus.CounterVec

	// Token mint outcomes by result ("success", "config_invalid",
	// "oidc_failed", "tokeninfo_failed", "scoped_failed", "timeout")
	MintOutcome *prometheus.CounterVec

	// Full three-step exchange latency
	MintLatency prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
// Call once per process.
func New() *Metrics {
	return &Metrics{
		LoginOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dashembed_login_total",
			Help: "Total login attempts by result",
		}, []string{"result"}),

		MintOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dashembed_token_mint_total",
			Help: "Total token mint attempts by result",
		}, []string{"result"}),

		MintLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashembed_token_mint_duration_seconds",
			Help:    "Duration of the full three-step token exchange",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementLogin records a login attempt outcome.
func (m *Metrics) IncrementLogin(result string) {
	if m != nil {
		m.LoginOutcome.WithLabelValues(result).Inc()
	}
}

// IncrementMint records a token mint outcome.
func (m *Metrics) IncrementMint(result string) {
	if m != nil {
		m.MintOutcome.WithLabelValues(result).Inc()
	}
}

// ObserveMintLatency records the duration of a complete mint attempt.
func (m *Metrics) ObserveMintLatency(d time.Duration) {
	if m != nil {
		m.MintLatency.Observe(d.Seconds())
	}
}
