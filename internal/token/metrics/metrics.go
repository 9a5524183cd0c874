package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TokenValidations    *prometheus.CounterVec
	DefaultResolutions  *prometheus.CounterVec
	TokenRedemptions    prometheus.Counter
	BulkPricingRemovals prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TokenValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domreg_token_validations_total",
			Help: "Total allocation token validations by outcome",
		}, []string{"outcome"}),
		DefaultResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domreg_token_default_resolutions_total",
			Help: "Total default token list scans by outcome",
		}, []string{"outcome"}),
		TokenRedemptions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domreg_token_redemptions_total",
			Help: "Total single-use token redemptions",
		}),
		BulkPricingRemovals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domreg_bulk_pricing_removals_total",
			Help: "Total bulk pricing arrangements removed by token",
		}),
	}
}

func (m *Metrics) IncrementValidations(outcome string) {
	m.TokenValidations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementDefaultResolutions(outcome string) {
	m.DefaultResolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRedemptions() {
	m.TokenRedemptions.Inc()
}

func (m *Metrics) IncrementBulkPricingRemovals() {
	m.BulkPricingRemovals.Inc()
}
