package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MarketplaceMetrics records activity counters for the exchange engine.
type MarketplaceMetrics struct {
	submissions    *prometheus.CounterVec
	pointsCredited *prometheus.CounterVec
	checkouts      prometheus.Counter
	checkoutValue  prometheus.Histogram
}

// NewMarketplaceMetrics registers the exchange metrics on the provided registerer.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_submissions_total",
		Help: "Listings submitted, labelled by kind.",
	}, []string{"kind"})
	pointsCredited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "points_credited_total",
		Help: "Reward points credited, labelled by event type.",
	}, []string{"event"})
	checkouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Completed cart checkouts.",
	})
	checkoutValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_value_dollars",
		Help:    "Cart total at checkout, in dollars.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
	reg.MustRegister(submissions, pointsCredited, checkouts, checkoutValue)
	return &MarketplaceMetrics{
		submissions:    submissions,
		pointsCredited: pointsCredited,
		checkouts:      checkouts,
		checkoutValue:  checkoutValue,
	}
}

// IncSubmission increments the submission counter for the listing kind.
func (m *MarketplaceMetrics) IncSubmission(kind string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(kind)).Inc()
}

// AddPointsCredited records points credited for the named event type.
func (m *MarketplaceMetrics) AddPointsCredited(event string, points int) {
	if m == nil || m.pointsCredited == nil {
		return
	}
	m.pointsCredited.WithLabelValues(normalizeLabel(event)).Add(float64(points))
}

// ObserveCheckout records a completed checkout and its dollar total.
func (m *MarketplaceMetrics) ObserveCheckout(totalDollars float64) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.Inc()
	m.checkoutValue.Observe(totalDollars)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
