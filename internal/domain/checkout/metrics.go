package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// checkoutTotal counts checkout attempts by result
	checkoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_total",
		Help: "Total checkout attempts by result",
	}, []string{"result"})

	// checkoutDuration tracks checkout latency including the transaction
	checkoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_checkout_duration_seconds",
		Help:    "Checkout duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
	})

	// unitsSoldTotal counts units decremented from stock by checkout
	unitsSoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_units_sold_total",
		Help: "Units removed from stock by successful checkouts",
	})
)
