package order

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// statusTransitionsTotal counts applied lifecycle transitions
	statusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_transitions_total",
		Help: "Total order status transitions by source and target status",
	}, []string{"from", "to"})
)
