package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cartMutationsTotal counts cart mutations by operation and result
	cartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Total cart mutations by operation and result",
	}, []string{"operation", "result"})

	// cartStaleLinesTotal counts lines dropped because their variant vanished
	cartStaleLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_stale_lines_total",
		Help: "Cart lines dropped because the variant no longer exists",
	})
)
