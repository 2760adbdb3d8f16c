package email

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// emailsSentTotal counts notification attempts by type and outcome
var emailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_emails_total",
	Help: "Order notification emails by type and result",
}, []string{"type", "result"})
