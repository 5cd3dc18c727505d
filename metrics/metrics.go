package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders created from carts.",
	})

	OrdersPaid = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_paid_total",
		Help: "Orders marked as paid, by payment method.",
	}, []string{"method"})

	OrdersDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_delivered_total",
		Help: "Orders marked as delivered.",
	})

	PaymentMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_payment_mismatch_total",
		Help: "Payment approvals rejected because the capture did not match.",
	})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_notifications_failed_total",
		Help: "Best-effort notifications that failed, by kind.",
	}, []string{"kind"})
)
