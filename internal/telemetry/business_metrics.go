// Package telemetry holds Prometheus metrics for business-level observability.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics counts the order fulfillment funnel.
type BusinessMetrics struct {
	CartItemsAdded  prometheus.Counter
	OrdersCreated   prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrderValue      prometheus.Histogram
	OrderItemCount  prometheus.Histogram
	CouponsRedeemed prometheus.Counter
	InvoicesIssued  prometheus.Counter
}

// NewBusinessMetrics registers all business metrics with the given registerer.
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CartItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_items_added_total",
			Help: "Number of cart line additions.",
		}),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Number of orders successfully created.",
		}),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_cancelled_total",
			Help: "Number of orders cancelled.",
		}),
		OrderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_value_cents",
			Help:    "Distribution of order totals in cents.",
			Buckets: prometheus.ExponentialBuckets(500, 2.5, 10),
		}),
		OrderItemCount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_item_count",
			Help:    "Distribution of line items per order.",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
		CouponsRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_coupons_redeemed_total",
			Help: "Number of coupons consumed by successful orders.",
		}),
		InvoicesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_invoices_issued_total",
			Help: "Number of invoices derived from orders.",
		}),
	}
}
