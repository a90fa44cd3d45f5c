// Package metrics provides Prometheus metrics for the market maker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TicksTotal counts completed strategy loop iterations.
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_ticks_total",
		Help: "Strategy loop ticks executed",
	}, []string{"strategy"})

	// TickErrors counts ticks aborted by a venue failure.
	TickErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_tick_errors_total",
		Help: "Ticks aborted by venue errors",
	}, []string{"strategy"})

	// QuotesGenerated counts desired quotes produced per side.
	QuotesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_quotes_generated_total",
		Help: "Quotes generated by the pricing model",
	}, []string{"strategy", "action"})

	// OrdersPlaced counts orders submitted to the venue.
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_orders_placed_total",
		Help: "Orders placed on the venue",
	}, []string{"strategy", "action"})

	// OrdersCanceled counts cancels issued by the reconciler.
	OrdersCanceled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_orders_canceled_total",
		Help: "Orders canceled by the reconciler",
	}, []string{"strategy", "action"})

	// OrdersKept counts resting orders left untouched (anti-churn).
	OrdersKept = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_orders_kept_total",
		Help: "Resting orders kept unchanged",
	}, []string{"strategy", "action"})

	// OrderRejects counts per-leg placement failures.
	OrderRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_order_rejects_total",
		Help: "Order placements rejected by the venue",
	}, []string{"strategy", "action"})

	// PositionNet tracks the venue-reported signed inventory.
	PositionNet = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mm_position_net",
		Help: "Signed inventory per strategy",
	}, []string{"strategy"})

	// MidPrice tracks the last observed mid.
	MidPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mm_mid_price",
		Help: "Last observed mid price",
	}, []string{"strategy"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on addr in the background.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
