package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

var (
	// HTTPRequestDuration observes every served request.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route", "status"})

	// StockClientDuration observes calls made to the product service.
	StockClientDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stock_client_request_duration_seconds",
		Help:      "Duration of calls to the product service.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation", "outcome"})

	// SagaOutcomes counts coordinator operations by result.
	SagaOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transaction_saga_total",
		Help:      "Transaction create/update/delete operations by outcome.",
	}, []string{"operation", "outcome"})

	// ReconcileResults counts adjustments handled by the reconciler.
	ReconcileResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_reconcile_total",
		Help:      "Pending stock adjustments processed by the reconciler, by result.",
	}, []string{"result"})

	// PendingAdjustments is the number of stock adjustments waiting to be applied.
	PendingAdjustments = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stock_adjustments_pending",
		Help:      "Stock adjustments committed locally and not yet applied remotely.",
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
