package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promdto "github.com/prometheus/client_model/go"
)

const (
	OutcomeSuccess    = "success"
	OutcomeDegraded   = "degraded"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
	StatusFound       = "found"
	StatusNotFound    = "not_found"
	StatusNeedsUpdate = "needs_update"
)

type Registry struct {
	reg               *prometheus.Registry
	Reconciliations   *prometheus.CounterVec
	Products          *prometheus.CounterVec
	ERPFetchLatency   prometheus.Histogram
	ERPParseFailures  prometheus.Counter
	ERPCacheHits      prometheus.Counter
	ComparisonsPurged prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_reconciliations_total",
		Help: "Reconciliation runs by outcome.",
	}, []string{"outcome"})
	products := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_reconciliation_products_total",
		Help: "Reconciled products by status.",
	}, []string{"status"})
	fetchLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "price_erp_fetch_seconds",
		Help:    "Latency of one ERP price request.",
		Buckets: prometheus.DefBuckets,
	})
	parseFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_erp_parse_failures_total",
		Help: "ERP price payloads that could not be parsed.",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_erp_cache_hits_total",
		Help: "Stock codes served from the price cache.",
	})
	purged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_comparisons_purged_total",
		Help: "Stored comparisons removed by retention cleanup.",
	})

	r.MustRegister(reconciliations, products, fetchLatency, parseFailures, cacheHits, purged)
	return &Registry{
		reg:               r,
		Reconciliations:   reconciliations,
		Products:          products,
		ERPFetchLatency:   fetchLatency,
		ERPParseFailures:  parseFailures,
		ERPCacheHits:      cacheHits,
		ComparisonsPurged: purged,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// CounterValue reads the current value of a counter.
func CounterValue(c prometheus.Counter) float64 {
	var m promdto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
