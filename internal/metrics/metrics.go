// Package metrics is the Prometheus collector for the batch CLI: a
// latency histogram and outcome counters (match / no-match / invalid
// URL), served over fasthttp by internal/common/metricsserver when
// -metrics-listen is set.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// Collector records per-query outcomes and latency for the rule engine.
type Collector struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration prometheus.Histogram
	httpHandler   func(*fasthttp.RequestCtx)
}

// Outcome labels the result of a single URL classification.
type Outcome string

const (
	OutcomeMatch      Outcome = "match"
	OutcomeNoMatch    Outcome = "no_match"
	OutcomeInvalidURL Outcome = "invalid_url"
)

// NewCollector builds a Collector registered against the default
// Prometheus registry and an HTTP handler ready for
// internal/common/metricsserver.StartMetricsServer.
func NewCollector(logger *zap.Logger) *Collector {
	return NewCollectorWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewCollectorWithRegistry builds a Collector against a caller-supplied
// registry, so tests can use an isolated prometheus.NewRegistry() instead
// of polluting (and double-registering against) the global default.
func NewCollectorWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Collector {
	c := &Collector{
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rule_engine",
				Name:      "queries_total",
				Help:      "Total number of URLs classified, by outcome",
			},
			[]string{"outcome"},
		),
		queryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "rule_engine",
				Name:      "query_duration_seconds",
				Help:      "Time taken to evaluate a single URL against the rule set",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	registerer.MustRegister(c.queriesTotal, c.queryDuration)

	gatherer, ok := registerer.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	c.httpHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	logger.Debug("rule engine metrics initialized")
	return c
}

// RecordQuery records the outcome and latency of one URL evaluation.
func (c *Collector) RecordQuery(outcome Outcome, duration time.Duration) {
	c.queriesTotal.WithLabelValues(string(outcome)).Inc()
	c.queryDuration.Observe(duration.Seconds())
}

// ServeHTTP implements internal/common/metricsserver.MetricsHandler.
func (c *Collector) ServeHTTP(ctx *fasthttp.RequestCtx) {
	c.httpHandler(ctx)
}
