package quoter

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the quoter's prometheus collectors.
type Metrics struct {
	quoteDuration *prometheus.HistogramVec
	quoteErrors   *prometheus.CounterVec
	pairsLoaded   prometheus.Gauge
	tokensLoaded  prometheus.Gauge
	snapshotBlock prometheus.Gauge
	pairsSkipped  prometheus.Counter
}

// NewMetrics creates and registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uniswapv2",
			Subsystem: "quoter",
			Name:      "quote_duration_seconds",
			Help:      "Time spent searching for the best trades.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"trade_type"}),
		quoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uniswapv2",
			Subsystem: "quoter",
			Name:      "quote_errors_total",
			Help:      "Quotes that failed, by trade type.",
		}, []string{"trade_type"}),
		pairsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "uniswapv2",
			Subsystem: "quoter",
			Name:      "pairs_loaded",
			Help:      "Pairs in the current snapshot.",
		}),
		tokensLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "uniswapv2",
			Subsystem: "quoter",
			Name:      "tokens_loaded",
			Help:      "Tokens in the current snapshot.",
		}),
		snapshotBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "uniswapv2",
			Subsystem: "quoter",
			Name:      "snapshot_block",
			Help:      "Block number the current snapshot was read at.",
		}),
		pairsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uniswapv2",
			Subsystem: "quoter",
			Name:      "pairs_skipped_total",
			Help:      "Pools left out of a snapshot because a token was unknown or invalid.",
		}),
	}
	reg.MustRegister(
		m.quoteDuration,
		m.quoteErrors,
		m.pairsLoaded,
		m.tokensLoaded,
		m.snapshotBlock,
		m.pairsSkipped,
	)
	return m
}
