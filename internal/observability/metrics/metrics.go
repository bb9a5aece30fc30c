package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "settlement_compare_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamRecords  *prometheus.CounterVec
	cacheHits        prometheus.Counter

	cycleTotal   *prometheus.CounterVec
	cycleLatency *prometheus.HistogramVec
	lastUpdate   *prometheus.GaugeVec

	exportTotal *prometheus.CounterVec
)

// Init registers the metrics with the default registry. Safe to call repeatedly.
func Init() {
	registerOnce.Do(func() {
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Total upstream BMRS requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_latency_seconds",
				Help:    "Upstream BMRS request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		)
		upstreamRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_records_total",
				Help: "Total records decoded from upstream responses",
			},
			[]string{"endpoint"},
		)
		cacheHits = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_cache_hits_total",
				Help: "Upstream responses served from the response cache",
			},
		)

		cycleTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cycles_total",
				Help: "Total comparison cycles by task and result",
			},
			[]string{"task", "result"},
		)
		cycleLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "cycle_latency_seconds",
				Help:    "Comparison cycle latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		)
		lastUpdate = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "last_update_timestamp_seconds",
				Help: "Unix time of the last successful cycle per task",
			},
			[]string{"task"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total export files written by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			upstreamRequests,
			upstreamLatency,
			upstreamRecords,
			cacheHits,
			cycleTotal,
			cycleLatency,
			lastUpdate,
			exportTotal,
		)
	})
}

func ObserveUpstream(endpoint, result string, d time.Duration, records int) {
	Init()
	upstreamRequests.WithLabelValues(endpoint, result).Inc()
	upstreamLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	if records > 0 {
		upstreamRecords.WithLabelValues(endpoint).Add(float64(records))
	}
}

func ObserveCacheHit() {
	Init()
	cacheHits.Inc()
}

func ObserveCycle(task, result string, d time.Duration) {
	Init()
	cycleTotal.WithLabelValues(task, result).Inc()
	cycleLatency.WithLabelValues(task).Observe(d.Seconds())
	if result == ResultSuccess {
		lastUpdate.WithLabelValues(task).Set(float64(time.Now().Unix()))
	}
}

func ObserveExport(format, result string) {
	Init()
	exportTotal.WithLabelValues(format, result).Inc()
}

func ResultFor(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
