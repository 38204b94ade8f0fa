package metrics

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "agent_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	gateDecisions    *prometheus.CounterVec
	positionFailures prometheus.Counter

	catalogHits           prometheus.Counter
	catalogMisses         prometheus.Counter
	catalogRefreshTotal   *prometheus.CounterVec
	catalogRefreshLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	chatbotReplies *prometheus.CounterVec

	alertNotifications *prometheus.CounterVec
)

// Init registers the agent's metrics. Safe to call more than once.
func Init(logger *log.Logger) {
	registerOnce.Do(func() {
		gateDecisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "gate_decisions_total",
				Help: "Total attendance gate decisions by outcome",
			},
			[]string{"outcome"},
		)
		positionFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "position_failures_total",
				Help: "Total failed position acquisition attempts",
			},
		)

		catalogHits = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "catalog_cache_hits_total",
				Help: "Total catalog reads served from the cache",
			},
		)
		catalogMisses = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "catalog_cache_misses_total",
				Help: "Total catalog reads that required a refresh",
			},
		)
		catalogRefreshTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "catalog_refresh_total",
				Help: "Total catalog refreshes by result",
			},
			[]string{"result"},
		)
		catalogRefreshLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "catalog_refresh_latency_seconds",
				Help:    "Catalog refresh latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		chatbotReplies = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "chatbot_replies_total",
				Help: "Total chatbot replies by matched intent",
			},
			[]string{"intent"},
		)

		alertNotifications = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_notifications_total",
				Help: "Total low-stock notifications by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			gateDecisions,
			positionFailures,
			catalogHits,
			catalogMisses,
			catalogRefreshTotal,
			catalogRefreshLatency,
			exportTotal,
			exportLatency,
			chatbotReplies,
			alertNotifications,
		)

		if logger != nil {
			logger.Printf("metrics registered: prefix=%s", metricPrefix)
		}
	})
}

// ObserveGateDecision counts one gate decision by outcome.
func ObserveGateDecision(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if gateDecisions != nil {
		gateDecisions.WithLabelValues(outcome).Inc()
	}
}

// ObservePositionFailure counts one failed acquisition attempt.
func ObservePositionFailure() {
	if positionFailures != nil {
		positionFailures.Inc()
	}
}

// ObserveCatalogHit counts a read served from the cache.
func ObserveCatalogHit() {
	if catalogHits != nil {
		catalogHits.Inc()
	}
}

// ObserveCatalogRefresh records a refresh attempt and its latency.
func ObserveCatalogRefresh(err error, duration time.Duration) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if catalogMisses != nil {
		catalogMisses.Inc()
	}
	if catalogRefreshTotal != nil {
		catalogRefreshTotal.WithLabelValues(result).Inc()
	}
	if catalogRefreshLatency != nil {
		catalogRefreshLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records an export operation.
func ObserveExport(format string, err error, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveChatbotReply counts one chatbot reply by intent.
func ObserveChatbotReply(intent string) {
	if intent == "" {
		intent = "fallback"
	}
	if chatbotReplies != nil {
		chatbotReplies.WithLabelValues(intent).Inc()
	}
}

// ObserveAlertNotification counts one low-stock notification attempt.
func ObserveAlertNotification(err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if alertNotifications != nil {
		alertNotifications.WithLabelValues(result).Inc()
	}
}
