package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	idempotencyCounter    *prometheus.CounterVec
	transferCreated       *prometheus.CounterVec
	transferOutcome       *prometheus.CounterVec
	rateResolution        *prometheus.CounterVec
	proofUpload           *prometheus.CounterVec
	rateCacheCounter      *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		transferCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfers_created_total",
			Help: "Transfers persisted, by currency pair",
		}, []string{"send_currency", "receive_currency"})

		transferOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_create_outcomes_total",
			Help: "Final state reached by transfer creation requests",
		}, []string{"outcome"})

		rateResolution = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_resolutions_total",
			Help: "Exchange rate resolutions by source",
		}, []string{"source"})

		proofUpload = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proof_uploads_total",
			Help: "Proof file uploads by result",
		}, []string{"result"})

		rateCacheCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_cache_events_total",
			Help: "Rate cache lookups and invalidations",
		}, []string{"event"})

		prometheus.MustRegister(
			httpDurationHistogram,
			idempotencyCounter,
			transferCreated,
			transferOutcome,
			rateResolution,
			proofUpload,
			rateCacheCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementTransferCreated(sendCurrency, receiveCurrency string) {
	if transferCreated == nil {
		return
	}
	transferCreated.WithLabelValues(sendCurrency, receiveCurrency).Inc()
}

func IncrementTransferOutcome(outcome string) {
	if transferOutcome == nil {
		return
	}
	transferOutcome.WithLabelValues(outcome).Inc()
}

func IncrementRateResolution(source string) {
	if rateResolution == nil {
		return
	}
	rateResolution.WithLabelValues(source).Inc()
}

func IncrementProofUpload(result string) {
	if proofUpload == nil {
		return
	}
	proofUpload.WithLabelValues(result).Inc()
}

func IncrementRateCache(event string) {
	if rateCacheCounter == nil {
		return
	}
	rateCacheCounter.WithLabelValues(event).Inc()
}
