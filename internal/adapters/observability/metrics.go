package observability

import (
	"fmt"
	"github.com/rs/zerolog/log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotelmerge"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "selector", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)

	// reconciliation drops and fallbacks
	RecordsMapped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "records_mapped_total", Help: "Raw records mapped into canonical form."},
		[]string{"source"},
	)
	RecordsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "records_rejected_total", Help: "Raw records dropped during mapping."},
		[]string{"source"},
	)
	FetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "fetch_errors_total", Help: "Supplier fetches skipped after an error."},
		[]string{"source"},
	)
	StrategyFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "strategy_fallbacks_total", Help: "Unknown merge strategies replaced by first_non_null."},
		[]string{"field"},
	)
	PathConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "path_conflicts_total", Help: "Field writes skipped on a structural conflict."},
		[]string{"stage"}, // stage: map|merge|classify
	)
	HotelsMerged = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "hotels_merged_total", Help: "Canonical hotels produced by merge runs."},
	)
)

// Serve exposes reg on a standalone /metrics listener; empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		RecordsMapped, RecordsRejected, FetchErrors, StrategyFallbacks, PathConflicts, HotelsMerged,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one request; selector is none|ids|destinations|both.
func ObserveHTTP(route, method, selector string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, selector, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveMapped(source string)   { RecordsMapped.WithLabelValues(source).Inc() }
func ObserveRejected(source string) { RecordsRejected.WithLabelValues(source).Inc() }
func ObserveFetchError(source string) {
	FetchErrors.WithLabelValues(source).Inc()
}
func ObserveStrategyFallback(field string) { StrategyFallbacks.WithLabelValues(field).Inc() }
func ObservePathConflict(stage string)     { PathConflicts.WithLabelValues(stage).Inc() }
func ObserveMerged(n int)                  { HotelsMerged.Add(float64(n)) }

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
