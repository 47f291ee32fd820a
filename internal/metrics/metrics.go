package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "social_calling"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	callsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "started_total",
			Help:      "Calls started, by type and pricing variant (free, day, night, star).",
		},
		[]string{"type", "variant"},
	)

	callsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "active",
			Help:      "1 while a call session is active.",
		},
	)

	callMinutes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "minutes_total",
			Help:      "Completed call minutes.",
		},
		[]string{"type"},
	)

	coinsDeducted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "economy",
			Name:      "coins_advisory_deducted_total",
			Help:      "Coins announced as deducted; the wallet backend owns the real debit.",
		},
	)

	xpAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "economy",
			Name:      "xp_awarded_total",
			Help:      "XP awarded by the client ledger.",
		},
	)

	levelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "economy",
			Name:      "level_ups_total",
			Help:      "Level threshold crossings.",
		},
	)

	offerClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "claims_total",
			Help:      "Offer claim attempts by result.",
		},
		[]string{"result"},
	)

	eventsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_emitted_total",
			Help:      "Notification events emitted, by kind.",
		},
		[]string{"kind"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		callsStarted,
		callsActive,
		callMinutes,
		coinsDeducted,
		xpAwarded,
		levelUps,
		offerClaims,
		eventsEmitted,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Gin records request count and latency keyed by the route template.
func Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func CallStarted(callType, variant string) {
	callsStarted.WithLabelValues(callType, variant).Inc()
	callsActive.Set(1)
}

func CallEnded() { callsActive.Set(0) }

func CallMinute(callType string) { callMinutes.WithLabelValues(callType).Inc() }

func CoinsDeducted(amount int64) {
	if amount > 0 {
		coinsDeducted.Add(float64(amount))
	}
}

func XPAwarded(amount int64) {
	if amount > 0 {
		xpAwarded.Add(float64(amount))
	}
}

func LevelUp() { levelUps.Inc() }

func OfferClaim(result string) { offerClaims.WithLabelValues(result).Inc() }

func EventEmitted(kind string) { eventsEmitted.WithLabelValues(kind).Inc() }
