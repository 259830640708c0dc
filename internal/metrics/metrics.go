package metrics

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultService = "stackit"

var registerOnce sync.Once

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_votes_total",
			Help: "Vote operations on answers by result.",
		},
		[]string{"result"},
	)

	AnswersAcceptedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forum_answers_accepted_total",
			Help: "Number of accept-answer transitions.",
		},
	)

	AIAnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_ai_answers_total",
			Help: "AI answer suggestions by source (model, cache, fallback).",
		},
		[]string{"source"},
	)
)

// httpVecs are the request collectors curried with the service label.
type httpVecs struct {
	requests *prometheus.CounterVec
	duration prometheus.ObserverVec
}

var httpCollectors atomic.Pointer[httpVecs]

func init() {
	curry(defaultService)
}

func curry(service string) {
	labels := prometheus.Labels{"service": service}
	httpCollectors.Store(&httpVecs{
		requests: HTTPRequestsTotal.MustCurryWith(labels),
		duration: HTTPRequestDurationSeconds.MustCurryWith(labels),
	})
}

// MustRegister curries the service label into the HTTP collectors and
// registers every collector with the default registry. Only the first call
// has any effect.
func MustRegister(service string) {
	registerOnce.Do(func() {
		curry(service)
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			VotesTotal,
			AnswersAcceptedTotal,
			AIAnswersTotal,
		)
	})
}

func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	v := httpCollectors.Load()
	v.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	v.duration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
