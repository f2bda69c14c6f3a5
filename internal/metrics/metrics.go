package metrics

import (
	"net/http"
	"strconv"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-storefront/query"
	"github.com/goliatone/go-storefront/querykey"
)

const namespace = "storefront"

// Collector holds the storefront Prometheus collectors on a private registry.
type Collector struct {
	Registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	invalidations *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "fetches_total",
				Help:      "Upstream fetches run by the query cache.",
			},
			[]string{"resource", "result"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of upstream fetches.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"resource"},
		),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "invalidated_entries_total",
				Help:      "Cache entries marked stale.",
			},
			[]string{"resource"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "mutations_total",
				Help:      "Mutations run through the query cache.",
			},
			[]string{"name", "result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
	}

	c.Registry.MustRegister(
		c.fetches,
		c.fetchDuration,
		c.invalidations,
		c.mutations,
		c.httpRequests,
		c.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return c
}

// Subscribe attaches the query collectors to the lifecycle topics of bus.
func (c *Collector) Subscribe(bus evbus.Bus) error {
	handlers := map[string]any{
		query.TopicFetchSucceeded: func(ev query.FetchEvent) { c.observeFetch(ev, "success") },
		query.TopicFetchFailed:    func(ev query.FetchEvent) { c.observeFetch(ev, "error") },
		query.TopicInvalidated: func(ev query.InvalidateEvent) {
			for _, key := range ev.Keys {
				c.invalidations.WithLabelValues(querykey.Resource(key)).Inc()
			}
		},
		query.TopicMutation: func(ev query.MutationEvent) {
			c.mutations.WithLabelValues(ev.Name, result(ev.Err)).Inc()
		},
	}
	for topic, fn := range handlers {
		if err := bus.Subscribe(topic, fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) observeFetch(ev query.FetchEvent, res string) {
	c.fetches.WithLabelValues(ev.Resource, res).Inc()
	c.fetchDuration.WithLabelValues(ev.Resource).Observe(ev.Duration.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveHTTP records one handled request. path should be the route
// template, not the raw URL.
func (c *Collector) ObserveHTTP(method, path string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Handler exposes the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
