package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Afrawles/actionfeed/internal/feed"
	"github.com/Afrawles/actionfeed/internal/poller"
)

// Collector exposes Prometheus metrics for the activity poller.
type Collector struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	staleTotal    prometheus.Counter
	connected     prometheus.Gauge
	lastUpdated   prometheus.Gauge
}

const (
	namespace = "actionfeed"
	subsystem = "poller"

	resultOK = "ok"
)

func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fetches_total",
			Help:      "Completed activity fetches by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fetch_duration_seconds",
			Help:      "Latency of activity fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		staleTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stale_fetches_total",
			Help:      "Fetch results discarded because a newer fetch finished first.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connected",
			Help:      "1 if the last applied fetch succeeded, 0 otherwise.",
		}),
		lastUpdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_updated_timestamp_seconds",
			Help:      "Unix time of the last successful non-empty fetch.",
		}),
	}

	for _, col := range []prometheus.Collector{c.fetchTotal, c.fetchDuration, c.staleTotal, c.connected, c.lastUpdated} {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

var _ poller.Observer = (*Collector)(nil)

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveFetch(err error, took time.Duration) {
	result := resultOK
	if err != nil {
		result = feed.Kind(err)
	}
	c.fetchTotal.WithLabelValues(result).Inc()
	c.fetchDuration.Observe(took.Seconds())
}

func (c *Collector) ObserveStale() {
	c.staleTotal.Inc()
}

func (c *Collector) ObserveStatus(s poller.Status) {
	if s.Connected {
		c.connected.Set(1)
	} else {
		c.connected.Set(0)
	}
	if !s.LastUpdated.IsZero() {
		c.lastUpdated.Set(float64(s.LastUpdated.Unix()))
	}
}
