package bus

// Metrics exporters for bus delivery statistics.
//
// Provides:
//   - PrometheusCollector implementing prometheus.Collector
//   - DatadogStatsdExporter for periodic flush to DogStatsD / StatsD endpoints
//
// Both are pull-based against the atomic Stats()/QueueSize()/Now() snapshot
// methods, so the dispatch hot path carries no extra instrumentation.

import (
	"context"
	"fmt"
	"time"

	statsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	errNilBus          = fmt.Errorf("bus: nil bus supplied")
	errInvalidInterval = fmt.Errorf("bus: flush interval must be > 0")
)

// PrometheusCollector exposes the bus counters as Prometheus metrics:
//
//	<ns>_events_published_total
//	<ns>_events_dispatched_total
//	<ns>_deliveries_total
//	<ns>_handler_faults_total
//	<ns>_injected_total
//	<ns>_inject_drops_total
//	<ns>_queue_depth
//	<ns>_logical_clock_us
//
// Counters are generated as ConstMetrics on scrape.
type PrometheusCollector struct {
	bus *Bus

	publishedDesc  *prometheus.Desc
	dispatchedDesc *prometheus.Desc
	deliveriesDesc *prometheus.Desc
	faultsDesc     *prometheus.Desc
	injectedDesc   *prometheus.Desc
	dropsDesc      *prometheus.Desc
	depthDesc      *prometheus.Desc
	clockDesc      *prometheus.Desc
}

// NewPrometheusCollector creates a collector for the given bus. namespace is
// the metric prefix (default if empty: simbus).
func NewPrometheusCollector(b *Bus, namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "simbus"
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(fmt.Sprintf("%s_%s", namespace, name), help, nil, nil)
	}
	return &PrometheusCollector{
		bus:            b,
		publishedDesc:  desc("events_published_total", "Entries accepted into the scheduled queue"),
		dispatchedDesc: desc("events_dispatched_total", "Entries popped and fanned out"),
		deliveriesDesc: desc("deliveries_total", "Individual handler invocations"),
		faultsDesc:     desc("handler_faults_total", "Handler errors and panics caught at the dispatch boundary"),
		injectedDesc:   desc("injected_total", "Events accepted from external producers"),
		dropsDesc:      desc("inject_drops_total", "External events refused by the bounded inject queue"),
		depthDesc:      desc("queue_depth", "Scheduled entries waiting for dispatch"),
		clockDesc:      desc("logical_clock_us", "Logical clock in microseconds"),
	}
}

// Describe sends metric descriptors.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.publishedDesc
	ch <- c.dispatchedDesc
	ch <- c.deliveriesDesc
	ch <- c.faultsDesc
	ch <- c.injectedDesc
	ch <- c.dropsDesc
	ch <- c.depthDesc
	ch <- c.clockDesc
}

// Collect gathers current stats and emits ConstMetrics.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.bus.Stats()
	ch <- prometheus.MustNewConstMetric(c.publishedDesc, prometheus.CounterValue, float64(s.Published))
	ch <- prometheus.MustNewConstMetric(c.dispatchedDesc, prometheus.CounterValue, float64(s.Dispatched))
	ch <- prometheus.MustNewConstMetric(c.deliveriesDesc, prometheus.CounterValue, float64(s.Delivered))
	ch <- prometheus.MustNewConstMetric(c.faultsDesc, prometheus.CounterValue, float64(s.HandlerFaults))
	ch <- prometheus.MustNewConstMetric(c.injectedDesc, prometheus.CounterValue, float64(s.Injected))
	ch <- prometheus.MustNewConstMetric(c.dropsDesc, prometheus.CounterValue, float64(s.InjectDrops))
	ch <- prometheus.MustNewConstMetric(c.depthDesc, prometheus.GaugeValue, float64(c.bus.QueueSize()))
	ch <- prometheus.MustNewConstMetric(c.clockDesc, prometheus.GaugeValue, float64(c.bus.Now().Micros()))
}

// DatadogStatsdExporter periodically flushes the cumulative counters as
// monotonic gauges to DogStatsD / StatsD. Pull-based: each interval it reads
// the current counts and submits them.
type DatadogStatsdExporter struct {
	bus      *Bus
	client   *statsd.Client
	interval time.Duration
	baseTags []string
}

// NewDatadogStatsdExporter creates a new exporter. addr example:
// "127.0.0.1:8125". prefix defaults to "simbus" if empty. interval must be
// positive.
func NewDatadogStatsdExporter(b *Bus, prefix, addr string, interval time.Duration, baseTags []string) (*DatadogStatsdExporter, error) {
	if b == nil {
		return nil, errNilBus
	}
	if interval <= 0 {
		return nil, errInvalidInterval
	}
	if prefix == "" {
		prefix = "simbus"
	}
	client, err := statsd.New(addr, statsd.WithNamespace(prefix+"."))
	if err != nil {
		return nil, fmt.Errorf("creating statsd client: %w", err)
	}
	return &DatadogStatsdExporter{
		bus:      b,
		client:   client,
		interval: interval,
		baseTags: baseTags,
	}, nil
}

// Run flushes on the configured interval until ctx is cancelled, then closes
// the client.
func (e *DatadogStatsdExporter) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	defer func() { _ = e.client.Close() }()

	for {
		select {
		case <-ctx.Done():
			e.flush()
			return
		case <-ticker.C:
			e.flush()
		}
	}
}

func (e *DatadogStatsdExporter) flush() {
	s := e.bus.Stats()
	_ = e.client.Gauge("events_published_total", float64(s.Published), e.baseTags, 1)
	_ = e.client.Gauge("events_dispatched_total", float64(s.Dispatched), e.baseTags, 1)
	_ = e.client.Gauge("deliveries_total", float64(s.Delivered), e.baseTags, 1)
	_ = e.client.Gauge("handler_faults_total", float64(s.HandlerFaults), e.baseTags, 1)
	_ = e.client.Gauge("queue_depth", float64(e.bus.QueueSize()), e.baseTags, 1)
}
