package accessor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives the events of a Cache.
type Metrics interface {
	// Hit is called when an entry, successful or failed, is already cached.
	Hit()

	// Miss is called when an entry has to be resolved or waited for.
	Miss()

	// Lookup is called once per resolution actually performed against the resolver.
	Lookup()

	// Failure is called when a resolution finds no accessor.
	Failure()
}

// NoopMetrics ignores all events.
type NoopMetrics struct{}

func (NoopMetrics) Hit()     {}
func (NoopMetrics) Miss()    {}
func (NoopMetrics) Lookup()  {}
func (NoopMetrics) Failure() {}

// PrometheusMetrics counts cache events.
type PrometheusMetrics struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	lookups  prometheus.Counter
	failures prometheus.Counter
}

// NewPrometheusMetrics creates the counters and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		hits:     newCounter("hits_total", "Accessor lookups answered from the cache."),
		misses:   newCounter("misses_total", "Accessor lookups not answered from the cache."),
		lookups:  newCounter("resolutions_total", "Accessor resolutions performed against the resolver."),
		failures: newCounter("failures_total", "Accessor resolutions that found no matching member."),
	}

	for _, c := range []prometheus.Collector{m.hits, m.misses, m.lookups, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ledtx",
		Subsystem: "accessor_cache",
		Name:      name,
		Help:      help,
	})
}

func (m *PrometheusMetrics) Hit()     { m.hits.Inc() }
func (m *PrometheusMetrics) Miss()    { m.misses.Inc() }
func (m *PrometheusMetrics) Lookup()  { m.lookups.Inc() }
func (m *PrometheusMetrics) Failure() { m.failures.Inc() }
