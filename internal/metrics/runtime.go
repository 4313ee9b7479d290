package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Runtime is a snapshot of one session's action pool and event hub.
type Runtime struct {
	ActiveActions    int64
	CompletedActions int64
	FailedActions    int64
	PanickedActions  int64
	DroppedEvents    uint64
	Subscribers      int
}

// runtimeCollector sums the snapshots of every tracked session at scrape
// time. Cumulative fields of untracked sessions are folded into retired so
// the exported counters never go backwards.
type runtimeCollector struct {
	mu      sync.Mutex
	seq     uint64
	sources map[uint64]func() Runtime
	retired Runtime

	active      *prometheus.Desc
	completed   *prometheus.Desc
	failed      *prometheus.Desc
	panicked    *prometheus.Desc
	dropped     *prometheus.Desc
	subscribers *prometheus.Desc
}

func newRuntimeCollector() *runtimeCollector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "", n) }
	return &runtimeCollector{
		sources:     make(map[uint64]func() Runtime),
		active:      prometheus.NewDesc(name("pool_active_actions"), "Asynchronous actions currently running.", nil, nil),
		completed:   prometheus.NewDesc(name("pool_completed_actions_total"), "Asynchronous actions that returned without error.", nil, nil),
		failed:      prometheus.NewDesc(name("pool_failed_actions_total"), "Asynchronous actions that returned an error or panicked.", nil, nil),
		panicked:    prometheus.NewDesc(name("pool_panicked_actions_total"), "Asynchronous actions that panicked.", nil, nil),
		dropped:     prometheus.NewDesc(name("hub_dropped_events_total"), "Events discarded for slow subscribers.", nil, nil),
		subscribers: prometheus.NewDesc(name("hub_subscribers"), "Active event subscriptions.", nil, nil),
	}
}

func (rc *runtimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rc.active
	ch <- rc.completed
	ch <- rc.failed
	ch <- rc.panicked
	ch <- rc.dropped
	ch <- rc.subscribers
}

func (rc *runtimeCollector) Collect(ch chan<- prometheus.Metric) {
	sum := rc.snapshot()
	ch <- prometheus.MustNewConstMetric(rc.active, prometheus.GaugeValue, float64(sum.ActiveActions))
	ch <- prometheus.MustNewConstMetric(rc.completed, prometheus.CounterValue, float64(sum.CompletedActions))
	ch <- prometheus.MustNewConstMetric(rc.failed, prometheus.CounterValue, float64(sum.FailedActions))
	ch <- prometheus.MustNewConstMetric(rc.panicked, prometheus.CounterValue, float64(sum.PanickedActions))
	ch <- prometheus.MustNewConstMetric(rc.dropped, prometheus.CounterValue, float64(sum.DroppedEvents))
	ch <- prometheus.MustNewConstMetric(rc.subscribers, prometheus.GaugeValue, float64(sum.Subscribers))
}

func (rc *runtimeCollector) snapshot() Runtime {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	sum := rc.retired
	for _, src := range rc.sources {
		sum = addRuntime(sum, src())
	}
	return sum
}

func (rc *runtimeCollector) track(src func() Runtime) (untrack func()) {
	rc.mu.Lock()
	rc.seq++
	id := rc.seq
	rc.sources[id] = src
	rc.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			rc.mu.Lock()
			defer rc.mu.Unlock()
			last := src()
			rc.retired.CompletedActions += last.CompletedActions
			rc.retired.FailedActions += last.FailedActions
			rc.retired.PanickedActions += last.PanickedActions
			rc.retired.DroppedEvents += last.DroppedEvents
			delete(rc.sources, id)
		})
	}
}

func addRuntime(a, b Runtime) Runtime {
	return Runtime{
		ActiveActions:    a.ActiveActions + b.ActiveActions,
		CompletedActions: a.CompletedActions + b.CompletedActions,
		FailedActions:    a.FailedActions + b.FailedActions,
		PanickedActions:  a.PanickedActions + b.PanickedActions,
		DroppedEvents:    a.DroppedEvents + b.DroppedEvents,
		Subscribers:      a.Subscribers + b.Subscribers,
	}
}

// Track exports src's pool and hub figures until untrack is called. After
// untrack, its cumulative counts stay in the totals.
func (c *Collector) Track(src func() Runtime) (untrack func()) {
	if c == nil || src == nil {
		return func() {}
	}
	return c.runtime.track(src)
}
