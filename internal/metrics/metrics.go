// Package metrics exposes interner and proof-action statistics as
// Prometheus metrics.
package metrics

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/roach88/homotopy/internal/core"
)

const namespace = "homotopy"

// InternerCollector reports the counters of an Interner at scrape time.
type InternerCollector struct {
	in *core.Interner

	live      *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
}

// NewInternerCollector returns a collector for in. A nil interner selects
// core.Default().
func NewInternerCollector(in *core.Interner) *InternerCollector {
	if in == nil {
		in = core.Default()
	}
	return &InternerCollector{
		in: in,
		live: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interner", "live"),
			"Interned values still reachable, by kind.",
			[]string{"kind"}, nil,
		),
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interner", "hits_total"),
			"Constructions that returned an existing value.",
			nil, nil,
		),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interner", "misses_total"),
			"Constructions that created a new value.",
			nil, nil,
		),
		evictions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interner", "evictions_total"),
			"Entries removed by garbage collection.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *InternerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.live
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
}

// Collect implements prometheus.Collector.
func (c *InternerCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.in.Stats()
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.Diagrams), "diagram")
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.Rewrites), "rewrite")
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
}

// Actions counts proof actions by kind and outcome.
type Actions struct {
	total *prometheus.CounterVec
}

// NewActions creates the action counter. Register it with Register.
func NewActions() *Actions {
	return &Actions{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proof",
			Name:      "actions_total",
			Help:      "Proof actions submitted, by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

// Observe records one action.
func (a *Actions) Observe(kind, outcome string) {
	a.total.WithLabelValues(kind, outcome).Inc()
}

// Registry bundles the collectors of one session.
type Registry struct {
	*prometheus.Registry
	Actions *Actions
}

// NewRegistry creates a registry with an interner collector for in and an
// action counter.
func NewRegistry(in *core.Interner) (*Registry, error) {
	r := &Registry{Registry: prometheus.NewRegistry(), Actions: NewActions()}
	if err := r.Register(NewInternerCollector(in)); err != nil {
		return nil, fmt.Errorf("registering interner collector: %w", err)
	}
	if err := r.Register(r.Actions.total); err != nil {
		return nil, fmt.Errorf("registering action counter: %w", err)
	}
	return r, nil
}

// WriteText writes one "name{labels} value" line per sample gathered from g,
// sorted by name.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if _, err := fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), formatLabels(m.GetLabel()), sampleValue(mf.GetType(), m)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	slices.Sort(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue()
	}
	return 0
}
