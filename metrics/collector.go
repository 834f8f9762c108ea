// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports icc container state to Prometheus.
//
// The collector samples [icc.Stats] at scrape time; nothing is recorded on
// the produce or consume paths.
//
//	c := metrics.NewCollector("trading")
//	c.Register("ticks", q)
//	prometheus.MustRegister(c)
package metrics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"code.hybscloud.com/icc"
)

// Source is anything that can describe itself with icc.Stats.
// *icc.Queue[T] and *icc.Vector[T] satisfy it. A source reporting
// KindUnknown, as a failed icc.Inspect does, is left out of the scrape.
type Source interface {
	Stats() icc.Stats
}

// SourceFunc adapts a function to Source.
type SourceFunc func() icc.Stats

// Stats calls f.
func (f SourceFunc) Stats() icc.Stats { return f() }

// Collector is a prometheus.Collector over named icc containers.
type Collector struct {
	mu      sync.RWMutex
	sources map[string]Source

	capacity *prometheus.Desc
	elemSize *prometheus.Desc
	produced *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector whose metrics live under namespace.
func NewCollector(namespace string) *Collector {
	labels := []string{"name", "kind"}
	return &Collector{
		sources: make(map[string]Source),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "icc", "slots"),
			"Number of slots (queue capacity or vector length)",
			labels, nil,
		),
		elemSize: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "icc", "slot_bytes"),
			"Bytes per slot, version word included",
			labels, nil,
		),
		produced: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "icc", "produced_total"),
			"Positions claimed by queue producers",
			labels, nil,
		),
	}
}

// Register adds a source under name.
func (c *Collector) Register(name string, s Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sources[name]; ok {
		return fmt.Errorf("metrics: source %q already registered", name)
	}
	c.sources[name] = s
	return nil
}

// Unregister removes the source called name, if any.
func (c *Collector) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, name)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.elemSize
	ch <- c.produced
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	names := make([]string, 0, len(c.sources))
	for n := range c.sources {
		names = append(names, n)
	}
	sort.Strings(names)
	sources := make([]Source, len(names))
	for i, n := range names {
		sources[i] = c.sources[n]
	}
	c.mu.RUnlock()

	for i, s := range sources {
		st := s.Stats()
		isQueue := st.Kind == icc.KindMPMC || st.Kind == icc.KindSPMC
		if !isQueue && st.Kind != icc.KindVector {
			// Uninitialized or foreign region
			continue
		}
		kind := st.Kind.String()
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(st.Len), names[i], kind)
		ch <- prometheus.MustNewConstMetric(c.elemSize, prometheus.GaugeValue, float64(st.ElemSize), names[i], kind)
		if isQueue {
			ch <- prometheus.MustNewConstMetric(c.produced, prometheus.CounterValue, float64(st.Produced), names[i], kind)
		}
	}
}
