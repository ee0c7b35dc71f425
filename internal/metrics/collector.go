// file: internal/metrics/collector.go

package metrics

import (
	"sync"
	"time"
)

// MetricsCollector handles periodic collection of system metrics
type MetricsCollector struct {
	metrics        *Metrics
	updateInterval time.Duration
	stopChan       chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(metrics *Metrics, updateInterval time.Duration) *MetricsCollector {
	return &MetricsCollector{
		metrics:        metrics,
		updateInterval: updateInterval,
		stopChan:       make(chan struct{}),
	}
}

// Start takes an initial sample and begins periodic collection
func (mc *MetricsCollector) Start() {
	mc.metrics.UpdateSystemMetrics()
	mc.wg.Add(1)
	go mc.collect()
}

// Stop halts collection and waits for the loop to exit. Safe to call twice.
func (mc *MetricsCollector) Stop() {
	mc.stopOnce.Do(func() { close(mc.stopChan) })
	mc.wg.Wait()
}

func (mc *MetricsCollector) collect() {
	defer mc.wg.Done()

	ticker := time.NewTicker(mc.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-mc.stopChan:
			return
		case <-ticker.C:
			mc.metrics.UpdateSystemMetrics()
		}
	}
}
