// Package metrics exposes process runtime and simulation-iteration gauges
// to Prometheus.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

// RuntimeCollector reports Go runtime health, unchanged in shape from the
// gRPC services this stack originally instrumented.
type RuntimeCollector struct {
	goroutines *prometheus.Desc
	memAlloc   *prometheus.Desc
	memTotal   *prometheus.Desc
	memSys     *prometheus.Desc
	gcPause    *prometheus.Desc
	gcRuns     *prometheus.Desc
}

func NewRuntimeCollector(namespace, subsystem string) *RuntimeCollector {
	return &RuntimeCollector{
		goroutines: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "runtime_goroutines"), "Number of goroutines", nil, nil),
		memAlloc:   prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "runtime_memory_alloc_bytes"), "Bytes allocated and still in use", nil, nil),
		memTotal:   prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "runtime_memory_total_alloc_bytes"), "Total bytes allocated (even if freed)", nil, nil),
		memSys:     prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "runtime_memory_sys_bytes"), "Bytes obtained from system", nil, nil),
		gcPause:    prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "runtime_gc_pause_seconds"), "GC pause duration", nil, nil),
		gcRuns:     prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "runtime_gc_runs_total"), "Total number of completed GC cycles", nil, nil),
	}
}

func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.goroutines
	ch <- c.memAlloc
	ch <- c.memTotal
	ch <- c.memSys
	ch <- c.gcPause
	ch <- c.gcRuns
}

func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	ch <- prometheus.MustNewConstMetric(c.goroutines, prometheus.GaugeValue, float64(runtime.NumGoroutine()))
	ch <- prometheus.MustNewConstMetric(c.memAlloc, prometheus.GaugeValue, float64(stats.Alloc))
	ch <- prometheus.MustNewConstMetric(c.memTotal, prometheus.CounterValue, float64(stats.TotalAlloc))
	ch <- prometheus.MustNewConstMetric(c.memSys, prometheus.GaugeValue, float64(stats.Sys))
	ch <- prometheus.MustNewConstMetric(c.gcRuns, prometheus.CounterValue, float64(stats.NumGC))
	if stats.NumGC > 0 {
		ch <- prometheus.MustNewConstMetric(c.gcPause, prometheus.GaugeValue, float64(stats.PauseNs[(stats.NumGC-1)%256])/1e9)
	}
}

// SimulationCollector reports the latest optimizer iteration's aggregate
// metrics, refreshed by calling Set after each run.
type SimulationCollector struct {
	meanTripDuration  *prometheus.Desc
	meanTripLength    *prometheus.Desc
	meanLinkDuration  *prometheus.Desc
	droppedAgentCount *prometheus.Desc
	iteration         *prometheus.Desc

	latest simulationSnapshot
}

type simulationSnapshot struct {
	iteration         int
	meanTripDuration  float64
	meanTripLength    float64
	meanLinkDuration  float64
	droppedAgentCount int
}

func NewSimulationCollector(namespace, subsystem string) *SimulationCollector {
	return &SimulationCollector{
		meanTripDuration:  prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "mean_trip_duration_seconds"), "Mean trip duration over the last iteration", nil, nil),
		meanTripLength:    prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "mean_trip_length_meters"), "Mean trip length over the last iteration", nil, nil),
		meanLinkDuration:  prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "mean_link_duration_seconds"), "Mean observed link traversal duration over the last iteration", nil, nil),
		droppedAgentCount: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "dropped_agent_count"), "Agents dropped from the plan set by horizon truncation in the last iteration", nil, nil),
		iteration:         prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "iteration"), "Index of the last completed optimizer iteration", nil, nil),
	}
}

// Set records the latest iteration's metrics for the next Collect call.
func (c *SimulationCollector) Set(iteration int, meanTripDuration, meanTripLength, meanLinkDuration float64, droppedAgentCount int) {
	c.latest = simulationSnapshot{
		iteration:         iteration,
		meanTripDuration:  meanTripDuration,
		meanTripLength:    meanTripLength,
		meanLinkDuration:  meanLinkDuration,
		droppedAgentCount: droppedAgentCount,
	}
}

func (c *SimulationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.meanTripDuration
	ch <- c.meanTripLength
	ch <- c.meanLinkDuration
	ch <- c.droppedAgentCount
	ch <- c.iteration
}

func (c *SimulationCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.latest
	ch <- prometheus.MustNewConstMetric(c.meanTripDuration, prometheus.GaugeValue, s.meanTripDuration)
	ch <- prometheus.MustNewConstMetric(c.meanTripLength, prometheus.GaugeValue, s.meanTripLength)
	ch <- prometheus.MustNewConstMetric(c.meanLinkDuration, prometheus.GaugeValue, s.meanLinkDuration)
	ch <- prometheus.MustNewConstMetric(c.droppedAgentCount, prometheus.GaugeValue, float64(s.droppedAgentCount))
	ch <- prometheus.MustNewConstMetric(c.iteration, prometheus.GaugeValue, float64(s.iteration))
}
