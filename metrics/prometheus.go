// Copyright 2025 TimeWtr
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"net/http"

	bf "github.com/TimeWtr/ByteFlow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mc       *Prometheus
	registry *prometheus.Registry // Indicator registry
)

// GetHandler Return HTTP handler for docking with various frameworks
func GetHandler() http.Handler {
	return promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}

var _ Collector = (*Prometheus)(nil)

type Prometheus struct {
	enabled        bool                   // Whether to enable indicator collection
	appendCounter  *prometheus.CounterVec // The total number of append calls
	appendSizes    prometheus.Counter     // total bytes appended
	appendErrors   prometheus.Counter     // Append failure error count
	extractCounter *prometheus.CounterVec // The total number of extract calls
	extractSizes   prometheus.Counter     // total bytes drained by consumers
	extractErrors  prometheus.Counter     // Extract failure error count
	refillCounts   prometheus.Counter     // External reader refill times
	refillSizes    prometheus.Counter     // Bytes pulled from external readers
	refillFailures prometheus.Counter     // External reader terminal failures
	waiters        prometheus.Gauge       // Number of registered blocking waiters
	waitLatency    prometheus.Histogram   // Blocking wait latency
	status         prometheus.Gauge       // Current lifecycle status
	poolAlloc      prometheus.Counter     // Object pool allocation times
}

func NewPrometheus() *Prometheus {
	mc = &Prometheus{}
	registry = prometheus.NewRegistry()
	return mc.register()
}

func (p *Prometheus) register() *Prometheus {
	const namespace = "byteflow"
	p.appendCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "append_counts_total",
		Help:      "Number of append operations.",
	}, []string{"result"})
	registry.MustRegister(p.appendCounter)

	p.appendSizes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "append_bytes_total",
		Help:      "Number of bytes appended by producers.",
	})
	registry.MustRegister(p.appendSizes)

	p.appendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "append_errors_total",
		Help:      "Number of errors encountered by append.",
	})
	registry.MustRegister(p.appendErrors)

	p.extractCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extract_counts_total",
		Help:      "Number of extract operations.",
	}, []string{"result"})
	registry.MustRegister(p.extractCounter)

	p.extractSizes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extract_bytes_total",
		Help:      "Number of bytes drained by consumers.",
	})
	registry.MustRegister(p.extractSizes)

	p.extractErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extract_errors_total",
		Help:      "Number of errors encountered by extract.",
	})
	registry.MustRegister(p.extractErrors)

	p.refillCounts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refill_counts_total",
		Help:      "Number of external reader refills.",
	})
	registry.MustRegister(p.refillCounts)

	p.refillSizes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refill_bytes_total",
		Help:      "Number of bytes pulled from external readers.",
	})
	registry.MustRegister(p.refillSizes)

	p.refillFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refill_failures_total",
		Help:      "Number of terminal external reader failures.",
	})
	registry.MustRegister(p.refillFailures)

	p.waiters = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "blocking_waiters",
		Help:      "Number of consumers currently blocked waiting for data.",
	})
	registry.MustRegister(p.waiters)

	p.waitLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "wait_latency_milliseconds",
		Help:      "Latency between a consumer blocking and its wakeup.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
	registry.MustRegister(p.waitLatency)

	p.status = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_status",
		Help:      "Current lifecycle status (0 Ready, 1 ReadOnly, 2 EoF, 3 Error).",
	})
	registry.MustRegister(p.status)

	p.poolAlloc = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pool_alloc_total",
		Help:      "Number of scratch pool allocations.",
	})
	registry.MustRegister(p.poolAlloc)

	return p
}

func (p *Prometheus) CollectSwitcher(enable bool) {
	p.enabled = enable
}

func (p *Prometheus) ObserveAppend(counts, bytes, errors float64) {
	if !p.enabled {
		return
	}

	p.appendCounter.WithLabelValues("success").Add(counts)
	p.appendSizes.Add(bytes)
	p.appendErrors.Add(errors)
}

func (p *Prometheus) ObserveExtract(counts, bytes, errors float64) {
	if !p.enabled {
		return
	}

	p.extractCounter.WithLabelValues("success").Add(counts)
	p.extractSizes.Add(bytes)
	p.extractErrors.Add(errors)
}

func (p *Prometheus) ObserveRefill(counts, bytes, failures float64) {
	if !p.enabled {
		return
	}

	p.refillCounts.Add(counts)
	p.refillSizes.Add(bytes)
	p.refillFailures.Add(failures)
}

func (p *Prometheus) ObserveWaiters(op bf.OperationType, delta float64) {
	if !p.enabled {
		return
	}

	if op == bf.MetricsIncOp {
		p.waiters.Add(delta)
		return
	}

	p.waiters.Sub(delta)
}

func (p *Prometheus) ObserveWaitLatency(millis float64) {
	if !p.enabled {
		return
	}

	p.waitLatency.Observe(millis)
}

func (p *Prometheus) ObserveStatus(status float64) {
	if !p.enabled {
		return
	}

	p.status.Set(status)
}

func (p *Prometheus) AllocInc(delta float64) {
	if !p.enabled {
		return
	}

	p.poolAlloc.Add(delta)
}
