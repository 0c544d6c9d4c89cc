// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ursa-labs/arrow/go/arrow/compute"
)

// PrometheusCollector records function executions as prometheus
// metrics. Register it with a prometheus.Registerer and pass it to an
// ExecCtx with functions.WithMetrics.
type PrometheusCollector struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compute",
			Name:      "function_calls_total",
			Help:      "Number of compute function calls by outcome.",
		}, []string{"function", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "compute",
			Name:      "function_duration_seconds",
			Help:      "Time spent executing compute functions.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"function"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compute",
			Name:      "function_rows_total",
			Help:      "Number of input rows processed by compute functions.",
		}, []string{"function"}),
	}
}

func (p *PrometheusCollector) ObserveExecution(function string, length int64, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.calls.WithLabelValues(function, status).Inc()
	p.duration.WithLabelValues(function).Observe(duration.Seconds())
	if err == nil && length > 0 {
		p.rows.WithLabelValues(function).Add(float64(length))
	}
}

// CallsCounter returns the call counter of function with the given
// status, "ok" or "error".
func (p *PrometheusCollector) CallsCounter(function, status string) prometheus.Counter {
	return p.calls.WithLabelValues(function, status)
}

func (p *PrometheusCollector) RowsCounter(function string) prometheus.Counter {
	return p.rows.WithLabelValues(function)
}

func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	p.calls.Describe(ch)
	p.duration.Describe(ch)
	p.rows.Describe(ch)
}

func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	p.calls.Collect(ch)
	p.duration.Collect(ch)
	p.rows.Collect(ch)
}

var (
	_ compute.MetricsCollector = (*PrometheusCollector)(nil)
	_ prometheus.Collector     = (*PrometheusCollector)(nil)
)
