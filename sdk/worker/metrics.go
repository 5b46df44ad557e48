// Copyright 2025 The sdk-core Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	activations   prometheus.Counter
	jobs          prometheus.Counter
	completions   prometheus.Counter
	externalCalls prometheus.Counter
	failures      prometheus.Counter
	engines       prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, taskQueue string) *metrics {
	labels := prometheus.Labels{"task_queue": taskQueue}
	factory := promauto.With(reg)
	return &metrics{
		activations: factory.NewCounter(prometheus.CounterOpts{
			Name:        "workflow_worker_activations_total",
			Help:        "Activations received from the service.",
			ConstLabels: labels,
		}),
		jobs: factory.NewCounter(prometheus.CounterOpts{
			Name:        "workflow_worker_jobs_total",
			Help:        "Activation jobs dispatched to engines.",
			ConstLabels: labels,
		}),
		completions: factory.NewCounter(prometheus.CounterOpts{
			Name:        "workflow_worker_completions_total",
			Help:        "Activation completions published to the service.",
			ConstLabels: labels,
		}),
		externalCalls: factory.NewCounter(prometheus.CounterOpts{
			Name:        "workflow_worker_external_calls_total",
			Help:        "External dependency calls executed for workflows.",
			ConstLabels: labels,
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name:        "workflow_worker_failures_total",
			Help:        "Activations that failed fatally in the engine.",
			ConstLabels: labels,
		}),
		engines: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "workflow_worker_cached_engines",
			Help:        "Workflow run engines held in the worker cache.",
			ConstLabels: labels,
		}),
	}
}
