/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics registers the Prometheus instrumentation for the client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts controller exchanges by method and status code.
	// Status "0" means the exchange failed before a response arrived.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manager_http_requests_total",
			Help: "Total controller HTTP requests",
		},
		[]string{"method", "status"},
	)

	// HTTPRequestDuration observes end-to-end exchange latency, including
	// any relogin replay.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "manager_http_request_duration_seconds",
			Help:    "Controller HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Relogins counts transparent session refreshes after expiry.
	Relogins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "manager_relogins_total",
			Help: "Total transparent relogins after session expiry",
		},
	)

	// TaskPolls counts task status polls by outcome.
	TaskPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manager_task_polls_total",
			Help: "Total task status polls",
		},
		[]string{"outcome"},
	)

	// TaskWaitDuration observes how long WaitForCompleted blocked, whatever
	// the outcome.
	TaskWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "manager_task_wait_duration_seconds",
			Help:    "Time spent waiting for controller tasks to settle",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// FileTransferBytes totals transfer payload bytes by direction
	// (download or upload).
	FileTransferBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manager_file_transfer_bytes_total",
			Help: "Total file transfer payload bytes",
		},
		[]string{"direction"},
	)
)
