// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics counts completion requests, errors and written artifacts
// on a private Prometheus registry. A CLI process is short lived, so the
// registry is exported as a node-exporter textfile rather than scraped.
//
// All methods are safe on a nil *Recorder, which records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "intellidb"

type Recorder struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	artifacts *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_requests_total",
				Help:      "Number of completion requests by model",
			},
			[]string{"model"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Errors encountered in components",
			},
			[]string{"component", "type"},
		),
		artifacts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_written_total",
				Help:      "Generated files written to disk by artifact kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Duration of completion requests",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 9), // 0.5s..128s
			},
			[]string{"model"},
		),
	}

	r.registry.MustRegister(r.requests, r.errors, r.artifacts, r.duration)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) IncRequest(model string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(model).Inc()
}

func (r *Recorder) IncError(component, typ string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(component, typ).Inc()
}

func (r *Recorder) IncArtifact(kind string) {
	if r == nil {
		return
	}
	r.artifacts.WithLabelValues(kind).Inc()
}

func (r *Recorder) ObserveDuration(model string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(model).Observe(d.Seconds())
}

// WriteTextfile dumps every metric in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
