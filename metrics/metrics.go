// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines the prometheus collectors of the API layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
	OutcomeQuota       = "quota_exceeded"
	OutcomeTimeout     = "timeout"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing,
// which keeps tests and CLI commands free of registry plumbing.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	locationWrites   *prometheus.CounterVec
	rejected         *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handyman",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "handyman",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handyman",
			Name:      "upstream_requests_total",
			Help:      "Calls to external providers by provider and outcome.",
		}, []string{"provider", "outcome"}),
		locationWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handyman",
			Name:      "location_writes_total",
			Help:      "Location updates by table and outcome.",
		}, []string{"table", "outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "handyman",
			Name:      "rejected_requests_total",
			Help:      "Operations refused before reaching a provider or the database.",
		}, []string{"operation"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.upstreamRequests,
		m.locationWrites,
		m.rejected,
	)

	return m
}

// ObserveHTTP records a finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Upstream records a call to an external provider.
func (m *Metrics) Upstream(provider, outcome string) {
	if m == nil {
		return
	}

	m.upstreamRequests.WithLabelValues(provider, outcome).Inc()
}

// LocationWrite records a location update attempt.
func (m *Metrics) LocationWrite(table, outcome string) {
	if m == nil {
		return
	}

	m.locationWrites.WithLabelValues(table, outcome).Inc()
}

// Rejected records an operation refused because of its input.
func (m *Metrics) Rejected(operation string) {
	if m == nil {
		return
	}

	m.rejected.WithLabelValues(operation).Inc()
}
