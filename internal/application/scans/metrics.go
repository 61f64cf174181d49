package scans

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scansTotal counts completed scans by terminal status.
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artscan_scans_total",
		Help: "Total completed scans by outcome",
	}, []string{"status"})

	// externalLatency measures external call latency per dependency.
	externalLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artscan_external_call_seconds",
		Help:    "Latency of external embedding/analysis calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"dependency"})
)
