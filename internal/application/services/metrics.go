package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_processed_total",
			Help: "Total number of events fully applied to the ledger",
		},
		[]string{"type"},
	)

	eventsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_skipped_total",
			Help: "Total number of events dropped without ledger writes",
		},
		[]string{"reason"},
	)

	lastReducedBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_last_reduced_block",
			Help: "Last block whose events have been fully reduced",
		},
	)
)
