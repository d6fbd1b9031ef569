// Package metrics provides Prometheus metrics for the Sorrel service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefreshRunsTotal tracks refresh runs by terminal status
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of refresh runs by terminal status",
		},
		[]string{"status", "trigger"},
	)

	// RefreshRunDuration tracks refresh run duration in seconds
	RefreshRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sorrel",
			Subsystem: "refresh",
			Name:      "run_duration_seconds",
			Help:      "Duration of refresh runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	// RefreshInFlight tracks whether a refresh run is currently executing
	RefreshInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sorrel",
			Subsystem: "refresh",
			Name:      "runs_in_flight",
			Help:      "Number of refresh runs currently executing",
		},
	)

	// StageRecordsIn tracks records entering each pipeline stage
	StageRecordsIn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "pipeline",
			Name:      "stage_records_in_total",
			Help:      "Total number of records entering each pipeline stage",
		},
		[]string{"stage"},
	)

	// StageRecordsDropped tracks records dropped by each pipeline stage
	StageRecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "pipeline",
			Name:      "stage_records_dropped_total",
			Help:      "Total number of records dropped by each pipeline stage",
		},
		[]string{"stage"},
	)

	// CellsCoercedNull tracks source cells nulled by failed coercion
	CellsCoercedNull = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "ingest",
			Name:      "cells_coerced_null_total",
			Help:      "Total number of source cells loaded as null after failed coercion",
		},
		[]string{"column"},
	)

	// FactRowsPublished tracks the size of the last published fact table
	FactRowsPublished = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sorrel",
			Subsystem: "fact",
			Name:      "rows_published",
			Help:      "Number of rows in the most recently published fact table",
		},
	)
)

// RecordRun records the outcome of one refresh run
func RecordRun(status, trigger string, durationSeconds float64) {
	RefreshRunsTotal.WithLabelValues(status, trigger).Inc()
	RefreshRunDuration.Observe(durationSeconds)
}

// RecordStage records the row movement of one pipeline stage
func RecordStage(stage string, in, out int) {
	StageRecordsIn.WithLabelValues(stage).Add(float64(in))
	if dropped := in - out; dropped > 0 {
		StageRecordsDropped.WithLabelValues(stage).Add(float64(dropped))
	}
}

// RecordCoercedCells records per-column coercion failures from one load
func RecordCoercedCells(counts map[string]int) {
	for column, count := range counts {
		CellsCoercedNull.WithLabelValues(column).Add(float64(count))
	}
}
