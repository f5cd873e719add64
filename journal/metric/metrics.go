// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	OperationCounter           = "journal_operations_total"
	OperationDurationHistogram = "journal_operation_duration_seconds"
)

// Labels
const (
	OperationLabel = "operation"
	OutcomeLabel   = "outcome"
)

// Label Values
const (
	PushOp   = "push"
	ReadOp   = "read"
	DeleteOp = "delete"

	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: OperationCounter,
				Help: "Counter for batch journal operations, partitioned by operation and outcome.",
			},
			OperationLabel, OutcomeLabel,
		),
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    OperationDurationHistogram,
				Help:    "A histogram of latencies for batch journal operations.",
				Buckets: []float64{0.0625, 0.125, .25, .5, 1, 5, 10, 20, 40, 80, 160},
			},
			OperationLabel,
		),
	)
}

type Measures struct {
	fx.In
	Operations *prometheus.CounterVec `name:"journal_operations_total"`
	Duration   prometheus.ObserverVec `name:"journal_operation_duration_seconds"`
}
