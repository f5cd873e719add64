/**
 * Copyright 2025 The adbridge Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package platform

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	UploadCounter           = "platform_uploads_total"
	UploadDurationHistogram = "platform_upload_duration_seconds"
	RecordCounter           = "platform_records_total"
)

// Labels
const (
	OutcomeLabel    = "outcome"
	APIVersionLabel = "api_version"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"

	RetryableOutcome = "retryable"
	TerminalOutcome  = "terminal"
)

// ProvideMetrics returns the Metrics relevant to this package.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: UploadCounter,
				Help: "Counter for upstream batch upload requests and their transport outcomes.",
			},
			OutcomeLabel, APIVersionLabel,
		),
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    UploadDurationHistogram,
				Help:    "A histogram of latencies for upstream batch upload requests.",
				Buckets: []float64{0.0625, 0.125, .25, .5, 1, 5, 10, 20, 40, 80, 160},
			},
			APIVersionLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RecordCounter,
				Help: "Counter for individual record outcomes across all processed batches.",
			},
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Uploads  *prometheus.CounterVec `name:"platform_uploads_total"`
	Duration prometheus.ObserverVec `name:"platform_upload_duration_seconds"`
	Records  *prometheus.CounterVec `name:"platform_records_total"`
}
