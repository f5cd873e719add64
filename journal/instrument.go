// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"time"

	"github.com/adbridge-io/adbridge/journal/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Instrument decorates a journal so every operation reports a count and a
// latency observation, regardless of backend.
func Instrument(j J, measures metric.Measures) J {
	return &instrumentedJournal{next: j, measures: measures, now: time.Now}
}

type instrumentedJournal struct {
	next     J
	measures metric.Measures
	now      func() time.Time
}

func (i *instrumentedJournal) Push(ctx context.Context, key Key, entry Entry) error {
	start := i.now()
	err := i.next.Push(ctx, key, entry)
	i.observe(metric.PushOp, start, err)
	return err
}

func (i *instrumentedJournal) Get(ctx context.Context, key Key) (Entry, error) {
	start := i.now()
	entry, err := i.next.Get(ctx, key)
	i.observe(metric.ReadOp, start, err)
	return entry, err
}

func (i *instrumentedJournal) GetAll(ctx context.Context, scope string) (map[string]Entry, error) {
	start := i.now()
	entries, err := i.next.GetAll(ctx, scope)
	i.observe(metric.ReadOp, start, err)
	return entries, err
}

func (i *instrumentedJournal) Delete(ctx context.Context, key Key) (Entry, error) {
	start := i.now()
	entry, err := i.next.Delete(ctx, key)
	i.observe(metric.DeleteOp, start, err)
	return entry, err
}

func (i *instrumentedJournal) observe(operation string, start time.Time, err error) {
	outcome := metric.SuccessOutcome
	if err != nil {
		outcome = metric.FailureOutcome
	}
	i.measures.Operations.With(prometheus.Labels{
		metric.OperationLabel: operation,
		metric.OutcomeLabel:   outcome,
	}).Add(1)
	i.measures.Duration.With(prometheus.Labels{
		metric.OperationLabel: operation,
	}).Observe(i.now().Sub(start).Seconds())
}
