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

// Package pipeline drives one batch of customer-event records from raw input
// to per-record outcomes: normalize identifiers, resolve reference names,
// assemble order-preserving chunks, upload each chunk once, and correlate the
// upstream responses back onto input positions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adbridge-io/adbridge/assemble"
	"github.com/adbridge-io/adbridge/correlate"
	"github.com/adbridge-io/adbridge/identity"
	"github.com/adbridge-io/adbridge/journal"
	"github.com/adbridge-io/adbridge/model"
	"github.com/adbridge-io/adbridge/platform"
	"github.com/adbridge-io/adbridge/refnames"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNilUploader  = errors.New("uploader cannot be nil")
	ErrNilLookup    = errors.New("reference lookup cannot be nil")
	ErrNilMeasures  = errors.New("measures cannot be nil")
	ErrScopeEmpty   = errors.New("audience scope is required")
	errResolvingRef = errors.New("failed resolving reference names")
)

// Uploader sends one assembled chunk upstream. *platform.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, scope string, batch model.BatchRequest) (platform.UploadResult, error)
	Version() platform.APIVersion
}

// Config contains config data for a batch pipeline.
type Config struct {
	// MaxBatchSize caps how many records ride in one upstream request.
	// (Optional) Defaults to assemble.DefaultMaxBatchSize.
	MaxBatchSize int

	// CountryCode is prepended to phone numbers that arrive without one.
	// (Optional) Defaults to identity.DefaultCountryCode.
	CountryCode string
}

// Receipt is what one batch call hands back: a queryable batch ID and one
// outcome per input record, in input order.
type Receipt struct {
	BatchID  string                `json:"batchId"`
	Outcomes []model.RecordOutcome `json:"outcomes"`
}

// Pipeline processes batches for upload. Safe for concurrent use; reference
// bindings are cached per call, never across calls.
type Pipeline struct {
	config    Config
	uploader  Uploader
	lookup    refnames.Lookup
	journal   journal.J
	measures  *platform.Measures
	getLogger func(context.Context) *zap.Logger
}

// New creates a Pipeline. The journal may be nil, in which case batch
// summaries are simply not recorded.
func New(config Config, uploader Uploader, lookup refnames.Lookup, j journal.J, measures *platform.Measures, getLogger func(context.Context) *zap.Logger) (*Pipeline, error) {
	if uploader == nil {
		return nil, ErrNilUploader
	}
	if lookup == nil {
		return nil, ErrNilLookup
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = assemble.DefaultMaxBatchSize
	}
	if config.CountryCode == "" {
		config.CountryCode = identity.DefaultCountryCode
	}
	if getLogger == nil {
		getLogger = sallust.Get
	}
	return &Pipeline{
		config:    config,
		uploader:  uploader,
		lookup:    lookup,
		journal:   j,
		measures:  measures,
		getLogger: getLogger,
	}, nil
}

// Process uploads one batch of records for a scope and returns one outcome per
// record, in input order. Validation failures (bad scope, unsupported sync
// mode) surface as errors before any network traffic. Upstream failures never
// surface as errors; they land in the per-record outcomes instead, classified
// as retryable or terminal.
func (p *Pipeline) Process(ctx context.Context, scope string, mode model.SyncMode, records []model.Record) (Receipt, error) {
	if len(scope) < 1 {
		return Receipt{}, ErrScopeEmpty
	}
	if err := assemble.ValidateSyncMode(mode); err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{BatchID: uuid.NewString()}
	if len(records) < 1 {
		return receipt, nil
	}

	bindings, err := p.resolveBindings(ctx, scope, records)
	if err != nil {
		return Receipt{}, err
	}

	assembled := assemble.Assemble(records, bindings, p.config.MaxBatchSize, identity.Options{CountryCode: p.config.CountryCode})

	outcomes := make([]model.RecordOutcome, len(records))
	for i := range outcomes {
		outcomes[i] = model.RecordOutcome{Index: i, Status: model.UnknownOutcome}
	}
	for _, excluded := range assembled.Excluded {
		outcomes[excluded.Index] = excluded
	}

	for _, chunk := range assembled.Chunks {
		result, err := p.uploader.Upload(ctx, scope, model.BatchRequest{
			SyncMode: mode,
			Records:  chunk.Items,
		})
		for _, outcome := range correlate.Correlate(chunk.Indexes, correlate.UpstreamResult{
			Code: result.Code,
			Body: result.Body,
			Err:  err,
		}) {
			outcomes[outcome.Index] = outcome
		}
	}
	receipt.Outcomes = outcomes

	p.countRecords(outcomes)
	p.journalReceipt(ctx, scope, mode, receipt)
	return receipt, nil
}

// resolveBindings gathers the distinct reference names the batch uses and
// resolves them with at most one remote enumeration per scope. A batch with no
// named references skips the network entirely.
func (p *Pipeline) resolveBindings(ctx context.Context, scope string, records []model.Record) (model.Bindings, error) {
	names := assemble.VariableNames(records)
	if len(names) < 1 {
		return model.Bindings{}, nil
	}
	cache, err := refnames.NewCache(p.lookup)
	if err != nil {
		return nil, err
	}
	bindings, err := cache.Resolve(ctx, scope, names)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errResolvingRef, err.Error())
	}
	return bindings, nil
}

func (p *Pipeline) countRecords(outcomes []model.RecordOutcome) {
	tallies := map[model.OutcomeStatus]float64{}
	for _, outcome := range outcomes {
		tallies[outcome.Status]++
	}
	for status, count := range tallies {
		p.measures.Records.With(prometheus.Labels{platform.OutcomeLabel: outcomeLabelValue(status)}).Add(count)
	}
}

// journalReceipt records the batch summary. Journal trouble is logged, never
// propagated: the upload already happened and the caller has its outcomes.
func (p *Pipeline) journalReceipt(ctx context.Context, scope string, mode model.SyncMode, receipt Receipt) {
	if p.journal == nil {
		return
	}
	entry := journal.Entry{
		BatchID:    receipt.BatchID,
		Scope:      scope,
		SyncMode:   string(mode),
		APIVersion: p.uploader.Version().String(),
		Total:      len(receipt.Outcomes),
		CreatedAt:  time.Now().Unix(),
	}
	for _, outcome := range receipt.Outcomes {
		switch outcome.Status {
		case model.SuccessOutcome:
			entry.Succeeded++
		case model.RetryableFailureOutcome:
			entry.Retryable++
		case model.TerminalFailureOutcome:
			entry.Terminal++
		}
		if entry.Message == "" && outcome.Message != "" {
			entry.Message = outcome.Message
		}
	}
	err := p.journal.Push(ctx, journal.Key{Scope: scope, BatchID: receipt.BatchID}, entry)
	if err != nil {
		p.getLogger(ctx).Error("failed journaling batch summary",
			zap.String("batchId", receipt.BatchID), zap.Error(err))
	}
}

func outcomeLabelValue(status model.OutcomeStatus) string {
	switch status {
	case model.SuccessOutcome:
		return platform.SuccessOutcome
	case model.RetryableFailureOutcome:
		return platform.RetryableOutcome
	case model.TerminalFailureOutcome:
		return platform.TerminalOutcome
	default:
		return platform.FailureOutcome
	}
}
