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

package upload

import (
	"context"
	"errors"

	"github.com/adbridge-io/adbridge/assemble"
	"github.com/adbridge-io/adbridge/journal"
	"github.com/adbridge-io/adbridge/model"
	"github.com/adbridge-io/adbridge/pipeline"
	"github.com/go-kit/kit/endpoint"
)

// Processor runs one batch through the upload pipeline. *pipeline.Pipeline
// satisfies it.
type Processor interface {
	Process(ctx context.Context, scope string, mode model.SyncMode, records []model.Record) (pipeline.Receipt, error)
}

func newUploadEndpoint(p Processor) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*uploadRequest)
		if !ok {
			return nil, ErrCasting
		}
		receipt, err := p.Process(ctx, r.scope, r.syncMode, r.records)
		if err != nil {
			var syncModeErr assemble.UnsupportedSyncModeErr
			if errors.As(err, &syncModeErr) || errors.Is(err, pipeline.ErrScopeEmpty) {
				return nil, &BadRequestErr{Message: err.Error()}
			}
			return nil, err
		}
		return &receipt, nil
	}
}

func newBatchStatusEndpoint(j journal.J) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*batchStatusRequest)
		if !ok {
			return nil, ErrCasting
		}
		entry, err := j.Get(ctx, r.key)
		if err != nil {
			return nil, err
		}
		return &entry, nil
	}
}

func newBatchListEndpoint(j journal.J) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*batchListRequest)
		if !ok {
			return nil, ErrCasting
		}
		return j.GetAll(ctx, r.scope)
	}
}
