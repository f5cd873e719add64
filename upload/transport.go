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
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/adbridge-io/adbridge/journal"
	"github.com/adbridge-io/adbridge/model"
	"github.com/adbridge-io/adbridge/pipeline"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
)

// request URL path keys
const (
	scopeVarKey = "scope"
	batchVarKey = "batchId"
)

const (
	scopeVarMissingMsg = "{scope} URL path parameter missing"
	batchVarMissingMsg = "{batchId} URL path parameter missing"
)

// Response Headers
const (
	AdbridgeErrorHeaderKey = "X-Adbridge-Error"
)

// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
// encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

type uploadRequest struct {
	scope    string
	syncMode model.SyncMode
	records  []model.Record
}

type uploadRequestBody struct {
	SyncMode model.SyncMode `json:"syncMode"`
	Records  []model.Record `json:"records"`
}

type batchStatusRequest struct {
	key journal.Key
}

type batchListRequest struct {
	scope string
}

func decodeUploadRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	scope, ok := vars[scopeVarKey]
	if !ok {
		return nil, &BadRequestErr{Message: scopeVarMissingMsg}
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &BadRequestErr{Message: "failed to read body"}
	}

	body := uploadRequestBody{}
	err = json.Unmarshal(data, &body)
	if err != nil {
		return nil, &BadRequestErr{Message: "failed to unmarshal json"}
	}

	if len(body.Records) < 1 {
		return nil, &BadRequestErr{Message: "records field must be set"}
	}

	return &uploadRequest{
		scope:    scope,
		syncMode: body.SyncMode,
		records:  body.Records,
	}, nil
}

func decodeBatchStatusRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	scope, ok := vars[scopeVarKey]
	if !ok {
		return nil, &BadRequestErr{Message: scopeVarMissingMsg}
	}
	batchID, ok := vars[batchVarKey]
	if !ok {
		return nil, &BadRequestErr{Message: batchVarMissingMsg}
	}
	return &batchStatusRequest{
		key: journal.Key{Scope: scope, BatchID: batchID},
	}, nil
}

func decodeBatchListRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	scope, ok := vars[scopeVarKey]
	if !ok {
		return nil, &BadRequestErr{Message: scopeVarMissingMsg}
	}
	return &batchListRequest{scope: scope}, nil
}

func encodeUploadResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	receipt, ok := response.(*pipeline.Receipt)
	if !ok {
		return ErrCasting
	}
	data, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	rw.Header().Add("Content-Type", "application/json")
	rw.Write(data)
	return nil
}

func encodeBatchStatusResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	entry, ok := response.(*journal.Entry)
	if !ok {
		return ErrCasting
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	rw.Header().Add("Content-Type", "application/json")
	rw.Write(data)
	return nil
}

func encodeBatchListResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	entries, ok := response.(map[string]journal.Entry)
	if !ok {
		return ErrCasting
	}
	list := []journal.Entry{}
	for _, entry := range entries {
		list = append(list, entry)
	}
	data, err := json.Marshal(&list)
	if err != nil {
		return err
	}
	rw.Header().Add("Content-Type", "application/json")
	rw.Write(data)
	return nil
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set(AdbridgeErrorHeaderKey, err.Error())
	if headerer, ok := err.(kithttp.Headerer); ok {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	code := http.StatusInternalServerError
	if sc, ok := err.(kithttp.StatusCoder); ok {
		code = sc.StatusCode()
	}
	var sanitized journal.SanitizedError
	if errors.As(err, &sanitized) {
		code = sanitized.StatusCode
	}
	w.WriteHeader(code)
}
