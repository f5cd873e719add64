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

package correlate

import (
	"encoding/json"
	"fmt"

	"github.com/adbridge-io/adbridge/model"
)

// UpstreamResult carries what the transport produced for one chunk: status
// code and body when the HTTP exchange completed, or the transport error when
// it did not. Exactly one of the two shapes is meaningful.
type UpstreamResult struct {
	Code int
	Body []byte
	Err  error
}

// Wire shape of the platform's response body. A partial failure arrives
// without a fatal top-level status; its entries carry a representative code
// and message but no reliable per-record index.
type uploadResponse struct {
	PartialFailure *partialFailureError `json:"partialFailureError"`
}

type partialFailureError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []errorEntry `json:"errors"`
}

type errorEntry struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Correlate maps one chunk's upstream result back onto the original record
// indexes, producing exactly one outcome per index, in the given order.
//
// The platforms in scope do not attribute partial failures to a specific
// record, so every record in the chunk receives the same representative
// message and classification. Fabricating per-record precision the upstream
// contract does not guarantee would only mislead callers.
func Correlate(indexes []int, result UpstreamResult) []model.RecordOutcome {
	status, message := evaluate(result)
	outcomes := make([]model.RecordOutcome, 0, len(indexes))
	for _, index := range indexes {
		outcomes = append(outcomes, model.RecordOutcome{
			Index:   index,
			Status:  status,
			Message: message,
		})
	}
	return outcomes
}

// evaluate runs the per-batch state machine: AllSucceeded, FullFailure, or
// PartialFailure.
func evaluate(result UpstreamResult) (model.OutcomeStatus, string) {
	if result.Err != nil {
		return classifyTransportErr(result.Err), result.Err.Error()
	}

	if result.Code < 200 || result.Code > 299 {
		// prefer the platform's structured error over the bare status code
		if pf := parsePartialFailure(result.Body); pf != nil {
			code, message := representative(pf)
			return classifyCode(code, message), message
		}
		return classifyHTTPStatus(result.Code), fmt.Sprintf("upstream responded with status %d", result.Code)
	}

	pf := parsePartialFailure(result.Body)
	if pf == nil {
		return model.SuccessOutcome, ""
	}
	code, message := representative(pf)
	return classifyCode(code, message), message
}

func parsePartialFailure(body []byte) *partialFailureError {
	if len(body) == 0 {
		return nil
	}
	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	if resp.PartialFailure == nil {
		return nil
	}
	if len(resp.PartialFailure.Errors) == 0 && resp.PartialFailure.Code == "" && resp.PartialFailure.Message == "" {
		return nil
	}
	return resp.PartialFailure
}

// representative picks the code and message attributed uniformly across the
// chunk: the first error entry when present, the top-level pair otherwise.
func representative(pf *partialFailureError) (string, string) {
	if len(pf.Errors) > 0 {
		first := pf.Errors[0]
		message := first.Message
		if message == "" {
			message = pf.Message
		}
		code := first.Code
		if code == "" {
			code = pf.Code
		}
		return code, message
	}
	return pf.Code, pf.Message
}
