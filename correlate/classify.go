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
	"net/http"
	"strings"

	"github.com/adbridge-io/adbridge/model"
)

// Platform error codes documented as transient: re-sending the same batch
// unmodified can plausibly succeed. Extend per platform as new codes are
// catalogued.
var retryableCodes = map[string]bool{
	"CONCURRENT_MODIFICATION": true,
	"RATE_EXCEEDED":           true,
	"RESOURCE_EXHAUSTED":      true,
	"QUOTA_LIMIT_REACHED":     true,
	"INTERNAL_ERROR":          true,
	"SERVICE_UNAVAILABLE":     true,
}

// Codes for which re-sending without modification is expected to fail
// identically.
var terminalCodes = map[string]bool{
	"INVALID_ARGUMENT":   true,
	"MALFORMED_ARGUMENT": true,
	"INVALID_FORMAT":     true,
	"PERMISSION_DENIED":  true,
	"NOT_FOUND":          true,
	"UNSUPPORTED_FIELD":  true,
}

// Some platforms skip structured codes and only ship prose. These fragments
// mark the transient ones.
var retryableFragments = []string{
	"unable to save rows",
	"concurrent modification",
	"rate limit",
	"too many requests",
}

// Transport errors are presumed transient (the request may never have reached
// the platform) unless the failure text clearly says otherwise.
var terminalTransportFragments = []string{
	"auth",
	"permission denied",
	"invalid",
}

// classifyCode resolves a platform error code and message into an outcome
// classification. Unknown codes are treated as terminal: blindly retrying an
// uncatalogued failure is worse than surfacing it.
func classifyCode(code, message string) model.OutcomeStatus {
	if retryableCodes[code] {
		return model.RetryableFailureOutcome
	}
	if terminalCodes[code] {
		return model.TerminalFailureOutcome
	}
	lowered := strings.ToLower(message)
	for _, fragment := range retryableFragments {
		if strings.Contains(lowered, fragment) {
			return model.RetryableFailureOutcome
		}
	}
	return model.TerminalFailureOutcome
}

// classifyHTTPStatus covers full failures that carry no structured platform
// error: rate limiting, concurrency conflicts, and 5xx are worth a retry.
func classifyHTTPStatus(code int) model.OutcomeStatus {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusConflict:
		return model.RetryableFailureOutcome
	case code >= http.StatusInternalServerError:
		return model.RetryableFailureOutcome
	}
	return model.TerminalFailureOutcome
}

func classifyTransportErr(err error) model.OutcomeStatus {
	lowered := strings.ToLower(err.Error())
	for _, fragment := range terminalTransportFragments {
		if strings.Contains(lowered, fragment) {
			return model.TerminalFailureOutcome
		}
	}
	return model.RetryableFailureOutcome
}
