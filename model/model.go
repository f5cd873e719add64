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

package model

// SyncMode declares how the remote audience should treat the records in
// a batch.
type SyncMode string

const (
	// SyncAdd appends the batch's identities to the remote audience.
	SyncAdd SyncMode = "add"

	// SyncMirror replaces the remote audience with the batch's identities.
	SyncMirror SyncMode = "mirror"

	// SyncDelete removes the batch's identities from the remote audience.
	SyncDelete SyncMode = "delete"
)

// RecordKind selects the serialization policy for one record. The policy is
// evaluated independently per record, never per batch.
type RecordKind string

const (
	KindEnhancement RecordKind = "enhancement"
	KindRestatement RecordKind = "restatement"
	KindRetraction  RecordKind = "retraction"
)

// Record is one logical identity or event to be uploaded. Fields maps raw
// field names to raw values: PII identifiers, passthrough metadata, and named
// custom variables share the one namespace and are classified at assembly
// time. A record's identity within a batch is its position, which is stable
// for the lifetime of the batch call.
type Record struct {
	Kind   RecordKind             `json:"kind"`
	Fields map[string]interface{} `json:"fields"`
}

// OutcomeStatus is the final classification for one record of a batch.
type OutcomeStatus int64

const (
	UnknownOutcome OutcomeStatus = iota

	// SuccessOutcome means the platform accepted the record.
	SuccessOutcome

	// RetryableFailureOutcome means re-sending the same batch unmodified can
	// plausibly succeed.
	RetryableFailureOutcome

	// TerminalFailureOutcome means re-sending without modification is
	// expected to fail identically.
	TerminalFailureOutcome
)

func (s OutcomeStatus) String() string {
	switch s {
	case SuccessOutcome:
		return "success"
	case RetryableFailureOutcome:
		return "retryable"
	case TerminalFailureOutcome:
		return "terminal"
	}
	return "unknown"
}

// MarshalJSON encodes the status under its string form so API consumers never
// see the internal enumeration values.
func (s OutcomeStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// RecordOutcome is the per-record result of one batch call. Message carries
// the upstream-provided error text verbatim so failures stay debuggable
// against the remote platform's own error catalog.
type RecordOutcome struct {
	Index   int           `json:"index"`
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}

// Binding resolves a human-readable reference name to the remote platform's
// opaque resource ID.
type Binding struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Bindings is an ordered name to ID mapping. Order follows the order in which
// the names were requested from the resolver.
type Bindings []Binding

// Lookup returns the ID bound to name. The second return is false when the
// name is unbound.
func (b Bindings) Lookup(name string) (string, bool) {
	for _, binding := range b {
		if binding.Name == name {
			return binding.ID, true
		}
	}
	return "", false
}

// BatchItem is the serialized wire form of one record.
type BatchItem map[string]interface{}

// BatchRequest is a single outgoing payload carrying many records. The order
// of Records matches the caller's input order exactly; it is the only
// correlation key available for matching response errors back to inputs.
type BatchRequest struct {
	SyncMode SyncMode    `json:"syncMode"`
	Records  []BatchItem `json:"records"`
}
