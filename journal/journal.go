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

package journal

import (
	"context"
	"errors"
	"net/http"
)

// Key locates one journal entry.
type Key struct {
	// Scope is the audience scope the batch was uploaded for.
	Scope string `json:"scope"`

	// BatchID uniquely names one batch upload attempt.
	BatchID string `json:"batchId"`
}

// Entry summarizes the outcome of one batch upload. Entries are written after
// correlation and are the source of truth for "what happened to my batch"
// queries; they never store record contents.
type Entry struct {
	BatchID    string `json:"batchId"`
	Scope      string `json:"scope"`
	SyncMode   string `json:"syncMode"`
	APIVersion string `json:"apiVersion"`

	// Per-record outcome tallies. Total is always the sum of the other three
	// plus any records still unknown at write time.
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Retryable int `json:"retryable"`
	Terminal  int `json:"terminal"`

	// Message carries the representative failure message, if any.
	Message string `json:"message,omitempty"`

	// CreatedAt is a unix timestamp in seconds.
	CreatedAt int64 `json:"createdAt"`
}

// ErrEntryNotFound is returned when no journal entry exists for a key.
var ErrEntryNotFound = errors.New("journal entry not found")

// J is the interface to a journal backend.
type J interface {
	// Push adds the entry to the journal, overwriting any previous entry
	// under the same key.
	Push(ctx context.Context, key Key, entry Entry) error

	// Get fetches the entry at this key, or ErrEntryNotFound.
	Get(ctx context.Context, key Key) (Entry, error)

	// GetAll fetches every entry recorded for a scope, keyed by batch ID.
	GetAll(ctx context.Context, scope string) (map[string]Entry, error)

	// Delete removes and returns the entry at this key.
	Delete(ctx context.Context, key Key) (Entry, error)
}

// SanitizedError pairs a journal error with the HTTP status a transport
// should report for it, without leaking driver internals.
type SanitizedError struct {
	Err        error
	StatusCode int
}

func (s SanitizedError) Error() string {
	return s.Err.Error()
}

func (s SanitizedError) Unwrap() error {
	return s.Err
}

// Sanitize maps a backend error to its transport-facing form.
func Sanitize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEntryNotFound) {
		return SanitizedError{Err: err, StatusCode: http.StatusNotFound}
	}
	return SanitizedError{Err: err, StatusCode: http.StatusInternalServerError}
}
