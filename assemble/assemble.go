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

package assemble

import (
	"sort"

	"github.com/adbridge-io/adbridge/identity"
	"github.com/adbridge-io/adbridge/model"
	"github.com/spf13/cast"
)

// DefaultMaxBatchSize caps how many records ride in one upstream request when
// the caller does not supply a platform-specific limit.
const DefaultMaxBatchSize = 500

// Reserved record field names. Anything else is treated as a named custom
// variable and must resolve to a declared reference before going on the wire.
const (
	valueField     = "value"
	currencyField  = "currency"
	eventIDField   = "eventId"
	timestampField = "timestamp"
)

// Wire keys inside a serialized item.
const (
	kindKey        = "kind"
	identifiersKey = "matchIdentifiers"
	metadataKey    = "metadata"
	variablesKey   = "customVariables"
	restatementKey = "restatementValue"
)

var identifierKinds = map[string]identity.Kind{
	"email":     identity.Email,
	"phone":     identity.Phone,
	"firstName": identity.FirstName,
	"lastName":  identity.LastName,
	"street":    identity.Street,
	"city":      identity.City,
	"region":    identity.Region,
}

var identifierWireKeys = map[identity.Kind]string{
	identity.Email:     "hashedEmail",
	identity.Phone:     "hashedPhone",
	identity.FirstName: "hashedFirstName",
	identity.LastName:  "hashedLastName",
	identity.Street:    "hashedStreet",
	identity.City:      "city",
	identity.Region:    "region",
}

// Chunk is one upstream request's worth of serialized records, paired with
// the original positions they came from. Indexes[i] always corresponds to
// Items[i]; that pairing is what lets the correlator hand outcomes back in
// input order.
type Chunk struct {
	Items   []model.BatchItem
	Indexes []int
}

// Result is what assembly produces for one batch call.
type Result struct {
	Chunks []Chunk

	// Excluded carries the terminal outcomes for records that failed local
	// validation. They never consume a network call.
	Excluded []model.RecordOutcome
}

// VariableNames returns the distinct custom-variable names referenced across
// records. Names are sorted within each record so the result is deterministic
// regardless of map iteration order.
func VariableNames(records []model.Record) []string {
	var names []string
	seen := map[string]bool{}
	for _, record := range records {
		for _, name := range sortedFieldNames(record) {
			if _, reserved := identifierKinds[name]; reserved {
				continue
			}
			switch name {
			case valueField, currencyField, eventIDField, timestampField:
				continue
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Assemble serializes records into order-preserving chunks of at most maxSize
// items. Relative order holds both between and within chunks. Records whose
// identifiers fail validation are excluded from the outgoing chunks and
// reported under Excluded instead; well-formed neighbors still proceed.
// Assembly never fails for well-formed input.
func Assemble(records []model.Record, bindings model.Bindings, maxSize int, opts identity.Options) Result {
	if maxSize <= 0 {
		maxSize = DefaultMaxBatchSize
	}

	var (
		result  Result
		current Chunk
	)
	for i, record := range records {
		item, err := buildItem(record, bindings, opts)
		if err != nil {
			result.Excluded = append(result.Excluded, model.RecordOutcome{
				Index:   i,
				Status:  model.TerminalFailureOutcome,
				Message: err.Error(),
			})
			continue
		}
		current.Items = append(current.Items, item)
		current.Indexes = append(current.Indexes, i)
		if len(current.Items) == maxSize {
			result.Chunks = append(result.Chunks, current)
			current = Chunk{}
		}
	}
	if len(current.Items) > 0 {
		result.Chunks = append(result.Chunks, current)
	}
	return result
}

// buildItem merges the three ingredient groups into one wire item: non-PII
// fields passed through, hashed identifiers substituted for PII fields, and
// binding substitutions applied to named reference fields. The input record
// is never mutated.
func buildItem(record model.Record, bindings model.Bindings, opts identity.Options) (model.BatchItem, error) {
	identifiers := model.BatchItem{}
	metadata := model.BatchItem{}
	var variables []model.BatchItem

	for _, name := range sortedFieldNames(record) {
		value := record.Fields[name]

		if kind, ok := identifierKinds[name]; ok {
			hashed, err := identity.Normalize(kind, cast.ToString(value), opts)
			if err != nil {
				return nil, err
			}
			if hashed.Digest == "" {
				continue
			}
			identifiers[identifierWireKeys[kind]] = hashed.Digest
			continue
		}

		switch name {
		case valueField, currencyField:
			// folded into the restatement sub-object below
		case eventIDField, timestampField:
			metadata[name] = value
		default:
			id, ok := bindings.Lookup(name)
			if !ok {
				// undeclared reference names are dropped, not failed
				continue
			}
			variables = append(variables, model.BatchItem{"id": id, "value": cast.ToString(value)})
		}
	}

	item := model.BatchItem{
		kindKey:        string(record.Kind),
		identifiersKey: identifiers,
	}
	if len(metadata) > 0 {
		item[metadataKey] = metadata
	}
	if len(variables) > 0 {
		item[variablesKey] = variables
	}

	// The restatement sub-object rides along for enhancement and restatement
	// records only. Retractions must omit it entirely, and the decision is
	// made per record even within a shared batch.
	if record.Kind != model.KindRetraction {
		restatement := model.BatchItem{}
		if v, ok := record.Fields[valueField]; ok {
			restatement[valueField] = cast.ToFloat64(v)
		}
		if cur, ok := record.Fields[currencyField]; ok {
			restatement[currencyField] = cast.ToString(cur)
		}
		if len(restatement) > 0 {
			item[restatementKey] = restatement
		}
	}

	return item, nil
}

func sortedFieldNames(record model.Record) []string {
	names := make([]string, 0, len(record.Fields))
	for name := range record.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
