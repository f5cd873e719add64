// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package assemble

import (
	"testing"

	"github.com/adbridge-io/adbridge/identity"
	"github.com/adbridge-io/adbridge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSyncMode(t *testing.T) {
	type testCase struct {
		Description string
		Mode        model.SyncMode
		ExpectsErr  bool
	}

	tcs := []testCase{
		{Description: "Add", Mode: model.SyncAdd},
		{Description: "Mirror", Mode: model.SyncMirror},
		{Description: "Delete", Mode: model.SyncDelete, ExpectsErr: true},
		{Description: "Unknown", Mode: "upsert", ExpectsErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			err := ValidateSyncMode(tc.Mode)
			if tc.ExpectsErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestVariableNames(t *testing.T) {
	assert := assert.New(t)

	records := []model.Record{
		{
			Kind: model.KindEnhancement,
			Fields: map[string]interface{}{
				"email":        "jane@example.com",
				"value":        10,
				"loyalty_tier": "gold",
			},
		},
		{
			Kind: model.KindEnhancement,
			Fields: map[string]interface{}{
				"signup_source": "organic",
				"loyalty_tier":  "silver",
				"timestamp":     "2025-06-01T00:00:00Z",
			},
		},
	}

	assert.Equal([]string{"loyalty_tier", "signup_source"}, VariableNames(records))
	assert.Empty(VariableNames(nil))
}

func TestAssembleChunking(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	records := make([]model.Record, 7)
	for i := range records {
		records[i] = model.Record{
			Kind:   model.KindEnhancement,
			Fields: map[string]interface{}{"email": "jane@example.com"},
		}
	}

	result := Assemble(records, nil, 3, identity.Options{})
	require.Len(result.Chunks, 3)
	assert.Empty(result.Excluded)

	assert.Equal([]int{0, 1, 2}, result.Chunks[0].Indexes)
	assert.Equal([]int{3, 4, 5}, result.Chunks[1].Indexes)
	assert.Equal([]int{6}, result.Chunks[2].Indexes)
	for _, chunk := range result.Chunks {
		assert.Equal(len(chunk.Indexes), len(chunk.Items))
	}
}

func TestAssembleExcludesMalformedRecords(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	records := []model.Record{
		{
			Kind:   model.KindEnhancement,
			Fields: map[string]interface{}{"email": "jane@example.com"},
		},
		{
			Kind:   model.KindEnhancement,
			Fields: map[string]interface{}{"email": "not-an-email"},
		},
	}

	result := Assemble(records, nil, DefaultMaxBatchSize, identity.Options{})
	require.Len(result.Chunks, 1)
	require.Len(result.Excluded, 1)

	// the well-formed record still proceeds
	assert.Equal([]int{0}, result.Chunks[0].Indexes)

	excluded := result.Excluded[0]
	assert.Equal(1, excluded.Index)
	assert.Equal(model.TerminalFailureOutcome, excluded.Status)
	assert.Equal("Email provided doesn't seem to be in a valid format.", excluded.Message)
}

func TestBuildItemMergesIngredients(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	bindings := model.Bindings{{Name: "loyalty_tier", ID: "cv_100"}}
	record := model.Record{
		Kind: model.KindRestatement,
		Fields: map[string]interface{}{
			"email":        "TEST@gmail.com",
			"phone":        "6161729102",
			"city":         "Grand Rapids",
			"eventId":      "evt-1",
			"loyalty_tier": "gold",
			"undeclared":   "dropped",
			"value":        12.5,
			"currency":     "USD",
		},
	}

	item, err := buildItem(record, bindings, identity.Options{})
	require.NoError(err)

	assert.Equal("restatement", item[kindKey])

	identifiers, ok := item[identifiersKey].(model.BatchItem)
	require.True(ok)
	assert.Equal("87924606b4131a8aceeeae8868531fbb9712aaa07a5d3a756b26ce0f5d6ca674", identifiers["hashedEmail"])
	assert.Equal("76ff44c6428f2fc2750fec01cb3190423adaebb21e797d942f339f3c7c1761dd", identifiers["hashedPhone"])
	assert.Equal("grandrapids", identifiers["city"])

	metadata, ok := item[metadataKey].(model.BatchItem)
	require.True(ok)
	assert.Equal("evt-1", metadata["eventId"])

	variables, ok := item[variablesKey].([]model.BatchItem)
	require.True(ok)
	require.Len(variables, 1)
	assert.Equal(model.BatchItem{"id": "cv_100", "value": "gold"}, variables[0])

	restatement, ok := item[restatementKey].(model.BatchItem)
	require.True(ok)
	assert.Equal(12.5, restatement["value"])
	assert.Equal("USD", restatement["currency"])
}

func TestRestatementValueIsPerRecord(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	fields := map[string]interface{}{
		"email": "jane@example.com",
		"value": 20,
	}
	records := []model.Record{
		{Kind: model.KindRestatement, Fields: fields},
		{Kind: model.KindRetraction, Fields: fields},
		{Kind: model.KindEnhancement, Fields: fields},
	}

	result := Assemble(records, nil, DefaultMaxBatchSize, identity.Options{})
	require.Len(result.Chunks, 1)
	items := result.Chunks[0].Items
	require.Len(items, 3)

	assert.Contains(items[0], restatementKey)
	assert.NotContains(items[1], restatementKey)
	assert.Contains(items[2], restatementKey)
}
