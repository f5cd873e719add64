// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/adbridge-io/adbridge/journal"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutItem(ctx context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *mockClient) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockClient) Query(ctx context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *mockClient) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

func testItem() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"scope":      &types.AttributeValueMemberS{Value: "account-1"},
		"batchId":    &types.AttributeValueMemberS{Value: "batch-a"},
		"syncMode":   &types.AttributeValueMemberS{Value: "add"},
		"apiVersion": &types.AttributeValueMemberS{Value: "v3"},
		"total":      &types.AttributeValueMemberN{Value: "2"},
		"succeeded":  &types.AttributeValueMemberN{Value: "1"},
		"retryable":  &types.AttributeValueMemberN{Value: "0"},
		"terminal":   &types.AttributeValueMemberN{Value: "1"},
		"message":    &types.AttributeValueMemberS{Value: "bad email"},
		"createdAt":  &types.AttributeValueMemberN{Value: "1756684800"},
	}
}

func testEntry() journal.Entry {
	return journal.Entry{
		BatchID:    "batch-a",
		Scope:      "account-1",
		SyncMode:   "add",
		APIVersion: "v3",
		Total:      2,
		Succeeded:  1,
		Terminal:   1,
		Message:    "bad email",
		CreatedAt:  1756684800,
	}
}

func TestNewJournalValidation(t *testing.T) {
	assert := assert.New(t)
	_, err := NewJournal(Config{})
	assert.Equal(ErrNoRegion, err)
}

func TestPush(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	m := new(mockClient)
	var captured *dynamodb.PutItemInput
	m.On("PutItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*dynamodb.PutItemInput)
		}).
		Return(&dynamodb.PutItemOutput{}, nil)

	j := newService(m, "batch-journal")
	err := j.Push(context.Background(), journal.Key{Scope: "account-1", BatchID: "batch-a"}, testEntry())
	require.NoError(err)

	require.NotNil(captured)
	assert.Equal("batch-journal", *captured.TableName)
	assert.Equal(&types.AttributeValueMemberS{Value: "account-1"}, captured.Item["scope"])
	assert.Equal(&types.AttributeValueMemberS{Value: "batch-a"}, captured.Item["batchId"])
	assert.Equal(&types.AttributeValueMemberN{Value: "2"}, captured.Item["total"])
}

func TestGet(t *testing.T) {
	type testCase struct {
		Description    string
		Output         *dynamodb.GetItemOutput
		ClientErr      error
		ExpectedEntry  journal.Entry
		ExpectNotFound bool
		ExpectErr      bool
	}

	tcs := []testCase{
		{
			Description:   "Entry found",
			Output:        &dynamodb.GetItemOutput{Item: testItem()},
			ExpectedEntry: testEntry(),
		},
		{
			Description:    "Entry missing",
			Output:         &dynamodb.GetItemOutput{},
			ExpectNotFound: true,
		},
		{
			Description: "Client failure",
			Output:      &dynamodb.GetItemOutput{},
			ClientErr:   errors.New("dynamo is down"),
			ExpectErr:   true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			m := new(mockClient)
			m.On("GetItem", mock.Anything, mock.Anything).Return(tc.Output, tc.ClientErr)

			j := newService(m, "batch-journal")
			entry, err := j.Get(context.Background(), journal.Key{Scope: "account-1", BatchID: "batch-a"})
			if tc.ExpectNotFound {
				assert.True(errors.Is(err, journal.ErrEntryNotFound))
				return
			}
			if tc.ExpectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.ExpectedEntry, entry)
		})
	}
}

func TestGetAll(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	m := new(mockClient)
	var captured *dynamodb.QueryInput
	m.On("Query", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*dynamodb.QueryInput)
		}).
		Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{testItem()}}, nil)

	j := newService(m, "batch-journal")
	entries, err := j.GetAll(context.Background(), "account-1")
	require.NoError(err)
	require.Len(entries, 1)
	assert.Equal(testEntry(), entries["batch-a"])

	require.NotNil(captured)
	assert.Equal("#s = :scope", *captured.KeyConditionExpression)
	assert.Equal(map[string]string{"#s": "scope"}, captured.ExpressionAttributeNames)
}

func TestDelete(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	m := new(mockClient)
	var captured *dynamodb.DeleteItemInput
	m.On("DeleteItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*dynamodb.DeleteItemInput)
		}).
		Return(&dynamodb.DeleteItemOutput{Attributes: testItem()}, nil)

	j := newService(m, "batch-journal")
	entry, err := j.Delete(context.Background(), journal.Key{Scope: "account-1", BatchID: "batch-a"})
	require.NoError(err)
	assert.Equal(testEntry(), entry)

	require.NotNil(captured)
	assert.Equal(types.ReturnValueAllOld, captured.ReturnValues)

	m = new(mockClient)
	m.On("DeleteItem", mock.Anything, mock.Anything).
		Return(&dynamodb.DeleteItemOutput{}, nil)
	j = newService(m, "batch-journal")
	_, err = j.Delete(context.Background(), journal.Key{Scope: "account-1", BatchID: "batch-a"})
	assert.True(errors.Is(err, journal.ErrEntryNotFound))
}
