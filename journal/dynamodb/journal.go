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

package dynamodb

import (
	"context"
	"errors"

	"github.com/adbridge-io/adbridge/journal"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultTable = "batch-journal"

var (
	ErrNoRegion = errors.New("an AWS region is required")
)

// Config contains all the configuration to connect to the dynamodb journal
// table. The table hashes on scope and ranges on batchId.
type Config struct {
	// Table is the name of the journal table.
	// (Optional) Defaults to "batch-journal".
	Table string

	// Endpoint is an optional service URL override, useful for local stacks.
	Endpoint string

	// Region is the AWS region of the table.
	Region string

	// AccessKey and SecretKey provide static credentials. When either is
	// empty, the SDK's default credential chain applies.
	AccessKey string
	SecretKey string
}

// client is the subset of the dynamodb API the journal touches.
type client interface {
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, input *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, input *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type service struct {
	c     client
	table string
}

// storedEntry is the dynamodb item shape. scope and batchId double as the
// table keys.
type storedEntry struct {
	Scope      string `dynamodbav:"scope"`
	BatchID    string `dynamodbav:"batchId"`
	SyncMode   string `dynamodbav:"syncMode"`
	APIVersion string `dynamodbav:"apiVersion"`
	Total      int    `dynamodbav:"total"`
	Succeeded  int    `dynamodbav:"succeeded"`
	Retryable  int    `dynamodbav:"retryable"`
	Terminal   int    `dynamodbav:"terminal"`
	Message    string `dynamodbav:"message"`
	CreatedAt  int64  `dynamodbav:"createdAt"`
}

// NewJournal builds a dynamodb-backed journal from config.
func NewJournal(config Config) (journal.J, error) {
	if config.Region == "" {
		return nil, ErrNoRegion
	}
	if config.Table == "" {
		config.Table = defaultTable
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKey != "" && config.SecretKey != "" {
		loadOptions = append(loadOptions,
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOptions...)
	if err != nil {
		return nil, err
	}

	c := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})
	return newService(c, config.Table), nil
}

func newService(c client, table string) journal.J {
	return &service{c: c, table: table}
}

func (s *service) Push(ctx context.Context, key journal.Key, entry journal.Entry) error {
	item, err := attributevalue.MarshalMap(storedEntry{
		Scope:      key.Scope,
		BatchID:    key.BatchID,
		SyncMode:   entry.SyncMode,
		APIVersion: entry.APIVersion,
		Total:      entry.Total,
		Succeeded:  entry.Succeeded,
		Retryable:  entry.Retryable,
		Terminal:   entry.Terminal,
		Message:    entry.Message,
		CreatedAt:  entry.CreatedAt,
	})
	if err != nil {
		return err
	}
	_, err = s.c.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	return err
}

func (s *service) Get(ctx context.Context, key journal.Key) (journal.Entry, error) {
	output, err := s.c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyAttributes(key),
	})
	if err != nil {
		return journal.Entry{}, journal.Sanitize(err)
	}
	if len(output.Item) == 0 {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	return unmarshalEntry(output.Item)
}

func (s *service) GetAll(ctx context.Context, scope string) (map[string]journal.Entry, error) {
	// "scope" is a dynamodb reserved word, hence the name substitution
	output, err := s.c.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(s.table),
		KeyConditionExpression:   aws.String("#s = :scope"),
		ExpressionAttributeNames: map[string]string{"#s": "scope"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":scope": &types.AttributeValueMemberS{Value: scope},
		},
	})
	if err != nil {
		return nil, journal.Sanitize(err)
	}
	result := make(map[string]journal.Entry, len(output.Items))
	for _, item := range output.Items {
		entry, err := unmarshalEntry(item)
		if err != nil {
			return nil, err
		}
		result[entry.BatchID] = entry
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, key journal.Key) (journal.Entry, error) {
	output, err := s.c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          keyAttributes(key),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return journal.Entry{}, journal.Sanitize(err)
	}
	if len(output.Attributes) == 0 {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	return unmarshalEntry(output.Attributes)
}

func keyAttributes(key journal.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"scope":   &types.AttributeValueMemberS{Value: key.Scope},
		"batchId": &types.AttributeValueMemberS{Value: key.BatchID},
	}
}

func unmarshalEntry(item map[string]types.AttributeValue) (journal.Entry, error) {
	var stored storedEntry
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return journal.Entry{}, err
	}
	return journal.Entry{
		BatchID:    stored.BatchID,
		Scope:      stored.Scope,
		SyncMode:   stored.SyncMode,
		APIVersion: stored.APIVersion,
		Total:      stored.Total,
		Succeeded:  stored.Succeeded,
		Retryable:  stored.Retryable,
		Terminal:   stored.Terminal,
		Message:    stored.Message,
		CreatedAt:  stored.CreatedAt,
	}, nil
}
