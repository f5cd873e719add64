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

package cassandra

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/adbridge-io/adbridge/journal"
	"github.com/gocql/gocql"
	"github.com/hailocab/go-hostpool"
	"go.uber.org/zap"
)

type dbJournal interface {
	journal.J
	Close()
	Ping() error
}

var (
	noDataResponse = errors.New("no data from query")
	serverClosed   = errors.New("server is closed")
)

type cassandraExecutor struct {
	session *gocql.Session
	logger  *zap.Logger
}

func connect(clusterConfig *gocql.ClusterConfig, logger *zap.Logger) (dbJournal, error) {
	clusterConfig.PoolConfig.HostSelectionPolicy = gocql.HostPoolHostPolicy(hostpool.New(nil))
	session, err := clusterConfig.CreateSession()
	if err != nil {
		return nil, err
	}

	return &cassandraExecutor{session: session, logger: logger}, nil
}

func (s *cassandraExecutor) Push(ctx context.Context, key journal.Key, entry journal.Entry) error {
	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	return s.session.Query("INSERT INTO batch_journal (scope, batch_id, data) VALUES (?,?,?)",
		key.Scope, key.BatchID, data).WithContext(ctx).Exec()
}

func (s *cassandraExecutor) Get(ctx context.Context, key journal.Key) (journal.Entry, error) {
	var data []byte
	iter := s.session.Query("SELECT data from batch_journal WHERE scope = ? AND batch_id = ?",
		key.Scope, key.BatchID).WithContext(ctx).Iter()
	defer func() {
		err := iter.Close()
		if err != nil {
			s.logger.Error("failed to close iter",
				zap.String("scope", key.Scope), zap.String("batchId", key.BatchID))
		}
	}()
	for iter.Scan(&data) {
		entry := journal.Entry{}
		err := json.Unmarshal(data, &entry)
		return entry, err
	}
	return journal.Entry{}, noDataResponse
}

func (s *cassandraExecutor) Delete(ctx context.Context, key journal.Key) (journal.Entry, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return entry, err
	}
	err = s.session.Query("DELETE from batch_journal WHERE scope = ? AND batch_id = ?",
		key.Scope, key.BatchID).WithContext(ctx).Exec()
	return entry, err
}

func (s *cassandraExecutor) GetAll(ctx context.Context, scope string) (map[string]journal.Entry, error) {
	result := map[string]journal.Entry{}
	var (
		batchID string
		data    []byte
	)
	iter := s.session.Query("SELECT batch_id, data from batch_journal WHERE scope = ?",
		scope).WithContext(ctx).Iter()
	for iter.Scan(&batchID, &data) {
		entry := journal.Entry{}
		err := json.Unmarshal(data, &entry)
		if err != nil {
			s.logger.Error("failed to unmarshal data",
				zap.String("scope", scope), zap.String("batchId", batchID))
			data = []byte{}
			batchID = ""
			continue
		}
		result[batchID] = entry
	}
	err := iter.Close()
	return result, err
}

func (s *cassandraExecutor) Close() {
	s.session.Close()
}

func (s *cassandraExecutor) Ping() error {
	if s.session.Closed() {
		return serverClosed
	}
	return nil
}
