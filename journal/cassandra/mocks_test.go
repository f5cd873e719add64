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

	"github.com/adbridge-io/adbridge/journal"
	"github.com/stretchr/testify/mock"
)

type mockDB struct {
	mock.Mock
}

func (s *mockDB) Push(ctx context.Context, key journal.Key, entry journal.Entry) error {
	args := s.Called(ctx, key, entry)
	return args.Error(0)
}

func (s *mockDB) Get(ctx context.Context, key journal.Key) (journal.Entry, error) {
	args := s.Called(ctx, key)
	return args.Get(0).(journal.Entry), args.Error(1)
}

func (s *mockDB) Delete(ctx context.Context, key journal.Key) (journal.Entry, error) {
	args := s.Called(ctx, key)
	return args.Get(0).(journal.Entry), args.Error(1)
}

func (s *mockDB) GetAll(ctx context.Context, scope string) (map[string]journal.Entry, error) {
	args := s.Called(ctx, scope)
	return args.Get(0).(map[string]journal.Entry), args.Error(1)
}

func (s *mockDB) Close() {
	s.Called()
}

func (s *mockDB) Ping() error {
	args := s.Called()
	return args.Error(0)
}
