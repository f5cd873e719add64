// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"time"

	"github.com/adbridge-io/adbridge/journal"
	"github.com/adbridge-io/adbridge/journal/cassandra"
	"github.com/adbridge-io/adbridge/journal/dynamodb"
	"github.com/adbridge-io/adbridge/journal/inmem"
	"github.com/adbridge-io/adbridge/journal/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Configs selects the journal backend. The first non-nil config wins; with
// neither set, batch summaries live in process memory.
type Configs struct {
	Dynamo    *dynamodb.Config
	Cassandra *cassandra.Config

	// Retention bounds the in-memory backend only; the database backends
	// manage their own expiry.
	Retention time.Duration
}

type SetupIn struct {
	fx.In
	Configs  Configs
	Measures metric.Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		metric.ProvideMetrics(),
		fx.Provide(
			SetupJournal,
		),
	)
}

func SetupJournal(in SetupIn) (journal.J, error) {
	j, err := newBackend(in)
	if err != nil {
		return nil, err
	}
	return journal.Instrument(j, in.Measures), nil
}

func newBackend(in SetupIn) (journal.J, error) {
	if in.Configs.Dynamo != nil {
		in.Logger.Info("using dynamodb journal implementation")
		return dynamodb.NewJournal(*in.Configs.Dynamo)
	}
	if in.Configs.Cassandra != nil {
		in.Logger.Info("using cassandra journal implementation")
		return cassandra.NewCassandra(*in.Configs.Cassandra, in.LC, in.Logger)
	}
	in.Logger.Info("using in memory journal implementation")
	return inmem.NewInMem(in.Configs.Retention), nil
}
