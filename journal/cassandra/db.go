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
	"errors"
	"time"

	"emperror.dev/emperror"
	"github.com/adbridge-io/adbridge/journal"
	"github.com/gocql/gocql"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultOpTimeout             = time.Duration(10) * time.Second
	defaultDatabase              = "adbridge"
	defaultNumRetries            = 0
	defaultWaitTimeMult          = 1
	defaultMaxNumberConnsPerHost = 2
)

// Config contains all the configuration to connect to the cassandra cluster
// holding the journal table.
type Config struct {
	// Hosts to connect to. Must have at least one.
	Hosts []string

	// Database aka Keyspace for cassandra.
	Database string

	// OpTimeout applies to each query.
	OpTimeout time.Duration

	// SSLRootCert used for enabling tls to the cluster. SSLKey and SSLCert
	// must also be set.
	SSLRootCert string
	// SSLKey used for enabling tls to the cluster. SSLRootCert and SSLCert
	// must also be set.
	SSLKey string
	// SSLCert used for enabling tls to the cluster. SSLRootCert and SSLKey
	// must also be set.
	SSLCert string
	// EnableHostVerification turns on hostname and server cert verification.
	// The inverse of InsecureSkipVerify in crypto/tls.
	EnableHostVerification bool

	// Username to authenticate into the cluster. Password must also be provided.
	Username string
	// Password to authenticate into the cluster. Username must also be provided.
	Password string

	// NumRetries for connecting to the db.
	NumRetries int

	// WaitTimeMult the amount of time to wait before retrying to connect to the db.
	WaitTimeMult time.Duration

	// MaxConnsPerHost max number of connections per host.
	MaxConnsPerHost int
}

// Client is a cassandra-backed journal.
type Client struct {
	client dbJournal
	config Config
	logger *zap.Logger
}

// NewCassandra connects to the cluster and ties the session's shutdown to the
// fx lifecycle.
func NewCassandra(config Config, lc fx.Lifecycle, logger *zap.Logger) (journal.J, error) {
	client, err := CreateCassandraClient(config, logger)
	if err != nil {
		return nil, err
	}
	ticker := doEvery(time.Second*5, func(_ time.Time) {
		if err := client.Ping(); err != nil {
			logger.Error("cassandra ping failed", zap.Error(err))
		}
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			ticker.Stop()
			client.Close()
			return nil
		},
	})
	return client, nil
}

func doEvery(d time.Duration, f func(time.Time)) *time.Ticker {
	ticker := time.NewTicker(d)
	go func() {
		for x := range ticker.C {
			f(x)
		}
	}()
	return ticker
}

func CreateCassandraClient(config Config, logger *zap.Logger) (*Client, error) {
	if len(config.Hosts) == 0 {
		return nil, errors.New("number of hosts must be > 0")
	}

	validateConfig(&config)

	clusterConfig := gocql.NewCluster(config.Hosts...)
	clusterConfig.Consistency = gocql.LocalQuorum
	clusterConfig.Keyspace = config.Database
	clusterConfig.Timeout = config.OpTimeout
	clusterConfig.NumConns = config.MaxConnsPerHost
	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 1}
	if config.SSLRootCert != "" && config.SSLCert != "" && config.SSLKey != "" {
		clusterConfig.SslOpts = &gocql.SslOptions{
			CertPath:               config.SSLCert,
			KeyPath:                config.SSLKey,
			CaPath:                 config.SSLRootCert,
			EnableHostVerification: config.EnableHostVerification,
		}
	}
	if config.Username != "" && config.Password != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	session, err := connect(clusterConfig, logger)

	// retry if it fails
	waitTime := 1 * time.Second
	for attempt := 0; attempt < config.NumRetries && err != nil; attempt++ {
		time.Sleep(waitTime)
		session, err = connect(clusterConfig, logger)
		waitTime = waitTime * config.WaitTimeMult
	}
	if err != nil {
		return nil, emperror.WrapWith(err, "Connecting to database failed", "hosts", config.Hosts)
	}

	return &Client{
		client: session,
		config: config,
		logger: logger,
	}, nil
}

func (s *Client) Push(ctx context.Context, key journal.Key, entry journal.Entry) error {
	return s.client.Push(ctx, key, entry)
}

func (s *Client) Get(ctx context.Context, key journal.Key) (journal.Entry, error) {
	entry, err := s.client.Get(ctx, key)
	if errors.Is(err, noDataResponse) {
		return entry, journal.Sanitize(journal.ErrEntryNotFound)
	}
	return entry, err
}

func (s *Client) GetAll(ctx context.Context, scope string) (map[string]journal.Entry, error) {
	return s.client.GetAll(ctx, scope)
}

func (s *Client) Delete(ctx context.Context, key journal.Key) (journal.Entry, error) {
	entry, err := s.client.Delete(ctx, key)
	if errors.Is(err, noDataResponse) {
		return entry, journal.Sanitize(journal.ErrEntryNotFound)
	}
	return entry, err
}

func (s *Client) Close() {
	s.client.Close()
}

// Ping is for pinging the database to verify that the connection is still good.
func (s *Client) Ping() error {
	if err := s.client.Ping(); err != nil {
		return emperror.WrapWith(err, "Pinging connection failed")
	}
	return nil
}

func validateConfig(config *Config) {
	zeroDuration := time.Duration(0) * time.Second

	if config.OpTimeout == zeroDuration {
		config.OpTimeout = defaultOpTimeout
	}
	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if config.NumRetries < 0 {
		config.NumRetries = defaultNumRetries
	}
	if config.WaitTimeMult < 1 {
		config.WaitTimeMult = defaultWaitTimeMult
	}
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = defaultMaxNumberConnsPerHost
	}
}
