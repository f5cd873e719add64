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

package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adbridge-io/adbridge/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNilMeasures         = errors.New("measures cannot be nil")
	ErrAddressEmpty        = errors.New("platform address is required")
	ErrScopeEmpty          = errors.New("audience scope is required")
	ErrNoRecords           = errors.New("batch carries no records")
	ErrAuthAcquirerFailure = errors.New("failed acquiring auth token")
)

var (
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errDoRequestFailure   = errors.New("http client failed while sending request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONMarshal        = errors.New("failed marshaling batch as JSON payload")
)

const (
	errWrappedFmt  = "%w: %s"
	errorHeaderKey = "errorHeader"

	// ErrorHeaderKey is where the remote platform reports a short error
	// summary alongside its response body.
	ErrorHeaderKey = "X-Platform-Error"
)

// ClientConfig contains config data for the client that uploads batches to
// the remote platform.
type ClientConfig struct {
	// Address is the platform URL (i.e. https://ads.example.io).
	Address string

	// Canary selects the platform's canary API surface instead of the
	// stable one.
	Canary bool

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Auth provides the mechanism to add auth headers to outgoing requests.
	// (Optional) If not provided, no auth headers are added. Token refresh
	// itself happens inside the acquirer, outside this package.
	Auth Auth

	// Logger to be used by the client.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger
}

// Auth contains authorization data for requests to the platform.
type Auth struct {
	JWT   acquire.RemoteBearerTokenAcquirerOptions
	Basic string
}

// UploadResult is the raw upstream response for one batch: status code, body,
// and the platform's error header. It is the correlator's direct input; this
// client never retries and never interprets partial-failure payloads.
type UploadResult struct {
	Code        int
	Body        []byte
	ErrorHeader string
}

// Client uploads assembled batches to the remote platform.
type Client struct {
	client    *http.Client
	auth      acquire.Acquirer
	baseURL   string
	version   APIVersion
	measures  *Measures
	logger    *zap.Logger
	getLogger func(context.Context) *zap.Logger
}

// NewClient creates a new Client that can be used to upload batches.
func NewClient(config ClientConfig, measures *Measures, getLogger func(context.Context) *zap.Logger) (*Client, error) {
	err := validateClientConfig(&config)
	if err != nil {
		return nil, err
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if getLogger == nil {
		getLogger = sallust.Get
	}

	tokenAcquirer, err := NewTokenAcquirer(config.Auth)
	if err != nil {
		return nil, err
	}

	version := SelectVersion(config.Canary)
	return &Client{
		client:    config.HTTPClient,
		auth:      tokenAcquirer,
		baseURL:   config.Address + version.BasePath(),
		version:   version,
		measures:  measures,
		logger:    config.Logger,
		getLogger: getLogger,
	}, nil
}

// Version reports which API surface this client targets. Outgoing telemetry
// is tagged with it.
func (c *Client) Version() APIVersion {
	return c.version
}

// Upload sends one batch to the audience endpoint for the given scope. The
// call is single shot: any retry policy belongs to the caller, guided by the
// correlator's classification. A non-2xx response is not an error here; the
// result is returned as-is so the correlator can classify it.
func (c *Client) Upload(ctx context.Context, scope string, batch model.BatchRequest) (UploadResult, error) {
	if len(scope) < 1 {
		return UploadResult{}, ErrScopeEmpty
	}
	if len(batch.Records) < 1 {
		return UploadResult{}, ErrNoRecords
	}

	data, err := json.Marshal(&batch)
	if err != nil {
		return UploadResult{}, fmt.Errorf(errWrappedFmt, errJSONMarshal, err.Error())
	}

	start := time.Now()
	result, err := c.sendRequest(ctx, http.MethodPost, fmt.Sprintf("%s/audiences/%s/records", c.baseURL, scope), bytes.NewReader(data))
	c.measures.Duration.With(prometheus.Labels{APIVersionLabel: c.version.String()}).Observe(time.Since(start).Seconds())
	if err != nil {
		c.measures.Uploads.With(prometheus.Labels{OutcomeLabel: FailureOutcome, APIVersionLabel: c.version.String()}).Add(1)
		return UploadResult{}, err
	}

	if result.Code < http.StatusOK || result.Code >= http.StatusMultipleChoices {
		l := c.getLogger(ctx)
		if l == nil {
			l = c.logger
		}
		l.Error("platform responded with a non-success status code for an upload request",
			zap.Int("code", result.Code), zap.String(errorHeaderKey, result.ErrorHeader))
		c.measures.Uploads.With(prometheus.Labels{OutcomeLabel: FailureOutcome, APIVersionLabel: c.version.String()}).Add(1)
		return result, nil
	}

	c.measures.Uploads.With(prometheus.Labels{OutcomeLabel: SuccessOutcome, APIVersionLabel: c.version.String()}).Add(1)
	return result, nil
}

func (c *Client) sendRequest(ctx context.Context, method, url string, body io.Reader) (UploadResult, error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return UploadResult{}, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	r.Header.Set("Content-Type", "application/json")
	err = acquire.AddAuth(r, c.auth)
	if err != nil {
		return UploadResult{}, fmt.Errorf(errWrappedFmt, ErrAuthAcquirerFailure, err.Error())
	}
	resp, err := c.client.Do(r)
	if err != nil {
		return UploadResult{}, fmt.Errorf(errWrappedFmt, errDoRequestFailure, err.Error())
	}
	defer resp.Body.Close()
	result := UploadResult{
		Code:        resp.StatusCode,
		ErrorHeader: resp.Header.Get(ErrorHeaderKey),
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}
	result.Body = bodyBytes
	return result, nil
}

// NewTokenAcquirer builds the auth header source shared by every outgoing
// platform request. Refreshing remote bearer tokens is the acquirer's
// business, not this package's.
func NewTokenAcquirer(auth Auth) (acquire.Acquirer, error) {
	if !isEmpty(auth.JWT) {
		return acquire.NewRemoteBearerTokenAcquirer(auth.JWT)
	} else if len(auth.Basic) > 0 {
		return acquire.NewFixedAuthAcquirer(auth.Basic)
	}
	return &acquire.DefaultAcquirer{}, nil
}

func isEmpty(options acquire.RemoteBearerTokenAcquirerOptions) bool {
	return len(options.AuthURL) < 1 || options.Buffer == 0 || options.Timeout == 0
}

func validateClientConfig(config *ClientConfig) error {
	if config.Address == "" {
		return ErrAddressEmpty
	}

	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	if config.Logger == nil {
		config.Logger = sallust.Default()
	}
	return nil
}
