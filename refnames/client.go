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

package refnames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adbridge-io/adbridge/platform"
	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrAddressEmpty = errors.New("reference lookup address is required")
	ErrScopeEmpty   = errors.New("reference lookup scope is required")
)

var (
	errNonSuccessResponse = errors.New("reference lookup responded with a non-success status code")
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errDoRequestFailure   = errors.New("http client failed while sending request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONUnmarshal      = errors.New("failed unmarshaling JSON response payload")
)

const (
	referencesAPIPath = "/api/v1/scopes"
	errWrappedFmt     = "%w: %s"
	errStatusCodeFmt  = "%w: received status %v"
	errorHeaderKey    = "errorHeader"
)

// ClientConfig contains config data for the client that enumerates declared
// references from the remote platform.
type ClientConfig struct {
	// Address is the platform URL (i.e. https://ads.example.io).
	Address string

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Auth provides the mechanism to add auth headers to outgoing requests.
	// (Optional) If not provided, no auth headers are added.
	Auth platform.Auth

	// Logger to be used by the client.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger
}

// Client fetches reference declarations over HTTP. It satisfies Lookup, so a
// per-batch Cache can sit directly in front of it.
type Client struct {
	client    *http.Client
	auth      acquire.Acquirer
	baseURL   string
	logger    *zap.Logger
	getLogger func(context.Context) *zap.Logger
}

func NewClient(config ClientConfig, getLogger func(context.Context) *zap.Logger) (*Client, error) {
	err := validateClientConfig(&config)
	if err != nil {
		return nil, err
	}
	if getLogger == nil {
		getLogger = sallust.Get
	}

	tokenAcquirer, err := platform.NewTokenAcquirer(config.Auth)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:    config.HTTPClient,
		auth:      tokenAcquirer,
		baseURL:   config.Address + referencesAPIPath,
		logger:    config.Logger,
		getLogger: getLogger,
	}, nil
}

// ListReferences fetches the full enumeration of references declared in a
// scope. The endpoint does not filter by usage; callers filter locally.
func (c *Client) ListReferences(ctx context.Context, scope string) ([]Reference, error) {
	if len(scope) < 1 {
		return nil, ErrScopeEmpty
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/references", c.baseURL, scope), nil)
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	err = acquire.AddAuth(r, c.auth)
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, platform.ErrAuthAcquirerFailure, err.Error())
	}

	resp, err := c.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, errDoRequestFailure, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		l := c.getLogger(ctx)
		if l == nil {
			l = c.logger
		}
		l.Error("reference lookup responded with non-200 response",
			zap.Int("code", resp.StatusCode), zap.String(errorHeaderKey, resp.Header.Get(platform.ErrorHeaderKey)))
		return nil, fmt.Errorf(errStatusCodeFmt, errNonSuccessResponse, resp.StatusCode)
	}

	var refs []Reference
	err = json.Unmarshal(body, &refs)
	if err != nil {
		return nil, fmt.Errorf("ListReferences: %w: %s", errJSONUnmarshal, err.Error())
	}

	return refs, nil
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
