// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package refnames

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientConfig(t *testing.T) {
	type testCase struct {
		Description string
		Input       *ClientConfig
		ExpectedErr error
	}

	tcs := []testCase{
		{
			Description: "No address",
			Input:       &ClientConfig{},
			ExpectedErr: ErrAddressEmpty,
		},
		{
			Description: "Defaults are filled in",
			Input:       &ClientConfig{Address: "http://ads.example.io"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			err := validateClientConfig(tc.Input)
			assert.Equal(tc.ExpectedErr, err)
			if tc.ExpectedErr == nil {
				assert.Equal(http.DefaultClient, tc.Input.HTTPClient)
				assert.NotNil(tc.Input.Logger)
			}
		})
	}
}

func TestListReferences(t *testing.T) {
	type testCase struct {
		Description  string
		Scope        string
		ResponseCode int
		ResponseBody string
		Expected     []Reference
		ExpectedErr  error
	}

	tcs := []testCase{
		{
			Description: "Empty scope",
			ExpectedErr: ErrScopeEmpty,
		},
		{
			Description:  "Non-200 response",
			Scope:        "account-1",
			ResponseCode: http.StatusForbidden,
			ExpectedErr:  errNonSuccessResponse,
		},
		{
			Description:  "Bad JSON",
			Scope:        "account-1",
			ResponseCode: http.StatusOK,
			ResponseBody: "{",
			ExpectedErr:  errJSONUnmarshal,
		},
		{
			Description:  "Success",
			Scope:        "account-1",
			ResponseCode: http.StatusOK,
			ResponseBody: `[{"name":"loyalty_tier","id":"cv_100"},{"name":"signup_source","id":"cv_200"}]`,
			Expected: []Reference{
				{Name: "loyalty_tier", ID: "cv_100"},
				{Name: "signup_source", ID: "cv_200"},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			var (
				assert  = assert.New(t)
				require = require.New(t)
			)

			var requestedPath string
			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
				requestedPath = r.URL.Path
				rw.WriteHeader(tc.ResponseCode)
				rw.Write([]byte(tc.ResponseBody))
			}))
			defer server.Close()

			client, err := NewClient(ClientConfig{
				Address:    server.URL,
				HTTPClient: server.Client(),
			}, nil)
			require.NoError(err)

			refs, err := client.ListReferences(context.Background(), tc.Scope)

			if tc.ExpectedErr != nil {
				assert.True(errors.Is(err, tc.ExpectedErr))
				return
			}
			require.NoError(err)
			assert.Equal(tc.Expected, refs)
			assert.Equal("/api/v1/scopes/account-1/references", requestedPath)
		})
	}
}
