// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmailDigest = "87924606b4131a8aceeeae8868531fbb9712aaa07a5d3a756b26ce0f5d6ca674"
	testPhoneDigest = "76ff44c6428f2fc2750fec01cb3190423adaebb21e797d942f339f3c7c1761dd"
)

func TestNormalizeEmail(t *testing.T) {
	type testCase struct {
		Description    string
		Input          string
		ExpectedDigest string
		ExpectsErr     bool
	}

	tcs := []testCase{
		{
			Description:    "Mixed case and whitespace",
			Input:          "  TEST@gmail.com ",
			ExpectedDigest: testEmailDigest,
		},
		{
			Description:    "Already canonical",
			Input:          "test@gmail.com",
			ExpectedDigest: testEmailDigest,
		},
		{
			Description:    "Already hashed passes through",
			Input:          testEmailDigest,
			ExpectedDigest: testEmailDigest,
		},
		{
			Description: "Not an address",
			Input:       "not-an-email",
			ExpectsErr:  true,
		},
		{
			Description: "Empty",
			Input:       "",
			ExpectsErr:  true,
		},
		{
			Description: "Truncated digest is not an email",
			Input:       testEmailDigest[:63],
			ExpectsErr:  true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			hashed, err := Normalize(Email, tc.Input, Options{})
			if tc.ExpectsErr {
				var formatErr InvalidFormatErr
				assert.True(errors.As(err, &formatErr))
				assert.Equal("Email provided doesn't seem to be in a valid format.", err.Error())
				return
			}
			assert.NoError(err)
			assert.Equal(tc.ExpectedDigest, hashed.Digest)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	type testCase struct {
		Description    string
		Input          string
		CountryCode    string
		ExpectedDigest string
	}

	tcs := []testCase{
		{
			Description:    "Bare national number gets the default code",
			Input:          "6161729102",
			ExpectedDigest: testPhoneDigest,
		},
		{
			Description:    "Already prefixed number is untouched",
			Input:          "+16161729102",
			ExpectedDigest: testPhoneDigest,
		},
		{
			Description:    "Formatting characters are stripped",
			Input:          "(616) 172-9102",
			ExpectedDigest: testPhoneDigest,
		},
		{
			Description:    "Explicit country code",
			Input:          "6161729102",
			CountryCode:    "+1",
			ExpectedDigest: testPhoneDigest,
		},
		{
			Description:    "Already hashed passes through",
			Input:          testPhoneDigest,
			ExpectedDigest: testPhoneDigest,
		},
		{
			Description:    "No digits degrades to empty",
			Input:          "--",
			ExpectedDigest: "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			hashed, err := Normalize(Phone, tc.Input, Options{CountryCode: tc.CountryCode})
			assert.NoError(err)
			assert.Equal(tc.ExpectedDigest, hashed.Digest)
		})
	}
}

func TestNormalizeNameAndAddress(t *testing.T) {
	type testCase struct {
		Description    string
		Kind           Kind
		Input          string
		ExpectedDigest string
	}

	tcs := []testCase{
		{
			Description:    "Last name drops punctuation before hashing",
			Kind:           LastName,
			Input:          " D'Oe ",
			ExpectedDigest: "799ef92a11af918e3fb741df42934f3b568ed2d93ac1df74f1b8d41a27932a6f",
		},
		{
			Description:    "Street is case folded then hashed",
			Kind:           Street,
			Input:          "123 Main St",
			ExpectedDigest: "c56a092e33fef672c4d8658e31ad4b17e8ceac569d5a88ca481846966d364fe5",
		},
		{
			Description:    "City stays cleaned plaintext",
			Kind:           City,
			Input:          "New York",
			ExpectedDigest: "newyork",
		},
		{
			Description:    "Region stays cleaned plaintext",
			Kind:           Region,
			Input:          "MI",
			ExpectedDigest: "mi",
		},
		{
			Description:    "First name degrades to empty",
			Kind:           FirstName,
			Input:          "12345",
			ExpectedDigest: "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			hashed, err := Normalize(tc.Kind, tc.Input, Options{})
			assert.NoError(err)
			assert.Equal(tc.ExpectedDigest, hashed.Digest)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	type testCase struct {
		Description string
		Kind        Kind
		Input       string
	}

	tcs := []testCase{
		{Description: "Email", Kind: Email, Input: "TEST@gmail.com"},
		{Description: "Phone", Kind: Phone, Input: "6161729102"},
		{Description: "FirstName", Kind: FirstName, Input: "Jane"},
		{Description: "LastName", Kind: LastName, Input: "Doe"},
		{Description: "Street", Kind: Street, Input: "123 Main St"},
		{Description: "City", Kind: City, Input: "Grand Rapids"},
		{Description: "Region", Kind: Region, Input: "Michigan"},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			var (
				assert  = assert.New(t)
				require = require.New(t)
			)
			first, err := Normalize(tc.Kind, tc.Input, Options{})
			require.NoError(err)

			second, err := Normalize(tc.Kind, first.Digest, Options{})
			require.NoError(err)
			assert.Equal(first.Digest, second.Digest)
		})
	}
}
