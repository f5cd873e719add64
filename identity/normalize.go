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

package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind enumerates the PII field kinds the normalizer understands.
type Kind string

const (
	Email     Kind = "email"
	Phone     Kind = "phone"
	FirstName Kind = "firstName"
	LastName  Kind = "lastName"
	Street    Kind = "street"
	City      Kind = "city"
	Region    Kind = "region"
)

// DigestFormatRegexSource matches a hex-encoded SHA-256 digest (i.e.
// 7e8c5f378b4addbaebc70897c4478cca06009e3e360208ebd073dbee4b3774e7). Input
// that already matches this shape passes through unchanged, which keeps
// normalization idempotent under repeated application.
const DigestFormatRegexSource = "^[0-9a-f]{64}$"

// DefaultCountryCode is prefixed to phone numbers that carry no country
// calling code when the caller supplies none.
const DefaultCountryCode = "+1"

const invalidEmailMsg = "Email provided doesn't seem to be in a valid format."

var (
	digestFormatRegex = regexp.MustCompile(DigestFormatRegexSource)
	nonDigitRegex     = regexp.MustCompile(`[^0-9]`)
	nonAlphaRegex     = regexp.MustCompile(`[^a-z]`)
)

var validate = validator.New()

// InvalidFormatErr reports a PII value the remote platform could never match.
// It is a local, pre-flight error: affected records are resolved terminally
// without consuming a network call.
type InvalidFormatErr struct {
	Field   Kind
	Message string
}

func (e InvalidFormatErr) Error() string {
	return e.Message
}

// Options tunes normalization for the calling connector.
type Options struct {
	// CountryCode is the calling code prefixed to phone numbers missing one.
	// (Optional) Defaults to DefaultCountryCode.
	CountryCode string
}

// Hashed is the normalized form of one PII field of one record. For hashed
// kinds Digest is the hex-encoded SHA-256 of Canonical; for geography kinds
// (city, region) the platform matches on cleaned plaintext and Digest carries
// the canonical string itself.
type Hashed struct {
	Kind      Kind
	Canonical string
	Digest    string
}

// Normalize canonicalizes raw for the remote platform's matching algorithm
// and produces the value placed on the wire. The input is never mutated, and
// feeding a previous output back in returns it unchanged.
//
// Only a malformed email fails; every other kind degrades to an empty digest
// so one bad attribute never sinks the whole record.
func Normalize(kind Kind, raw string, opts Options) (Hashed, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))

	if hashedKind(kind) && digestFormatRegex.MatchString(cleaned) {
		return Hashed{Kind: kind, Canonical: cleaned, Digest: cleaned}, nil
	}

	switch kind {
	case Email:
		if err := validate.Var(cleaned, "required,email"); err != nil {
			return Hashed{}, InvalidFormatErr{Field: Email, Message: invalidEmailMsg}
		}
		return digest(kind, cleaned), nil
	case Phone:
		return digest(kind, canonicalPhone(cleaned, opts.CountryCode)), nil
	case FirstName, LastName:
		return digest(kind, nonAlphaRegex.ReplaceAllString(cleaned, "")), nil
	case Street:
		return digest(kind, cleaned), nil
	case City, Region:
		canonical := nonAlphaRegex.ReplaceAllString(cleaned, "")
		return Hashed{Kind: kind, Canonical: canonical, Digest: canonical}, nil
	}

	return Hashed{Kind: kind}, nil
}

func hashedKind(kind Kind) bool {
	switch kind {
	case Email, Phone, FirstName, LastName, Street:
		return true
	}
	return false
}

// canonicalPhone strips formatting and guarantees exactly one country calling
// code. A duplicate leading code is not re-added, so "+16161729102" and
// "6161729102" canonicalize identically under the default code.
func canonicalPhone(value, countryCode string) string {
	digits := nonDigitRegex.ReplaceAllString(value, "")
	if digits == "" {
		return ""
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	ccDigits := nonDigitRegex.ReplaceAllString(countryCode, "")
	if !strings.HasPrefix(digits, ccDigits) {
		digits = ccDigits + digits
	}
	return "+" + digits
}

func digest(kind Kind, canonical string) Hashed {
	if canonical == "" {
		return Hashed{Kind: kind}
	}
	sum := sha256.Sum256([]byte(canonical))
	return Hashed{Kind: kind, Canonical: canonical, Digest: hex.EncodeToString(sum[:])}
}
