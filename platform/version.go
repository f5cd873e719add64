// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package platform

// APIVersion names one of the upstream API surfaces requests may target.
type APIVersion string

const (
	// StableAPIVersion is the default, generally-available API surface.
	StableAPIVersion APIVersion = "v3"

	// CanaryAPIVersion is the platform's pre-release API surface.
	CanaryAPIVersion APIVersion = "v4beta"
)

// SelectVersion maps the canary feature flag to an API surface. Pure
// function: no state and no failure modes; a missing settings object is the
// caller's short-circuit to handle.
func SelectVersion(canary bool) APIVersion {
	if canary {
		return CanaryAPIVersion
	}
	return StableAPIVersion
}

// BasePath is the URL path prefix for all requests against this surface.
func (v APIVersion) BasePath() string {
	return "/api/" + string(v)
}

func (v APIVersion) String() string {
	return string(v)
}
