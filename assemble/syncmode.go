// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package assemble

import (
	"fmt"

	"github.com/adbridge-io/adbridge/model"
)

// UnsupportedSyncModeErr rejects a batch whose declared sync mode the record
// upload endpoint cannot honor. The check runs before any network call, so an
// unsupported mode costs nothing upstream.
type UnsupportedSyncModeErr struct {
	Mode model.SyncMode
}

func (e UnsupportedSyncModeErr) Error() string {
	return fmt.Sprintf("sync mode %q is not supported for record uploads", string(e.Mode))
}

// ValidateSyncMode confirms the declared mode is one the record upload
// endpoint supports. Deletions travel through retraction records, not a
// batch-level delete mode.
func ValidateSyncMode(mode model.SyncMode) error {
	switch mode {
	case model.SyncAdd, model.SyncMirror:
		return nil
	}
	return UnsupportedSyncModeErr{Mode: mode}
}
