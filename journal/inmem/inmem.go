// SPDX-FileCopyrightText: 2025 The adbridge Authors
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/adbridge-io/adbridge/journal"
)

// DefaultRetention bounds how long batch summaries stay queryable when no
// retention is configured.
const DefaultRetention = 24 * time.Hour

type expireableEntry struct {
	journal.Entry
	expiration time.Time
}

// InMem keeps batch summaries in process memory. Suited to single-instance
// deployments and tests; entries vanish on restart.
type InMem struct {
	retention time.Duration
	data      map[string]map[string]expireableEntry
	lock      sync.Mutex
	now       func() time.Time
}

func NewInMem(retention time.Duration) journal.J {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &InMem{
		retention: retention,
		data:      map[string]map[string]expireableEntry{},
		now:       time.Now,
	}
}

func (i *InMem) Push(_ context.Context, key journal.Key, entry journal.Entry) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	if i.data[key.Scope] == nil {
		i.data[key.Scope] = map[string]expireableEntry{}
	}
	i.data[key.Scope][key.BatchID] = expireableEntry{
		Entry:      entry,
		expiration: i.now().Add(i.retention),
	}
	return nil
}

// hasExpired reports whether the entry's retention window has passed. Expired
// entries are removed from the internal map as a side effect.
func (i *InMem) hasExpired(entry expireableEntry, scope map[string]expireableEntry, scopeName, batchID string) bool {
	if entry.expiration.After(i.now()) {
		return false
	}
	i.deleteEntry(scopeName, batchID, scope)
	return true
}

func (i *InMem) Get(_ context.Context, key journal.Key) (journal.Entry, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	scope, ok := i.data[key.Scope]
	if !ok {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	entry, ok := scope[key.BatchID]
	if !ok {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	if i.hasExpired(entry, scope, key.Scope, key.BatchID) {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	return entry.Entry, nil
}

func (i *InMem) GetAll(_ context.Context, scopeName string) (map[string]journal.Entry, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	scope := i.data[scopeName]
	result := make(map[string]journal.Entry)
	for batchID := range scope {
		entry := scope[batchID]
		if !i.hasExpired(entry, scope, scopeName, batchID) {
			result[batchID] = entry.Entry
		}
	}
	return result, nil
}

func (i *InMem) Delete(_ context.Context, key journal.Key) (journal.Entry, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	scope := i.data[key.Scope]
	if scope == nil {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	entry, ok := scope[key.BatchID]
	if !ok {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	if i.hasExpired(entry, scope, key.Scope, key.BatchID) {
		return journal.Entry{}, journal.Sanitize(journal.ErrEntryNotFound)
	}
	i.deleteEntry(key.Scope, key.BatchID, scope)
	return entry.Entry, nil
}

func (i *InMem) deleteEntry(scopeName, batchID string, scope map[string]expireableEntry) {
	delete(scope, batchID)
	if len(scope) == 0 {
		delete(i.data, scopeName)
	}
}
