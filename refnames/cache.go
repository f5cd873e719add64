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
	"errors"
	"sync"

	"github.com/adbridge-io/adbridge/model"
)

var ErrNoLookupProvided = errors.New("no reference lookup provided")

// Reference describes one named reference declared in a remote scope, such as
// a custom variable or a data-extension column.
type Reference struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Lookup enumerates every named reference available in a scope. The remote
// endpoint returns the full enumeration; filtering against the names a batch
// actually uses happens client side.
type Lookup interface {
	ListReferences(ctx context.Context, scope string) ([]Reference, error)
}

// Cache memoizes reference enumerations for the lifetime of one batch call.
// Build a fresh Cache per batch and discard it afterwards: reusing one across
// batches risks serving stale IDs if the remote declarations change between
// calls.
type Cache struct {
	lookup Lookup
	lock   sync.Mutex
	scopes map[string]map[string]string
}

func NewCache(lookup Lookup) (*Cache, error) {
	if lookup == nil {
		return nil, ErrNoLookupProvided
	}
	return &Cache{
		lookup: lookup,
		scopes: map[string]map[string]string{},
	}, nil
}

// Resolve returns bindings for the requested names, in request order, with
// duplicates collapsed. Names absent from the remote enumeration are dropped:
// the platform only honors previously-declared references. The upstream
// lookup runs at most once per scope for the lifetime of the cache, no matter
// how many records ask.
func (c *Cache) Resolve(ctx context.Context, scope string, names []string) (model.Bindings, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	byName, ok := c.scopes[scope]
	if !ok {
		refs, err := c.lookup.ListReferences(ctx, scope)
		if err != nil {
			return nil, err
		}
		byName = make(map[string]string, len(refs))
		for _, ref := range refs {
			byName[ref.Name] = ref.ID
		}
		c.scopes[scope] = byName
	}

	bindings := model.Bindings{}
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if id, found := byName[name]; found {
			bindings = append(bindings, model.Binding{Name: name, ID: id})
		}
	}
	return bindings, nil
}
