// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"sort"
	"sync"

	"github.com/tombee/oatty/pkg/errors"
)

// Registry stores CommandSpec entries keyed by canonical id and
// supports lookup, ordered iteration, and insertion. It is populated
// once at startup (schema derivation + provider resolution) and treated
// as immutable afterwards; a reload replaces the whole structure rather
// than mutating it in place.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]*CommandSpec
	order   []string // insertion order, for stable iteration
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byID: make(map[string]*CommandSpec),
	}
}

// Insert adds spec to the registry. It rejects duplicate canonical ids.
func (r *Registry) Insert(spec *CommandSpec) error {
	if spec == nil {
		return &errors.ValidationError{Field: "spec", Message: "command spec cannot be nil"}
	}
	if err := spec.Validate(); err != nil {
		return &errors.ValidationError{Field: "spec", Message: err.Error()}
	}

	id := spec.CanonicalID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return &errors.ValidationError{Field: "command_id", Message: "duplicate command id: " + id}
	}
	r.byID[id] = spec
	r.order = append(r.order, id)
	return nil
}

// ByID looks up a command by group and name.
func (r *Registry) ByID(group, name string) (*CommandSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id := group + ":" + name
	spec, ok := r.byID[id]
	if !ok {
		return nil, &errors.NotFoundError{Resource: "command", ID: id}
	}
	return spec, nil
}

// ByCanonicalID looks up a command by its "group:name" id.
func (r *Registry) ByCanonicalID(id string) (*CommandSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.byID[id]
	if !ok {
		return nil, &errors.NotFoundError{Resource: "command", ID: id}
	}
	return spec, nil
}

// Has reports whether a canonical id is present.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

// Iter returns all commands in stable insertion order.
func (r *Registry) Iter() []*CommandSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*CommandSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Groups returns the distinct set of command groups present, sorted.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, id := range r.order {
		seen[r.byID[id].Group] = true
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Replace atomically swaps the registry's contents with those of a
// fresh registry built from specs. Used for hot-reload: the old
// structure is discarded wholesale rather than mutated in place.
func (r *Registry) Replace(specs []*CommandSpec) error {
	next := New()
	for _, s := range specs {
		if err := next.Insert(s); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = next.byID
	r.order = next.order
	return nil
}
