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

// Package providercache caches the outcome of resolving a provider
// command (a "list" command whose output supplies valid values for a
// flag or positional argument), keyed by a fingerprint of the provider
// and the inputs it was bound against, with at-most-one concurrent
// build per fingerprint.
package providercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the LRU capacity used by New when size <= 0.
const DefaultSize = 256

// DefaultErrorTTL is how long a failed build is remembered before a
// fresh attempt is allowed, used by New when errTTL <= 0.
const DefaultErrorTTL = 5 * time.Second

// entry is what the LRU actually stores: either a successful outcome or
// a short-lived remembered failure.
type entry struct {
	outcome  any
	err      error
	storedAt time.Time
}

// Cache is a fingerprinted, bounded, LRU-evicted cache over provider
// command outcomes with in-flight build coalescing.
type Cache struct {
	lru    *lru.Cache[string, *entry]
	group  singleflight.Group
	errTTL time.Duration
}

// New builds a Cache holding at most size fingerprints, remembering a
// failed build for errTTL before allowing a retry. size <= 0 uses
// DefaultSize; errTTL <= 0 uses DefaultErrorTTL.
func New(size int, errTTL time.Duration) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if errTTL <= 0 {
		errTTL = DefaultErrorTTL
	}
	l, err := lru.New[string, *entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, errTTL: errTTL}, nil
}

// Fingerprint computes a stable hash of (providerCommandID, boundInputs)
// over boundInputs' canonical JSON encoding (encoding/json sorts map
// keys, so the same bindings always hash the same way regardless of
// insertion order).
func Fingerprint(providerCommandID string, boundInputs map[string]any) string {
	payload, _ := json.Marshal(struct {
		Command string         `json:"command"`
		Inputs  map[string]any `json:"inputs"`
	}{Command: providerCommandID, Inputs: boundInputs})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached outcome for fp, if any live entry exists. A
// remembered failure older than the configured error TTL is treated as
// a miss (and evicted) so a subsequent GetOrBuild retries the build.
func (c *Cache) Get(fp string) (any, bool) {
	e, ok := c.lru.Get(fp)
	if !ok {
		return nil, false
	}
	if e.err != nil && time.Since(e.storedAt) > c.errTTL {
		c.lru.Remove(fp)
		return nil, false
	}
	if e.err != nil {
		return nil, false
	}
	return e.outcome, true
}

// GetOrBuild returns the cached outcome for fp, building it via build if
// absent or expired. Concurrent callers for the same fp share one
// in-flight build. A successful build is cached indefinitely (until
// evicted); a failed build is cached only for the error TTL, so it does
// not positively poison the cache but still damps a thundering herd of
// retries against a failing provider.
func (c *Cache) GetOrBuild(ctx context.Context, fp string, build func(context.Context) (any, error)) (any, error) {
	if outcome, ok := c.Get(fp); ok {
		return outcome, nil
	}
	// Get has already evicted an expired failure, so any error entry
	// still present is within the error TTL.
	if e, ok := c.lru.Get(fp); ok && e.err != nil {
		return nil, e.err
	}

	result, err, _ := c.group.Do(fp, func() (any, error) {
		outcome, buildErr := build(ctx)
		c.lru.Add(fp, &entry{outcome: outcome, err: buildErr, storedAt: time.Now()})
		return outcome, buildErr
	})
	return result, err
}

// Invalidate drops any cached entry for fp, successful or not.
func (c *Cache) Invalidate(fp string) {
	c.lru.Remove(fp)
}
