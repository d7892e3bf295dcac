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

package history

import (
	"sync"
	"time"

	oatterrors "github.com/tombee/oatty/pkg/errors"
)

// MemoryStore is a non-persisted Store, for tests and for callers that
// don't need history to survive the process.
type MemoryStore struct {
	mu         sync.Mutex
	file       historyFile
	maxEntries int
}

// NewMemoryStore builds an empty MemoryStore bounded to maxEntries (0
// uses DefaultLimit).
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultLimit
	}
	return &MemoryStore{maxEntries: maxEntries}
}

func (s *MemoryStore) GetLatestValue(key Key) (StoredValue, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.file.get(key)
	return v, ok, nil
}

func (s *MemoryStore) InsertValue(key Key, value any) error {
	if valueContainsSecret(value) {
		return &oatterrors.ValidationError{
			Field:      "value",
			Message:    "history entry rejected: value contains a detected secret",
			Suggestion: "remove tokens, passwords, or other credential-shaped text before saving this value to history",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.upsert(key, value, time.Now(), s.maxEntries)
	return nil
}

func (s *MemoryStore) EntriesForScope(kind ScopeKind) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.recordsForScope(kind), nil
}

func (s *MemoryStore) Truncate(maxEntries int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.truncate(maxEntries)
	return nil
}
