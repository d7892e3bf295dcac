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
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	oatterrors "github.com/tombee/oatty/pkg/errors"
)

// JSONStore is a history store persisted as a single JSON file,
// single-writer-per-file: every mutation holds an exclusive in-process
// lock for the read-modify-write-replace cycle, and the whole file is
// rewritten through a temp-file-plus-rename so a crash mid-write never
// leaves a truncated file on disk.
type JSONStore struct {
	path       string
	maxEntries int

	mu   sync.Mutex
	file historyFile
}

// NewJSONStore opens (or initializes) a JSONStore at path, bounded to
// maxEntries. A missing file starts empty; a corrupt file is logged
// and discarded rather than failing the open.
func NewJSONStore(path string, maxEntries int) (*JSONStore, error) {
	resolved := expandTilde(path)
	f, err := loadHistoryFile(resolved)
	if err != nil {
		return nil, err
	}
	return &JSONStore{path: resolved, maxEntries: maxEntries, file: f}, nil
}

// WithDefaults opens a JSONStore at DefaultPath with DefaultLimit.
func WithDefaults() (*JSONStore, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewJSONStore(path, DefaultLimit)
}

// Path returns the file this store persists to.
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) GetLatestValue(key Key) (StoredValue, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.file.get(key)
	return v, ok, nil
}

func (s *JSONStore) InsertValue(key Key, value any) error {
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
	return s.saveLocked()
}

func (s *JSONStore) EntriesForScope(kind ScopeKind) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.recordsForScope(kind), nil
}

func (s *JSONStore) Truncate(maxEntries int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.truncate(maxEntries)
	return s.saveLocked()
}

func (s *JSONStore) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &oatterrors.ConfigError{Key: "history_path", Reason: "could not create history directory", Cause: err}
	}

	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func loadHistoryFile(path string) (historyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return historyFile{}, nil
		}
		return historyFile{}, err
	}

	var f historyFile
	if err := json.Unmarshal(data, &f); err != nil {
		slog.Warn("failed to parse history file, starting empty", "path", path, "error", err)
		return historyFile{}, nil
	}
	return f, nil
}
