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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadFileRoundTrips(t *testing.T) {
	r := New()
	require.NoError(t, r.Insert(sampleSpec("apps", "list")))
	require.NoError(t, r.Insert(sampleSpec("apps", "create")))

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, SaveToFile(r, "https://api.example.com", path))

	loaded, baseURL, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", baseURL)
	assert.Equal(t, r.Len(), loaded.Len())

	spec, err := loaded.ByID("apps", "list")
	require.NoError(t, err)
	assert.Equal(t, "GET", spec.Execution.HTTP.Method)
}

func TestLoadFromFileMissingFileErrors(t *testing.T) {
	_, _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadFromFileInvalidJSONErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, _, err := LoadFromFile(path)
	assert.Error(t, err)
}
