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

package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/oatty/internal/config"
)

const sampleSchema = `{
  "links": [
    { "href": "/apps/{app}/addons", "method": "GET", "title": "List" },
    { "href": "/addons", "method": "GET", "title": "List" }
  ]
}`

func setupXDGHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeSchemaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSchema), 0o600))
	return path
}

func TestImportThenListRoundTrips(t *testing.T) {
	setupXDGHome(t)
	schemaPath := writeSchemaFile(t)

	importCmd := NewCommand()
	importCmd.SetArgs([]string{"import", schemaPath, "--base-url", "https://api.example.com", "--service-id", "svc1"})
	var importOut bytes.Buffer
	importCmd.SetOut(&importOut)
	require.NoError(t, importCmd.Execute())
	assert.Contains(t, importOut.String(), "Imported")

	listCmd := NewCommand()
	listCmd.SetArgs([]string{"list"})
	var listOut bytes.Buffer
	listCmd.SetOut(&listOut)
	require.NoError(t, listCmd.Execute())
	assert.Contains(t, listOut.String(), "https://api.example.com")
	assert.Contains(t, listOut.String(), "addons")

	configDir, err := config.ConfigDir()
	require.NoError(t, err)
	_, statErr := os.Stat(FilePath(configDir))
	require.NoError(t, statErr)
}

func TestImportRequiresBaseURL(t *testing.T) {
	setupXDGHome(t)
	schemaPath := writeSchemaFile(t)

	cmd := NewCommand()
	cmd.SetArgs([]string{"import", schemaPath})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestListWithoutImportErrors(t *testing.T) {
	setupXDGHome(t)

	cmd := NewCommand()
	cmd.SetArgs([]string{"list"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.Execute()
	assert.Error(t, err)
}
