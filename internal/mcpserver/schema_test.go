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

package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/oatty/internal/registry"
)

func sampleSpec() *registry.CommandSpec {
	return &registry.CommandSpec{
		Group:   "apps",
		Name:    "create",
		Summary: "create a new app",
		PositionalArgs: []registry.PositionalArg{
			{Name: "org", Help: "owning organization"},
		},
		Flags: []registry.Flag{
			{Name: "name", Type: registry.FlagString, Required: true, Description: "app name"},
			{Name: "region", Type: registry.FlagEnum, EnumValues: []string{"us", "eu"}, Description: "region"},
			{Name: "replicas", Type: registry.FlagNumber, DefaultValue: float64(1)},
			{Name: "async", Type: registry.FlagBoolean},
		},
		Execution: registry.Execution{Kind: registry.ExecutionHTTP, HTTP: &registry.HTTPExecution{Method: "POST", Path: "/orgs/{org}/apps"}},
	}
}

func TestToolNameUsesUnderscoreSeparator(t *testing.T) {
	assert.Equal(t, "apps_create", toolName(sampleSpec()))
}

func TestToolSchemaMarksPositionalsAndRequiredFlagsRequired(t *testing.T) {
	schema := ToolSchema(sampleSpec())

	assert.ElementsMatch(t, []string{"org", "name"}, schema.Required)
	assert.Contains(t, schema.Properties, "org")
	assert.Contains(t, schema.Properties, "name")
	assert.Contains(t, schema.Properties, "region")
	assert.Contains(t, schema.Properties, "replicas")
	assert.Contains(t, schema.Properties, "async")
}

func TestToolSchemaRendersEnumFlagAsStringWithEnumValues(t *testing.T) {
	schema := ToolSchema(sampleSpec())

	region, ok := schema.Properties["region"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "string", region["type"])
	assert.Equal(t, []interface{}{"us", "eu"}, region["enum"])
}

func TestToolSchemaRendersNumberAndBooleanFlags(t *testing.T) {
	schema := ToolSchema(sampleSpec())

	replicas, ok := schema.Properties["replicas"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "number", replicas["type"])
	assert.Equal(t, float64(1), replicas["default"])

	async, ok := schema.Properties["async"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boolean", async["type"])
}

func TestToolDescriptionIncludesCanonicalID(t *testing.T) {
	desc := ToolDescription(sampleSpec())
	assert.Contains(t, desc, "apps:create")
	assert.Contains(t, desc, "create a new app")
}

func TestToolDescriptionFallsBackToCanonicalIDWhenNoSummary(t *testing.T) {
	spec := sampleSpec()
	spec.Summary = ""
	assert.Equal(t, "apps:create", ToolDescription(spec))
}
