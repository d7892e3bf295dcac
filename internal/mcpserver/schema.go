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
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/oatty/internal/registry"
)

// toolName turns a CommandSpec's canonical id into an MCP tool name.
// mcp-go tool names are conventionally snake_case identifiers, so
// "apps:create" becomes "apps_create".
func toolName(spec *registry.CommandSpec) string {
	return spec.Group + "_" + spec.Name
}

// ToolSchema derives an mcp.ToolInputSchema from spec's positionals and
// flags: every positional is a required string property (its provider,
// if any, only matters for interactive suggestion and carries no schema
// weight here); every flag becomes a property typed from its FlagType,
// required flags are listed in Required.
func ToolSchema(spec *registry.CommandSpec) mcp.ToolInputSchema {
	properties := make(map[string]interface{}, len(spec.PositionalArgs)+len(spec.Flags))
	var required []string

	for _, p := range spec.PositionalArgs {
		prop := map[string]interface{}{"type": "string"}
		if p.Help != "" {
			prop["description"] = p.Help
		}
		properties[p.Name] = prop
		required = append(required, p.Name)
	}

	for _, f := range spec.Flags {
		properties[f.Name] = flagProperty(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// flagProperty renders one Flag as a JSON Schema property fragment.
func flagProperty(f registry.Flag) map[string]interface{} {
	prop := map[string]interface{}{}
	switch f.Type {
	case registry.FlagBoolean:
		prop["type"] = "boolean"
	case registry.FlagNumber:
		prop["type"] = "number"
	case registry.FlagEnum:
		prop["type"] = "string"
		enum := make([]interface{}, len(f.EnumValues))
		for i, v := range f.EnumValues {
			enum[i] = v
		}
		prop["enum"] = enum
	default:
		prop["type"] = "string"
	}
	if f.Description != "" {
		prop["description"] = f.Description
	}
	if f.DefaultValue != nil {
		prop["default"] = f.DefaultValue
	}
	return prop
}

// ToolDescription builds the tool's human-facing summary, noting its
// canonical id so a client can cross-reference `oatty <group> <name>
// --help` output with the tool it is calling.
func ToolDescription(spec *registry.CommandSpec) string {
	if spec.Summary == "" {
		return spec.CanonicalID()
	}
	return spec.Summary + " (" + spec.CanonicalID() + ")"
}
