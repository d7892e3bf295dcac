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

// Package registry holds the CommandSpec catalog: the authoritative,
// immutable-after-startup description of every command a user or MCP
// client can invoke.
package registry

import "fmt"

// FlagType enumerates the supported flag value types.
type FlagType string

const (
	FlagBoolean FlagType = "boolean"
	FlagString  FlagType = "string"
	FlagNumber  FlagType = "number"
	FlagEnum    FlagType = "enum"
)

// Provider describes a value provider bound to a flag or positional
// argument: a list-endpoint command whose output supplies valid values.
type Provider struct {
	CommandID string  // "group:name"
	Binds     []Bind  // provider input name -> consumer input name
}

// Bind maps one of the provider command's own inputs (a required flag
// or placeholder) to the name of an input already available on the
// consumer command.
type Bind struct {
	ProviderKey string
	From        string
}

// Flag describes one command-line flag.
type Flag struct {
	Name         string
	ShortName    string
	Required     bool
	Type         FlagType
	EnumValues   []string
	DefaultValue any
	Description  string
	Provider     *Provider
}

// PositionalArg describes one positional (path-placeholder-derived)
// argument.
type PositionalArg struct {
	Name     string
	Help     string
	Provider *Provider
}

// ExecutionKind tags the variant carried by Execution. Only Http exists
// today; the type is open so a future variant does not require call
// sites to change.
type ExecutionKind string

const (
	ExecutionHTTP ExecutionKind = "http"
)

// Execution is a tagged union over how a command is actually carried
// out. CommandSpec.Execution currently only ever holds an HTTPExecution
// value, addressed through the Kind tag.
type Execution struct {
	Kind ExecutionKind
	HTTP *HTTPExecution
}

// HTTPExecution is the Http variant of Execution.
type HTTPExecution struct {
	Method    string
	Path      string // may contain {placeholder} segments
	Body      map[string]any
	ServiceID string
}

// CommandSpec is the authoritative description of one executable
// command.
type CommandSpec struct {
	Group          string
	Name           string
	Summary        string
	PositionalArgs []PositionalArg
	Flags          []Flag
	Execution      Execution
	Ranges         []string
}

// CanonicalID returns the registry key form, "group:name".
func (c *CommandSpec) CanonicalID() string {
	return c.Group + ":" + c.Name
}

// Display returns the presentation form, "group name".
func (c *CommandSpec) Display() string {
	return c.Group + " " + c.Name
}

// Validate checks the invariants from the data model: placeholders and
// positionals correspond 1:1 by name, flag names are unique, and enum
// flags declare at least one value.
func (c *CommandSpec) Validate() error {
	if c.Execution.Kind == ExecutionHTTP && c.Execution.HTTP != nil {
		placeholders := extractPlaceholders(c.Execution.HTTP.Path)
		posNames := make(map[string]bool, len(c.PositionalArgs))
		for _, p := range c.PositionalArgs {
			posNames[p.Name] = true
		}
		for _, ph := range placeholders {
			if !posNames[ph] {
				return fmt.Errorf("command %s: path placeholder %q has no matching positional arg", c.CanonicalID(), ph)
			}
		}
		phSet := make(map[string]bool, len(placeholders))
		for _, ph := range placeholders {
			phSet[ph] = true
		}
		for _, p := range c.PositionalArgs {
			if !phSet[p.Name] {
				return fmt.Errorf("command %s: positional arg %q has no matching path placeholder", c.CanonicalID(), p.Name)
			}
		}
	}

	seen := make(map[string]bool, len(c.Flags))
	for _, f := range c.Flags {
		if seen[f.Name] {
			return fmt.Errorf("command %s: duplicate flag name %q", c.CanonicalID(), f.Name)
		}
		seen[f.Name] = true
		if f.Type == FlagEnum && len(f.EnumValues) == 0 {
			return fmt.Errorf("command %s: flag %q declares type=enum with no enum_values", c.CanonicalID(), f.Name)
		}
	}
	return nil
}

// extractPlaceholders returns the ordered list of {name} segments in a
// path template.
func extractPlaceholders(path string) []string {
	var out []string
	i := 0
	for i < len(path) {
		if path[i] == '{' {
			end := i + 1
			for end < len(path) && path[end] != '}' {
				end++
			}
			if end < len(path) {
				out = append(out, path[i+1:end])
				i = end + 1
				continue
			}
		}
		i++
	}
	return out
}
