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

// Package workflow loads workflow manifests into runtime workflows and
// schedules their execution against the command registry.
package workflow

import "strings"

// Manifest is the raw, as-authored workflow document (YAML or JSON).
type Manifest struct {
	Workflow     string                   `yaml:"workflow" json:"workflow"`
	Title        string                   `yaml:"title,omitempty" json:"title,omitempty"`
	Description  string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs       map[string]ManifestInput `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Steps        []ManifestStep           `yaml:"steps" json:"steps"`
	FinalOutput  any                      `yaml:"final_output,omitempty" json:"final_output,omitempty"`
	Requires     any                      `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// ManifestInput is one entry of the manifest's top-level `inputs` map.
type ManifestInput struct {
	Type             string           `yaml:"type,omitempty" json:"type,omitempty"`
	Provider         any              `yaml:"provider,omitempty" json:"provider,omitempty"`
	ProviderArgs     map[string]any   `yaml:"provider_args,omitempty" json:"provider_args,omitempty"`
	DependsOn        map[string]any   `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Default          *ManifestDefault `yaml:"default,omitempty" json:"default,omitempty"`
	Validate         *ManifestValidate `yaml:"validate,omitempty" json:"validate,omitempty"`
	EnumeratedValues []any            `yaml:"enumerated_values,omitempty" json:"enumerated_values,omitempty"`
	Mode             string           `yaml:"mode,omitempty" json:"mode,omitempty"`
	Select           *ManifestSelect  `yaml:"select,omitempty" json:"select,omitempty"`
	Placeholder      string           `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Hint             string           `yaml:"hint,omitempty" json:"hint,omitempty"`
	Example          string           `yaml:"example,omitempty" json:"example,omitempty"`
}

// ManifestDefault describes where an input's default value comes from.
type ManifestDefault struct {
	From  string `yaml:"from" json:"from"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty"`
}

// ManifestValidate describes input validation constraints.
type ManifestValidate struct {
	Required      bool   `yaml:"required,omitempty" json:"required,omitempty"`
	AllowedValues []any  `yaml:"allowed_values,omitempty" json:"allowed_values,omitempty"`
	Pattern       string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// ManifestSelect describes how to project a provider's list results into
// selectable values.
type ManifestSelect struct {
	ValueField   string `yaml:"value_field" json:"value_field"`
	DisplayField string `yaml:"display_field" json:"display_field"`
	IDField      string `yaml:"id_field,omitempty" json:"id_field,omitempty"`
}

// ManifestBinding is one shape a provider_args/depends_on value may take:
// a reference to an upstream input or step output, as opposed to a
// literal template string.
type ManifestBinding struct {
	FromInput *string `yaml:"from_input,omitempty" json:"from_input,omitempty"`
	FromStep  *string `yaml:"from_step,omitempty" json:"from_step,omitempty"`
	Path      *string `yaml:"path,omitempty" json:"path,omitempty"`
	Required  *bool   `yaml:"required,omitempty" json:"required,omitempty"`
	OnMissing string  `yaml:"on_missing,omitempty" json:"on_missing,omitempty"`
}

// ManifestStep is one entry of the manifest's `steps` list.
type ManifestStep struct {
	ID             string                  `yaml:"id" json:"id"`
	Run            string                  `yaml:"run" json:"run"`
	DependsOn      []string                `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	If             string                  `yaml:"if,omitempty" json:"if,omitempty"`
	With           map[string]any          `yaml:"with,omitempty" json:"with,omitempty"`
	Body           any                     `yaml:"body,omitempty" json:"body,omitempty"`
	Repeat         *ManifestRepeat         `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	OutputContract *ManifestOutputContract `yaml:"output_contract,omitempty" json:"output_contract,omitempty"`
}

// ManifestRepeat describes a step's repeat/until loop.
type ManifestRepeat struct {
	Until       string `yaml:"until" json:"until"`
	Every       string `yaml:"every" json:"every"`
	Timeout     string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty" json:"max_attempts,omitempty"`
}

// ManifestOutputContract declares the fields a step's output is expected
// to carry, as hints for downstream provider binding and UI surfacing.
type ManifestOutputContract struct {
	Fields []ManifestOutputField `yaml:"fields" json:"fields"`
}

// ManifestOutputField is one declared field of an output contract.
type ManifestOutputField struct {
	Name string   `yaml:"name" json:"name"`
	Type string   `yaml:"type,omitempty" json:"type,omitempty"`
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// isUpstreamReference reports whether a provider_args/depends_on value
// references an upstream input or step: either a binding map with
// from_input/from_step set, or a literal template containing a
// `${{ inputs.` or `${{ steps.` span.
func isUpstreamReference(v any) bool {
	switch val := v.(type) {
	case string:
		return containsAny(val, "${{ inputs.", "${{ steps.", "${{inputs.", "${{steps.")
	case map[string]any:
		if raw, ok := val["from_input"]; ok && raw != nil {
			if s, ok := raw.(string); !ok || s != "" {
				return true
			}
		}
		if raw, ok := val["from_step"]; ok && raw != nil {
			if s, ok := raw.(string); !ok || s != "" {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
