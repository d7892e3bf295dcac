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

package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/tombee/oatty/internal/expr"
	oatterrors "github.com/tombee/oatty/pkg/errors"
)

// LoadDefinition normalizes and validates a manifest into a
// RuntimeWorkflow, in the order the data model requires:
//  1. non-empty `workflow` identifier
//  2. at least one step
//  3. every step's `if` and `repeat.until` parses under the expression
//     validator
//  4. every provider argument that references upstream data has a
//     matching, itself-upstream-referencing depends_on entry
func LoadDefinition(m *Manifest) (*RuntimeWorkflow, error) {
	identifier := strings.TrimSpace(m.Workflow)
	if identifier == "" {
		return nil, &oatterrors.LoadError{
			Subject: "workflow",
			Message: "workflow definition is missing the required 'workflow' identifier",
		}
	}
	if len(m.Steps) == 0 {
		return nil, &oatterrors.LoadError{
			Subject: identifier,
			Message: fmt.Sprintf("workflow '%s' must declare at least one step", identifier),
		}
	}

	steps, err := loadSteps(identifier, m.Steps)
	if err != nil {
		return nil, err
	}
	if err := validateProviderDependencyBindings(identifier, m.Inputs); err != nil {
		return nil, err
	}

	return &RuntimeWorkflow{
		ID:          identifier,
		Title:       m.Title,
		Description: m.Description,
		Inputs:      m.Inputs,
		Steps:       steps,
		FinalOutput: m.FinalOutput,
	}, nil
}

// LoadCatalog loads every manifest into a RuntimeWorkflow and rejects a
// catalog containing two workflows with the same identifier.
func LoadCatalog(manifests []*Manifest) (map[string]*RuntimeWorkflow, error) {
	catalog := make(map[string]*RuntimeWorkflow, len(manifests))
	for _, m := range manifests {
		wf, err := LoadDefinition(m)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize workflow '%s': %w", safeIdentifier(m), err)
		}
		if _, exists := catalog[wf.ID]; exists {
			return nil, &oatterrors.LoadError{
				Subject: wf.ID,
				Message: fmt.Sprintf("duplicate workflow identifier detected: '%s'", wf.ID),
			}
		}
		catalog[wf.ID] = wf
	}
	return catalog, nil
}

func safeIdentifier(m *Manifest) string {
	if strings.TrimSpace(m.Workflow) == "" {
		return "<missing>"
	}
	return m.Workflow
}

func loadSteps(identifier string, manifestSteps []ManifestStep) ([]RuntimeStep, error) {
	seen := make(map[string]bool, len(manifestSteps))
	steps := make([]RuntimeStep, 0, len(manifestSteps))

	for index, s := range manifestSteps {
		loc := fmt.Sprintf("steps[%d]", index)
		if strings.TrimSpace(s.ID) == "" {
			return nil, &oatterrors.LoadError{Subject: identifier, Location: loc, Message: "step is missing a required 'id'"}
		}
		if seen[s.ID] {
			return nil, &oatterrors.LoadError{
				Subject:  identifier,
				Location: loc,
				Message:  fmt.Sprintf("duplicate step id '%s'", s.ID),
			}
		}
		seen[s.ID] = true

		rs := RuntimeStep{
			ID:             s.ID,
			Run:            s.Run,
			DependsOn:      s.DependsOn,
			With:           s.With,
			Body:           s.Body,
			OutputContract: s.OutputContract,
		}

		if normalized := expr.NormalizeExpr(s.If); normalized != "" {
			node, err := expr.Validate(normalized, expr.ContextGeneral)
			if err != nil {
				return nil, &oatterrors.LoadError{
					Subject:  identifier,
					Location: loc + ".if",
					Message:  fmt.Sprintf("step '%s'(index %d) has invalid if expression: %s", s.ID, index, err),
				}
			}
			rs.If = node
			rs.IfSource = s.If
		}

		if s.Repeat != nil {
			repeat, err := loadRepeat(identifier, s.ID, index, s.Repeat)
			if err != nil {
				return nil, err
			}
			rs.Repeat = repeat
		}

		steps = append(steps, rs)
	}

	return steps, nil
}

func loadRepeat(identifier, stepID string, index int, r *ManifestRepeat) (*RuntimeRepeat, error) {
	loc := fmt.Sprintf("steps[%d].repeat", index)
	normalizedUntil := expr.NormalizeExpr(r.Until)
	var untilNode expr.Node
	if normalizedUntil != "" {
		node, err := expr.Validate(normalizedUntil, expr.ContextRepeatUntil)
		if err != nil {
			return nil, &oatterrors.LoadError{
				Subject:  identifier,
				Location: loc + ".until",
				Message:  fmt.Sprintf("step '%s'(index %d) has invalid repeat.until expression: %s", stepID, index, err),
			}
		}
		untilNode = node
	}

	every, err := ParseDuration(r.Every)
	if err != nil {
		return nil, &oatterrors.LoadError{Subject: identifier, Location: loc + ".every", Message: err.Error()}
	}

	var timeout time.Duration
	if strings.TrimSpace(r.Timeout) != "" {
		timeout, err = ParseDuration(r.Timeout)
		if err != nil {
			return nil, &oatterrors.LoadError{Subject: identifier, Location: loc + ".timeout", Message: err.Error()}
		}
	}

	return &RuntimeRepeat{
		Until:       untilNode,
		UntilSource: r.Until,
		Every:       every,
		Timeout:     timeout,
		MaxAttempts: r.MaxAttempts,
	}, nil
}

// validateProviderDependencyBindings mirrors the data model's rule 4:
// every provider_args entry referencing upstream data must have a
// matching depends_on entry that itself references upstream data.
func validateProviderDependencyBindings(identifier string, inputs map[string]ManifestInput) error {
	for inputName, def := range inputs {
		if def.Provider == nil {
			continue
		}
		for argName, argValue := range def.ProviderArgs {
			if !isUpstreamReference(argValue) {
				continue
			}
			dep, ok := def.DependsOn[argName]
			if !ok {
				return &oatterrors.LoadError{
					Subject:  identifier,
					Location: fmt.Sprintf("inputs.%s.provider_args.%s", inputName, argName),
					Message: fmt.Sprintf(
						"input '%s' provider argument '%s' references upstream data but is missing a matching depends_on binding",
						inputName, argName,
					),
				}
			}
			if !isUpstreamReference(dep) {
				return &oatterrors.LoadError{
					Subject:  identifier,
					Location: fmt.Sprintf("inputs.%s.depends_on.%s", inputName, argName),
					Message:  fmt.Sprintf("input '%s' depends_on.%s must reference an upstream input or step", inputName, argName),
				}
			}
		}
	}
	return nil
}
