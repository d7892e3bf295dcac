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
	"sync"

	"github.com/tombee/oatty/internal/expr"
)

// RunContext is the mutable map of inputs and step outputs available to
// expressions and templates during one workflow run. Reads and writes
// are safe for concurrent use; step outputs are published atomically
// once per successful attempt (or per successful repeat pass).
type RunContext struct {
	mu     sync.RWMutex
	inputs map[string]any
	steps  map[string]any
}

// NewRunContext builds a RunContext seeded with the run's resolved
// inputs. inputs may be nil.
func NewRunContext(inputs map[string]any) *RunContext {
	if inputs == nil {
		inputs = map[string]any{}
	}
	return &RunContext{inputs: inputs, steps: map[string]any{}}
}

// SetStepOutput publishes stepID's output, making it visible to any
// expression or template evaluated afterward.
func (rc *RunContext) SetStepOutput(stepID string, output any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.steps[stepID] = output
}

// StepOutput returns the currently published output for stepID, if any.
func (rc *RunContext) StepOutput(stepID string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.steps[stepID]
	return v, ok
}

// Snapshot returns a shallow copy of inputs/steps, for building a
// final_output or surfacing run state to the UI.
func (rc *RunContext) Snapshot() (inputs map[string]any, steps map[string]any) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	inputs = make(map[string]any, len(rc.inputs))
	for k, v := range rc.inputs {
		inputs[k] = v
	}
	steps = make(map[string]any, len(rc.steps))
	for k, v := range rc.steps {
		steps[k] = v
	}
	return inputs, steps
}

// Resolver adapts RunContext to the expr package's path-resolution
// contract: "inputs.*" and "steps.*" path roots resolve against the
// current snapshot, descending through nested maps and arrays. Any
// missing segment resolves as absent rather than erroring, per the
// language's missing-path-as-false/empty-string semantics.
func (rc *RunContext) Resolver() expr.Resolver {
	return func(root string, segments []expr.PathSegment) (any, bool) {
		rc.mu.RLock()
		defer rc.mu.RUnlock()

		var cur any
		switch root {
		case "inputs":
			cur = rc.inputs
		case "steps":
			cur = rc.steps
		default:
			return nil, false
		}

		for _, seg := range segments {
			next, ok := descend(cur, seg)
			if !ok {
				return nil, false
			}
			cur = next
		}
		return cur, true
	}
}

// descend resolves one path segment (a `.name` field access or a
// `[index]`/`["key"]` indexed access) against v.
func descend(v any, seg expr.PathSegment) (any, bool) {
	if seg.IsIndex {
		if seg.StrIndex != "" {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, false
			}
			val, ok := m[seg.StrIndex]
			return val, ok
		}
		arr, ok := v.([]any)
		if !ok || seg.Index < 0 || seg.Index >= len(arr) {
			return nil, false
		}
		return arr[seg.Index], true
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := m[seg.Name]
	return val, ok
}
