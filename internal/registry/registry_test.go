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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpec(group, name string) *CommandSpec {
	return &CommandSpec{
		Group: group,
		Name:  name,
		Execution: Execution{
			Kind: ExecutionHTTP,
			HTTP: &HTTPExecution{Method: "GET", Path: "/" + group},
		},
	}
}

func TestInsertAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Insert(sampleSpec("apps", "list")))

	spec, err := r.ByID("apps", "list")
	require.NoError(t, err)
	assert.Equal(t, "apps:list", spec.CanonicalID())
}

func TestInsertRejectsDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Insert(sampleSpec("apps", "list")))
	err := r.Insert(sampleSpec("apps", "list"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestIterIsInsertionOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Insert(sampleSpec("b", "list")))
	require.NoError(t, r.Insert(sampleSpec("a", "list")))
	require.NoError(t, r.Insert(sampleSpec("c", "list")))

	ids := make([]string, 0)
	for _, s := range r.Iter() {
		ids = append(ids, s.CanonicalID())
	}
	assert.Equal(t, []string{"b:list", "a:list", "c:list"}, ids)
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	r := New()
	_, err := r.ByID("apps", "list")
	require.Error(t, err)
}

func TestValidateRejectsMismatchedPlaceholders(t *testing.T) {
	spec := &CommandSpec{
		Group:          "apps",
		Name:           "info",
		PositionalArgs: []PositionalArg{{Name: "app"}},
		Execution: Execution{
			Kind: ExecutionHTTP,
			HTTP: &HTTPExecution{Method: "GET", Path: "/apps/{org}"},
		},
	}
	err := spec.Validate()
	require.Error(t, err)
}

func TestValidateRejectsDuplicateFlags(t *testing.T) {
	spec := &CommandSpec{
		Group: "apps",
		Name:  "list",
		Flags: []Flag{{Name: "region"}, {Name: "region"}},
		Execution: Execution{
			Kind: ExecutionHTTP,
			HTTP: &HTTPExecution{Method: "GET", Path: "/apps"},
		},
	}
	err := spec.Validate()
	require.Error(t, err)
}

func TestValidateRejectsEmptyEnumValues(t *testing.T) {
	spec := &CommandSpec{
		Group: "apps",
		Name:  "list",
		Flags: []Flag{{Name: "tier", Type: FlagEnum}},
		Execution: Execution{
			Kind: ExecutionHTTP,
			HTTP: &HTTPExecution{Method: "GET", Path: "/apps"},
		},
	}
	err := spec.Validate()
	require.Error(t, err)
}
