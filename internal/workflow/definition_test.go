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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oatterrors "github.com/tombee/oatty/pkg/errors"
)

func minimalManifest() *Manifest {
	return &Manifest{
		Workflow: "deploy-app",
		Steps: []ManifestStep{
			{ID: "build", Run: "apps:build"},
		},
	}
}

func TestLoadDefinitionRejectsMissingIdentifier(t *testing.T) {
	m := minimalManifest()
	m.Workflow = "  "

	_, err := LoadDefinition(m)

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "workflow' identifier")
}

func TestLoadDefinitionRejectsNoSteps(t *testing.T) {
	m := minimalManifest()
	m.Steps = nil

	_, err := LoadDefinition(m)

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "at least one step")
}

func TestLoadDefinitionRejectsDuplicateStepIDs(t *testing.T) {
	m := minimalManifest()
	m.Steps = append(m.Steps, ManifestStep{ID: "build", Run: "apps:verify"})

	_, err := LoadDefinition(m)

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "duplicate step id 'build'")
}

func TestLoadDefinitionAcceptsValidNumericCondition(t *testing.T) {
	m := minimalManifest()
	m.Steps[0].If = "${{ inputs.retries }} > 0"

	wf, err := LoadDefinition(m)

	require.NoError(t, err)
	require.NotNil(t, wf.Steps[0].If)
	assert.Equal(t, "${{ inputs.retries }} > 0", wf.Steps[0].IfSource)
}

func TestLoadDefinitionRejectsStrictEqualityCondition(t *testing.T) {
	m := minimalManifest()
	m.Steps[0].If = "${{ inputs.env === 'prod' }}"

	_, err := LoadDefinition(m)

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Location, ".if")
}

func TestLoadDefinitionSkipsValidationForEmptyCondition(t *testing.T) {
	m := minimalManifest()
	m.Steps[0].If = ""

	wf, err := LoadDefinition(m)

	require.NoError(t, err)
	assert.Nil(t, wf.Steps[0].If)
}

func TestLoadDefinitionRejectsProviderArgumentWithoutDependsOn(t *testing.T) {
	m := minimalManifest()
	m.Inputs = map[string]ManifestInput{
		"region": {
			Provider: "aws:regions",
			ProviderArgs: map[string]any{
				"account": "${{ steps.account.id }}",
			},
		},
	}

	_, err := LoadDefinition(m)

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "missing a matching depends_on binding")
}

func TestLoadDefinitionAcceptsMatchingDependsOn(t *testing.T) {
	m := minimalManifest()
	m.Inputs = map[string]ManifestInput{
		"region": {
			Provider: "aws:regions",
			ProviderArgs: map[string]any{
				"account": "${{ steps.account.id }}",
			},
			DependsOn: map[string]any{
				"account": "${{ steps.account.id }}",
			},
		},
	}

	wf, err := LoadDefinition(m)

	require.NoError(t, err)
	assert.Equal(t, "deploy-app", wf.ID)
}

func TestLoadDefinitionAcceptsBindingShapedDependsOn(t *testing.T) {
	fromStep := "account"
	m := minimalManifest()
	m.Inputs = map[string]ManifestInput{
		"region": {
			Provider: "aws:regions",
			ProviderArgs: map[string]any{
				"account": map[string]any{"from_step": "account"},
			},
			DependsOn: map[string]any{
				"account": map[string]any{"from_step": fromStep},
			},
		},
	}

	_, err := LoadDefinition(m)

	require.NoError(t, err)
}

func TestLoadDefinitionIgnoresProviderArgsWithoutProvider(t *testing.T) {
	m := minimalManifest()
	m.Inputs = map[string]ManifestInput{
		"region": {
			ProviderArgs: map[string]any{
				"account": "${{ steps.account.id }}",
			},
		},
	}

	_, err := LoadDefinition(m)

	require.NoError(t, err)
}

func TestLoadDefinitionParsesRepeatUntilAndDurations(t *testing.T) {
	m := minimalManifest()
	m.Steps[0].Repeat = &ManifestRepeat{
		Until:       "${{ steps.build.status }} == 'succeeded'",
		Every:       "5s",
		Timeout:     "1m30s",
		MaxAttempts: 10,
	}

	wf, err := LoadDefinition(m)

	require.NoError(t, err)
	repeat := wf.Steps[0].Repeat
	require.NotNil(t, repeat)
	require.NotNil(t, repeat.Until)
	assert.Equal(t, 5*time.Second, repeat.Every)
	assert.Equal(t, 90*time.Second, repeat.Timeout)
	assert.Equal(t, 10, repeat.MaxAttempts)
}

func TestLoadDefinitionRejectsRepeatUntilReferencingOutput(t *testing.T) {
	m := minimalManifest()
	m.Steps[0].Repeat = &ManifestRepeat{
		Until: "${{ output.status }} == 'succeeded'",
		Every: "5s",
	}

	_, err := LoadDefinition(m)

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Location, ".until")
}

func TestLoadDefinitionRejectsInvalidRepeatEvery(t *testing.T) {
	m := minimalManifest()
	m.Steps[0].Repeat = &ManifestRepeat{
		Until: "${{ steps.build.status }} == 'succeeded'",
		Every: "five seconds",
	}

	_, err := LoadDefinition(m)

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Location, ".every")
}

func TestLoadCatalogRejectsDuplicateWorkflowIdentifiers(t *testing.T) {
	a := minimalManifest()
	b := minimalManifest()

	_, err := LoadCatalog([]*Manifest{a, b})

	require.Error(t, err)
	var loadErr *oatterrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "duplicate workflow identifier")
}

func TestLoadCatalogLoadsDistinctWorkflows(t *testing.T) {
	a := minimalManifest()
	b := minimalManifest()
	b.Workflow = "rollback-app"

	catalog, err := LoadCatalog([]*Manifest{a, b})

	require.NoError(t, err)
	assert.Len(t, catalog, 2)
	assert.Contains(t, catalog, "deploy-app")
	assert.Contains(t, catalog, "rollback-app")
}

func TestParseDurationAcceptsCompoundForm(t *testing.T) {
	d, err := ParseDuration("1m30s")

	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestParseDurationRejectsUnsupportedUnit(t *testing.T) {
	_, err := ParseDuration("1d")

	require.Error(t, err)
	var valErr *oatterrors.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestParseDurationRejectsEmptyString(t *testing.T) {
	_, err := ParseDuration("")

	require.Error(t, err)
}
