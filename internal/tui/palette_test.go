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

package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/oatty/internal/history"
	"github.com/tombee/oatty/internal/registry"
)

func sampleAppsCreateSpec() *registry.CommandSpec {
	return &registry.CommandSpec{
		Group:   "apps",
		Name:    "create",
		Summary: "create a new app",
		Flags: []registry.Flag{
			{Name: "name", Type: registry.FlagString, Required: true, Description: "app name"},
			{Name: "region", Type: registry.FlagEnum, EnumValues: []string{"us", "eu"}, Description: "region"},
		},
		Execution: registry.Execution{Kind: registry.ExecutionHTTP, HTTP: &registry.HTTPExecution{Method: "POST", Path: "/apps"}},
	}
}

func newTestRegistry(t *testing.T, specs ...*registry.CommandSpec) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, s := range specs {
		require.NoError(t, reg.Insert(s))
	}
	return reg
}

func TestInferPhaseCommandOnEmptyLine(t *testing.T) {
	phase, tokens, flag := InferPhase("", 0)
	assert.Equal(t, PhaseCommand, phase)
	assert.Empty(t, tokens)
	assert.Empty(t, flag)
}

func TestInferPhaseCommandWhilePartiallyTyped(t *testing.T) {
	line := "apps cre"
	phase, tokens, _ := InferPhase(line, len(line))
	assert.Equal(t, PhaseCommand, phase)
	assert.Equal(t, []string{"apps", "cre"}, tokens)
}

func TestInferPhaseFlagNameAfterCommand(t *testing.T) {
	line := "apps create --"
	phase, tokens, _ := InferPhase(line, len(line))
	assert.Equal(t, PhaseFlagName, phase)
	assert.Equal(t, []string{"apps", "create"}, tokens)
}

func TestInferPhaseValueAfterFlag(t *testing.T) {
	line := "apps create --name "
	phase, tokens, flag := InferPhase(line, len(line))
	assert.Equal(t, PhaseValue, phase)
	assert.Equal(t, []string{"apps", "create"}, tokens)
	assert.Equal(t, "name", flag)
}

func TestInferPhaseValueMidWord(t *testing.T) {
	line := "apps create --region e"
	phase, _, flag := InferPhase(line, len(line))
	assert.Equal(t, PhaseValue, phase)
	assert.Equal(t, "region", flag)
}

func TestSuggestCommandsFuzzyMatchesAgainstIdAndSummary(t *testing.T) {
	reg := newTestRegistry(t, sampleAppsCreateSpec())

	matches := SuggestCommands(reg, "apcr")
	require.Len(t, matches, 1)
	assert.Equal(t, "apps:create", matches[0].Label)
	assert.Equal(t, "apps create", matches[0].InsertText)
}

func TestSuggestCommandsEmptyQueryReturnsEverything(t *testing.T) {
	reg := newTestRegistry(t, sampleAppsCreateSpec())
	matches := SuggestCommands(reg, "")
	assert.Len(t, matches, 1)
}

func TestSuggestFlagsFiltersByTypedPrefixAndExcludesUsed(t *testing.T) {
	spec := sampleAppsCreateSpec()

	suggestions := SuggestFlags(spec, "apps create --na", "na")
	require.Len(t, suggestions, 1)
	assert.Equal(t, "--name", suggestions[0].Label)

	suggestions = SuggestFlags(spec, "apps create --name x --", "")
	labels := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		labels = append(labels, s.Label)
	}
	assert.NotContains(t, labels, "--name")
	assert.Contains(t, labels, "--region")
}

func TestSuggestValuesCombinesEnumProviderAndHistory(t *testing.T) {
	spec := sampleAppsCreateSpec()
	hist := history.NewMemoryStore(history.DefaultLimit)
	scope := history.PaletteCommandScope(spec.CanonicalID())
	require.NoError(t, hist.InsertValue(history.Key{UserID: "default_profile", Scope: scope}, "eu"))

	suggestions := SuggestValues(spec, "region", []any{"apac"}, hist, scope)

	var labels []string
	for _, s := range suggestions {
		labels = append(labels, s.Label)
	}
	assert.Contains(t, labels, "us")
	assert.Contains(t, labels, "eu")
	assert.Contains(t, labels, "apac")
}

func TestSpliceReplacesCurrentToken(t *testing.T) {
	line := "apps create --na"
	newLine, caret := Splice(line, len(line), "--name")
	assert.Equal(t, "apps create --name", newLine)
	assert.Equal(t, len(newLine), caret)
}

func TestSpliceAppendsWhenCaretPastAllTokens(t *testing.T) {
	line := "apps create "
	newLine, caret := Splice(line, len(line), "--name")
	assert.Equal(t, "apps create --name", newLine)
	assert.Equal(t, len(newLine), caret)
}

func TestFuzzyMatchIsSubsequence(t *testing.T) {
	assert.True(t, fuzzyMatch("apps:create", "apcr"))
	assert.False(t, fuzzyMatch("apps:create", "zzz"))
	assert.True(t, fuzzyMatch("anything", ""))
}
