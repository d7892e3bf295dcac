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

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/oatty/internal/registry"
)

func httpSpec(group, name, method, path string, positionals ...string) *registry.CommandSpec {
	args := make([]registry.PositionalArg, len(positionals))
	for i, p := range positionals {
		args[i] = registry.PositionalArg{Name: p}
	}
	return &registry.CommandSpec{
		Group:          group,
		Name:           name,
		PositionalArgs: args,
		Execution: registry.Execution{
			Kind: registry.ExecutionHTTP,
			HTTP: &registry.HTTPExecution{Method: method, Path: path},
		},
	}
}

func TestResolvePositionalProvidersPrefersScopedProvider(t *testing.T) {
	cmds := []*registry.CommandSpec{
		httpSpec("apps", "list", "GET", "/apps"),
		httpSpec("addons", "list", "GET", "/addons"),
		httpSpec("apps", "addons:list", "GET", "/apps/{app}/addons", "app"),
		httpSpec("apps", "addons:info", "GET", "/apps/{app}/addons/{addon}", "app", "addon"),
	}

	Resolve(cmds)

	var consumer *registry.CommandSpec
	for _, c := range cmds {
		if c.CanonicalID() == "apps:addons:info" {
			consumer = c
		}
	}
	require.NotNil(t, consumer)

	appArg := consumer.PositionalArgs[0]
	require.NotNil(t, appArg.Provider)
	assert.Equal(t, "apps:list", appArg.Provider.CommandID)
	assert.Empty(t, appArg.Provider.Binds)

	addonArg := consumer.PositionalArgs[1]
	require.NotNil(t, addonArg.Provider)
	assert.Equal(t, "apps:addons:list", addonArg.Provider.CommandID)
	require.Len(t, addonArg.Provider.Binds, 1)
	assert.Equal(t, registry.Bind{ProviderKey: "app", From: "app"}, addonArg.Provider.Binds[0])
}

func TestResolveFlagProviderFromSynonymTable(t *testing.T) {
	cmds := []*registry.CommandSpec{
		httpSpec("apps", "list", "GET", "/apps"),
	}
	cmds = append(cmds, &registry.CommandSpec{
		Group: "dynos",
		Name:  "restart",
		Flags: []registry.Flag{{Name: "app"}},
		Execution: registry.Execution{
			Kind: registry.ExecutionHTTP,
			HTTP: &registry.HTTPExecution{Method: "POST", Path: "/apps/{app}/dynos/restart"},
		},
	})

	Resolve(cmds)

	var restart *registry.CommandSpec
	for _, c := range cmds {
		if c.CanonicalID() == "dynos:restart" {
			restart = c
		}
	}
	require.NotNil(t, restart)
	require.NotNil(t, restart.Flags[0].Provider)
	assert.Equal(t, "apps:list", restart.Flags[0].Provider.CommandID)
}

func TestResolveSkipsUnverifiableProvider(t *testing.T) {
	cmds := []*registry.CommandSpec{
		httpSpec("widgets", "info", "GET", "/widgets/{widget}", "widget"),
	}
	Resolve(cmds)
	assert.Nil(t, cmds[0].PositionalArgs[0].Provider)
}

func TestApplyConservativePluralization(t *testing.T) {
	tests := map[string]string{
		"city":   "cities",
		"box":    "boxes",
		"church": "churches",
		"dish":   "dishes",
		"key":    "keys",
		"region": "regions",
	}
	for in, want := range tests {
		got, ok := applyConservativePluralization(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("v23"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("apps"))
}
