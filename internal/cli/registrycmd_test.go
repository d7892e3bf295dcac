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

package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/oatty/internal/httpexec"
	"github.com/tombee/oatty/internal/providercache"
	"github.com/tombee/oatty/internal/registry"
	"github.com/tombee/oatty/pkg/httpclient"
)

func newTestRegistryFixture(t *testing.T, handler http.HandlerFunc) (*registry.Registry, *httpexec.Executor, *providercache.Cache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.RetryAttempts = 0
	exec, err := httpexec.New(srv.URL, cfg)
	require.NoError(t, err)

	reg := registry.New()
	require.NoError(t, reg.Insert(&registry.CommandSpec{
		Group: "envs",
		Name:  "list",
		Execution: registry.Execution{
			Kind: registry.ExecutionHTTP,
			HTTP: &registry.HTTPExecution{Method: "GET", Path: "/envs"},
		},
	}))
	require.NoError(t, reg.Insert(&registry.CommandSpec{
		Group: "apps",
		Name:  "deploy",
		Flags: []registry.Flag{
			{
				Name:     "env",
				Required: true,
				Type:     registry.FlagString,
				Provider: &registry.Provider{CommandID: "envs:list"},
			},
		},
		Execution: registry.Execution{
			Kind: registry.ExecutionHTTP,
			HTTP: &registry.HTTPExecution{Method: "POST", Path: "/apps/deploy"},
		},
	}))

	cache, err := providercache.New(16, time.Second)
	require.NoError(t, err)

	return reg, exec, cache
}

func TestBuildRegistryCommandsGroupsByCommandGroup(t *testing.T) {
	reg, exec, cache := newTestRegistryFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	cmds := BuildRegistryCommands(reg, exec, cache)

	groups := make(map[string]bool)
	for _, c := range cmds {
		groups[c.Use] = true
	}
	assert.True(t, groups["envs"])
	assert.True(t, groups["apps"])
}

func TestRegistryLeafCommandDispatchesThroughExecutor(t *testing.T) {
	var calledPath string
	reg, exec, cache := newTestRegistryFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calledPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	cmds := BuildRegistryCommands(reg, exec, cache)

	for _, parent := range cmds {
		if parent.Use != "envs" {
			continue
		}
		for _, leaf := range parent.Commands() {
			if leaf.Use == "list" {
				require.NoError(t, leaf.RunE(leaf, nil))
			}
		}
	}

	assert.Equal(t, "/envs", calledPath)
}

func TestRegistryLeafCommandSurfacesProviderSuggestionWhenMissingRequiredFlag(t *testing.T) {
	reg, exec, cache := newTestRegistryFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if r.URL.Path == "/envs" {
			_ = json.NewEncoder(w).Encode([]any{
				map[string]any{"id": "staging"},
				map[string]any{"id": "production"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	cmds := BuildRegistryCommands(reg, exec, cache)

	for _, parent := range cmds {
		if parent.Use != "apps" {
			continue
		}
		for _, leaf := range parent.Commands() {
			if leaf.Use != "deploy" {
				continue
			}
			err := leaf.RunE(leaf, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "staging")
			assert.Contains(t, err.Error(), "production")
		}
	}
}
