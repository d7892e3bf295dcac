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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/tombee/oatty/internal/commands/shared"
	"github.com/tombee/oatty/internal/httpexec"
	"github.com/tombee/oatty/internal/providercache"
	"github.com/tombee/oatty/internal/registry"
	"github.com/tombee/oatty/internal/secrets"
)

// BuildRegistryCommands turns every command in reg into a cobra command,
// grouped under one parent command per registry.CommandSpec.Group, so
// "oatty <group> <name> [flags] [args]" dispatches through exec the same
// way the MCP bridge and TUI do. cache backs provider-value lookups used
// to suggest candidates when a provider-backed required input is missing.
func BuildRegistryCommands(reg *registry.Registry, exec *httpexec.Executor, cache *providercache.Cache) []*cobra.Command {
	byGroup := make(map[string]*cobra.Command)
	var order []string

	for _, spec := range reg.Iter() {
		spec := spec
		parent, ok := byGroup[spec.Group]
		if !ok {
			parent = &cobra.Command{
				Use:   spec.Group,
				Short: fmt.Sprintf("Commands imported under %q", spec.Group),
			}
			byGroup[spec.Group] = parent
			order = append(order, spec.Group)
		}
		parent.AddCommand(newRegistryLeafCommand(spec, reg, exec, cache))
	}

	out := make([]*cobra.Command, 0, len(order))
	for _, g := range order {
		out = append(out, byGroup[g])
	}
	return out
}

func newRegistryLeafCommand(spec *registry.CommandSpec, reg *registry.Registry, exec *httpexec.Executor, cache *providercache.Cache) *cobra.Command {
	return &cobra.Command{
		Use:                spec.Name,
		Short:              spec.Summary,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sugg := missingProviderSuggestion(cmd.Context(), reg, exec, cache, spec, args); sugg != "" {
				return shared.NewMissingInputError(sugg, nil)
			}

			tokens := append([]string{spec.Group, spec.Name}, args...)
			hydrated := shellquote.Join(tokens...)

			outcome, err := exec.Execute(cmd.Context(), spec, hydrated, "")
			if err != nil {
				return shared.NewExecutionError(fmt.Sprintf("%s failed", spec.CanonicalID()), err)
			}
			if outcome.StatusCode < 200 || outcome.StatusCode >= 300 {
				return shared.NewExecutionError(secrets.RedactSensitive(outcome.Log), nil)
			}

			if outcome.Result == nil {
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Log)
				return nil
			}
			out, err := json.MarshalIndent(outcome.Result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), secrets.RedactSensitive(string(out)))
			return nil
		},
	}
}

// missingProviderSuggestion checks every provider-backed required flag
// and positional in spec against the raw args. If one is missing, it
// fetches candidate values from the provider command (through cache) and
// returns a message naming them; returns "" when nothing is missing.
func missingProviderSuggestion(ctx context.Context, reg *registry.Registry, exec *httpexec.Executor, cache *providercache.Cache, spec *registry.CommandSpec, args []string) string {
	flags, positionals, err := httpexec.ParseArguments(spec, args)
	if err != nil {
		return ""
	}

	bound := make(map[string]any, len(flags))
	for name, v := range flags {
		if v != nil {
			bound[name] = *v
		}
	}

	for i, p := range spec.PositionalArgs {
		if p.Provider == nil || i < len(positionals) {
			continue
		}
		if values, ok := fetchProviderValues(ctx, reg, exec, cache, p.Provider, bound); ok {
			return fmt.Sprintf("missing required argument %q; candidates: %s", p.Name, strings.Join(values, ", "))
		}
	}

	for _, f := range spec.Flags {
		if !f.Required || f.Provider == nil {
			continue
		}
		if v, ok := flags[f.Name]; ok && v != nil {
			continue
		}
		if values, ok := fetchProviderValues(ctx, reg, exec, cache, f.Provider, bound); ok {
			return fmt.Sprintf("missing required flag --%s; candidates: %s", f.Name, strings.Join(values, ", "))
		}
	}

	return ""
}

// fetchProviderValues runs p's backing command (through cache, keyed by
// a fingerprint of the provider id and its bound inputs) and extracts a
// short list of candidate values from its result, trying each result
// item's "id" then "name" field.
func fetchProviderValues(ctx context.Context, reg *registry.Registry, exec *httpexec.Executor, cache *providercache.Cache, p *registry.Provider, consumerBound map[string]any) ([]string, bool) {
	providerSpec, err := reg.ByCanonicalID(p.CommandID)
	if err != nil {
		return nil, false
	}

	boundInputs := make(map[string]any, len(p.Binds))
	for _, b := range p.Binds {
		if v, ok := consumerBound[b.From]; ok {
			boundInputs[b.ProviderKey] = v
		}
	}

	fp := providercache.Fingerprint(p.CommandID, boundInputs)
	result, err := cache.GetOrBuild(ctx, fp, func(ctx context.Context) (any, error) {
		tokens := []string{providerSpec.Group, providerSpec.Name}
		for k, v := range boundInputs {
			tokens = append(tokens, "--"+k, fmt.Sprintf("%v", v))
		}
		outcome, err := exec.Execute(ctx, providerSpec, shellquote.Join(tokens...), "")
		if err != nil {
			return nil, err
		}
		return outcome.Result, nil
	})
	if err != nil {
		return nil, false
	}

	values := extractCandidateValues(result)
	return values, len(values) > 0
}

func extractCandidateValues(result any) []string {
	items, ok := result.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"id", "name"} {
			if v, ok := m[key]; ok {
				out = append(out, fmt.Sprintf("%v", v))
				break
			}
		}
	}
	return out
}
