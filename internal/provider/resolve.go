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

// Package provider performs two-pass provider resolution over a fully
// populated command list: it proposes candidate value providers for
// flags and positional arguments from naming heuristics, then only
// assigns the ones it can verify actually exist in the command index
// and actually bind to inputs available earlier in the consumer
// command.
package provider

import (
	"strings"

	"github.com/tombee/oatty/internal/registry"
)

// Resolve mutates cmds in place, assigning registry.Provider values to
// eligible flags and positional arguments.
func Resolve(cmds []*registry.CommandSpec) {
	index := buildCommandIndex(cmds)
	listGroups := findGroupsWithListCommands(index)
	placeholders, requiredFlags := precomputeMetadata(cmds)

	for _, cmd := range cmds {
		applyFlagProviders(cmd.Flags, listGroups, index)
		applyPositionalProviders(cmd, index, placeholders, requiredFlags)
	}
}

func buildCommandIndex(cmds []*registry.CommandSpec) map[string]bool {
	index := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		index[c.CanonicalID()] = true
	}
	return index
}

func findGroupsWithListCommands(index map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for id := range index {
		group, name, ok := strings.Cut(id, ":")
		if ok && name == "list" {
			out[group] = true
		}
	}
	return out
}

func precomputeMetadata(cmds []*registry.CommandSpec) (placeholders, requiredFlags map[string][]string) {
	placeholders = make(map[string][]string, len(cmds))
	requiredFlags = make(map[string][]string, len(cmds))
	for _, c := range cmds {
		id := c.CanonicalID()
		if c.Execution.Kind == registry.ExecutionHTTP && c.Execution.HTTP != nil {
			placeholders[id] = extractPathPlaceholders(c.Execution.HTTP.Path)
		}
		var req []string
		for _, f := range c.Flags {
			if f.Required {
				req = append(req, f.Name)
			}
		}
		requiredFlags[id] = req
	}
	return placeholders, requiredFlags
}

// flagToGroupSynonyms maps a flag's singular name to the plural group
// name it supplies values from.
var flagToGroupSynonyms = map[string]string{
	"app":           "apps",
	"addon":         "addons",
	"pipeline":      "pipelines",
	"team":          "teams",
	"space":         "spaces",
	"dyno":          "dynos",
	"release":       "releases",
	"collaborator":  "collaborators",
	"region":        "regions",
	"stack":         "stacks",
}

func applyFlagProviders(flags []registry.Flag, listGroups, index map[string]bool) {
	for i := range flags {
		group, ok := mapFlagNameToGroup(flags[i].Name)
		if !ok {
			continue
		}
		listID := group + ":list"
		if listGroups[group] && index[listID] {
			flags[i].Provider = &registry.Provider{CommandID: listID}
		}
	}
}

func mapFlagNameToGroup(flagName string) (string, bool) {
	normalized := strings.ToLower(flagName)
	if group, ok := flagToGroupSynonyms[normalized]; ok {
		return group, true
	}
	return applyConservativePluralization(normalized)
}

// applyConservativePluralization turns a singular noun into the plural
// group name it most likely corresponds to, using a handful of
// deliberately conservative English pluralization rules (the kind of
// heuristic worth applying only because a downstream verification
// step checks the guess against the real command index before it is
// ever assigned).
func applyConservativePluralization(singular string) (string, bool) {
	if singular == "" {
		return "", false
	}
	if strings.HasSuffix(singular, "s") {
		return singular, true
	}
	if strings.HasSuffix(singular, "y") && len(singular) > 1 {
		prev := singular[len(singular)-2]
		if !isVowel(prev) {
			return singular[:len(singular)-1] + "ies", true
		}
	}
	if strings.HasSuffix(singular, "x") || strings.HasSuffix(singular, "ch") || strings.HasSuffix(singular, "sh") {
		return singular + "es", true
	}
	return singular + "s", true
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

type pathSegment struct {
	name        string
	isPlaceholder bool
}

func parsePathSegments(path string) []pathSegment {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil
	}
	var out []pathSegment
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			out = append(out, pathSegment{name: strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")), isPlaceholder: true})
		} else {
			out = append(out, pathSegment{name: seg})
		}
	}
	return out
}

func extractPathPlaceholders(path string) []string {
	var out []string
	for _, seg := range parsePathSegments(path) {
		if seg.isPlaceholder {
			out = append(out, seg.name)
		}
	}
	return out
}

func isVersionSegment(seg string) bool {
	trimmed := strings.TrimSpace(seg)
	if len(trimmed) <= 1 || trimmed[0] != 'v' {
		return false
	}
	for _, r := range trimmed[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeGroupName applies the config-vars->config alias also used
// by schemagen's group derivation, kept local and duplicated
// deliberately: this package resolves providers purely from a
// CommandSpec slice and should not import schemagen's internals for
// a single two-branch lookup.
func normalizeGroupName(seg string) string {
	if seg == "config-vars" {
		return "config"
	}
	return seg
}

func applyPositionalProviders(cmd *registry.CommandSpec, index map[string]bool, placeholders, requiredFlags map[string][]string) {
	if cmd.Execution.Kind != registry.ExecutionHTTP || cmd.Execution.HTTP == nil {
		return
	}
	positionalIndex := buildPositionalIndex(cmd)
	segs := parsePathSegments(cmd.Execution.HTTP.Path)

	var prevConcrete string
	for _, seg := range segs {
		if seg.isPlaceholder {
			if prevConcrete != "" {
				processPlaceholder(cmd, seg.name, prevConcrete, positionalIndex, index, placeholders, requiredFlags)
			}
			continue
		}
		if !isVersionSegment(seg.name) {
			prevConcrete = seg.name
		}
	}
}

func buildPositionalIndex(cmd *registry.CommandSpec) map[string]int {
	out := make(map[string]int, len(cmd.PositionalArgs))
	for i, p := range cmd.PositionalArgs {
		out[p.Name] = i
	}
	return out
}

func findProviderCandidates(normalizedGroup string, cmd *registry.CommandSpec, index map[string]bool) []string {
	var candidates []string
	simple := normalizedGroup + ":list"
	if index[simple] {
		candidates = append(candidates, simple)
	}

	var concrete []string
	for _, seg := range parsePathSegments(cmd.Execution.HTTP.Path) {
		if !seg.isPlaceholder && !isVersionSegment(seg.name) {
			concrete = append(concrete, seg.name)
		}
	}
	for i := 0; i < len(concrete)-1; i++ {
		scoped := concrete[i] + ":" + normalizedGroup + ":list"
		if index[scoped] {
			candidates = append(candidates, scoped)
		}
	}
	return candidates
}

func processPlaceholder(cmd *registry.CommandSpec, placeholderName, prevSegment string, positionalIndex map[string]int, index map[string]bool, placeholders, requiredFlags map[string][]string) {
	normalizedGroup := normalizeGroupName(prevSegment)
	candidates := findProviderCandidates(normalizedGroup, cmd, index)

	var bestID string
	var bestBinds []registry.Bind
	haveBest := false

	for _, candidateID := range candidates {
		outcome, binds := computeProviderBindings(candidateID, placeholderName, positionalIndex, cmd, placeholders, requiredFlags)
		switch outcome {
		case bindingSatisfied:
			if !haveBest || len(bestBinds) == 0 {
				bestID, bestBinds, haveBest = candidateID, binds, true
			}
		case bindingNoPlaceholders:
			if !haveBest {
				bestID, bestBinds, haveBest = candidateID, nil, true
			}
		case bindingUnsatisfied:
			// skip
		}
	}

	if !haveBest {
		return
	}
	for i := range cmd.PositionalArgs {
		if cmd.PositionalArgs[i].Name == placeholderName {
			cmd.PositionalArgs[i].Provider = &registry.Provider{CommandID: bestID, Binds: bestBinds}
			return
		}
	}
}
