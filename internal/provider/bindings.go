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

import "github.com/tombee/oatty/internal/registry"

type bindingOutcome int

const (
	bindingNoPlaceholders bindingOutcome = iota
	bindingSatisfied
	bindingUnsatisfied
)

// nameSynonyms lists, for a handful of common placeholder/flag names,
// the consumer input names that would also satisfy them (an "app"
// placeholder can be bound from either an "app" or an "app_id"
// consumer input, and vice versa).
var nameSynonyms = map[string][]string{
	"app":        {"app", "app_id"},
	"app_id":     {"app_id", "app"},
	"addon":      {"addon", "addon_id"},
	"addon_id":   {"addon_id", "addon"},
	"team":       {"team", "team_name"},
	"team_name":  {"team_name", "team"},
	"pipeline":   {"pipeline"},
	"space":      {"space", "space_id"},
	"space_id":   {"space_id", "space"},
	"region":     {"region"},
	"stack":      {"stack"},
}

// coreProviderFlagNames restricts which required provider flags this
// resolver will even attempt to bind; anything else is treated as
// unbindable rather than guessed at.
var coreProviderFlagNames = map[string]bool{
	"app": true, "app_id": true, "pipeline": true, "team": true, "team_name": true,
	"addon": true, "addon_id": true, "space": true, "space_id": true,
	"region": true, "stack": true,
}

// computeProviderBindings attempts to bind a candidate provider's own
// path placeholders and required flags to inputs available on the
// consumer command strictly before the target positional argument.
func computeProviderBindings(
	providerID, targetPositionalName string,
	positionalIndex map[string]int,
	consumer *registry.CommandSpec,
	placeholders, requiredFlags map[string][]string,
) (bindingOutcome, []registry.Bind) {
	providerPlaceholders := placeholders[providerID]
	providerRequiredFlags := requiredFlags[providerID]

	if len(providerPlaceholders) == 0 && len(providerRequiredFlags) == 0 {
		return bindingNoPlaceholders, nil
	}

	available := buildAvailableInputs(targetPositionalName, positionalIndex, consumer)
	if len(available) == 0 {
		return bindingUnsatisfied, nil
	}

	var binds []registry.Bind
	for _, ph := range providerPlaceholders {
		bind, ok := findBindingForPlaceholder(ph, available)
		if !ok {
			return bindingUnsatisfied, nil
		}
		binds = append(binds, bind)
	}

	binds, ok := bindRequiredFlags(providerRequiredFlags, available, consumer, binds)
	if !ok {
		return bindingUnsatisfied, nil
	}
	return bindingSatisfied, binds
}

func buildAvailableInputs(targetPositionalName string, positionalIndex map[string]int, consumer *registry.CommandSpec) map[string]bool {
	targetIdx, ok := positionalIndex[targetPositionalName]
	if !ok {
		return nil
	}
	out := make(map[string]bool)
	for i, p := range consumer.PositionalArgs {
		if i < targetIdx {
			out[p.Name] = true
		}
	}
	return out
}

func findBindingForPlaceholder(placeholderName string, available map[string]bool) (registry.Bind, bool) {
	candidates, ok := nameSynonyms[placeholderName]
	if !ok {
		candidates = []string{placeholderName}
	}
	for _, candidate := range candidates {
		if available[candidate] {
			return registry.Bind{ProviderKey: placeholderName, From: candidate}, true
		}
	}
	return registry.Bind{}, false
}

func bindRequiredFlags(requiredFlags []string, available map[string]bool, consumer *registry.CommandSpec, binds []registry.Bind) ([]registry.Bind, bool) {
	consumerRequired := make(map[string]bool)
	for _, f := range consumer.Flags {
		if f.Required {
			consumerRequired[f.Name] = true
		}
	}

	for _, required := range requiredFlags {
		if !coreProviderFlagNames[required] {
			continue
		}
		candidates, ok := nameSynonyms[required]
		if !ok {
			candidates = []string{required}
		}

		bound := false
		for _, candidate := range candidates {
			if available[candidate] {
				binds = append(binds, registry.Bind{ProviderKey: required, From: candidate})
				bound = true
				break
			}
		}
		if bound {
			continue
		}
		for _, candidate := range candidates {
			if consumerRequired[candidate] {
				binds = append(binds, registry.Bind{ProviderKey: required, From: candidate})
				bound = true
				break
			}
		}
		if !bound {
			return binds, false
		}
	}
	return binds, true
}
