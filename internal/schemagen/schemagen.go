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

// Package schemagen derives a command catalog from a JSON hyper-schema
// document: it walks the schema for "links" arrays, classifies each
// link by href shape and HTTP method, and produces registry.CommandSpec
// values ready for Registry.Insert (after provider resolution fills in
// Flag.Provider/PositionalArg.Provider).
package schemagen

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tombee/oatty/internal/registry"
)

// Generate parses schemaJSON and derives the full command catalog.
func Generate(schemaJSON []byte) ([]*registry.CommandSpec, error) {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("parse schema json: %w", err)
	}
	return DeriveCommands(doc)
}

// DeriveCommands walks an already-decoded schema document (the result
// of json.Unmarshal into `any`) and derives commands from every "links"
// array found anywhere in the tree. Commands are sorted and
// deduplicated by (name, method, path).
func DeriveCommands(root any) ([]*registry.CommandSpec, error) {
	var nodes []map[string]any
	walkLinks(root, &nodes)

	type keyed struct {
		spec *registry.CommandSpec
		key  string
	}
	var cmds []keyed
	seenNames := make(map[string]bool)

	for _, node := range nodes {
		linksRaw, ok := node["links"].([]any)
		if !ok {
			continue
		}
		for _, lr := range linksRaw {
			link, ok := lr.(map[string]any)
			if !ok {
				continue
			}
			href, _ := link["href"].(string)
			method, _ := link["method"].(string)
			if href == "" || method == "" {
				continue
			}
			title, _ := link["title"].(string)
			desc, _ := link["description"].(string)
			if desc == "" {
				desc = title
			}

			group, nameSegs, classifyHref := resolveGroupAndRemainder(href)
			action, ok := classifyAction(classifyHref, method)
			if !ok {
				continue
			}

			pathTmpl, positionals := pathAndVarsWithHelp(href, root)
			if pathTmpl == "" {
				continue
			}
			flags := extractFlagsResolved(link, root)
			ranges := extractRanges(link)

			name := joinNameSegs(nameSegs, toKebabCase(title))
			if seenNames[name] {
				name = joinNameSegs(nameSegs, action)
			}
			seenNames[name] = true
			if group == "" {
				group = "misc"
			}

			spec := &registry.CommandSpec{
				Group:          group,
				Name:           name,
				Summary:        desc,
				PositionalArgs: positionals,
				Flags:          flags,
				Ranges:         ranges,
				Execution: registry.Execution{
					Kind: registry.ExecutionHTTP,
					HTTP: &registry.HTTPExecution{
						Method: method,
						Path:   pathTmpl,
					},
				},
			}
			cmds = append(cmds, keyed{spec: spec, key: name + "\x00" + method + "\x00" + pathTmpl})
		}
	}

	sort.Slice(cmds, func(i, j int) bool { return cmds[i].spec.Name < cmds[j].spec.Name })

	out := make([]*registry.CommandSpec, 0, len(cmds))
	var lastKey string
	haveLast := false
	for _, c := range cmds {
		if haveLast && c.key == lastKey {
			continue
		}
		out = append(out, c.spec)
		lastKey = c.key
		haveLast = true
	}
	return out, nil
}

// walkLinks recursively collects every object in the schema tree that
// carries a "links" key.
func walkLinks(v any, out *[]map[string]any) {
	switch val := v.(type) {
	case map[string]any:
		if _, ok := val["links"]; ok {
			*out = append(*out, val)
		}
		for _, child := range val {
			walkLinks(child, out)
		}
	case []any:
		for _, child := range val {
			walkLinks(child, out)
		}
	}
}
