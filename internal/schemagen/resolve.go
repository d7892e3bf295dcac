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

package schemagen

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tombee/oatty/internal/registry"
)

// pathAndVarsWithHelp rewrites an href's {(#/json/pointer)} and {name}
// placeholder segments into {singular_name} form and derives a
// PositionalArg for each, resolving its help text from the schema node
// the pointer references (if any).
func pathAndVarsWithHelp(href string, root any) (string, []registry.PositionalArg) {
	var args []registry.PositionalArg
	var outSegs []string
	var prev string

	for _, seg := range splitPath(href) {
		if strings.HasPrefix(seg, "{") {
			name := "id"
			if prev != "" {
				name = singularize(prev)
			}
			var help string
			if ptrEnc, ok := extractPlaceholderPtr(seg); ok {
				decoded, err := url.QueryUnescape(ptrEnc)
				if err != nil {
					decoded = ptrEnc
				}
				ptr := strings.TrimPrefix(decoded, "#")
				if val, ok := jsonPointerLookup(root, ptr); ok {
					if d, ok := getDescription(val, root); ok {
						help = d
					}
				}
			}
			args = append(args, registry.PositionalArg{Name: name, Help: help})
			outSegs = append(outSegs, "{"+name+"}")
		} else {
			outSegs = append(outSegs, seg)
		}
		prev = seg
	}
	if len(outSegs) == 0 {
		return "", nil
	}
	return "/" + strings.Join(outSegs, "/"), args
}

// jsonPointerLookup resolves an RFC 6901 JSON pointer (without the
// leading '#') against a decoded JSON document.
func jsonPointerLookup(root any, ptr string) (any, bool) {
	if ptr == "" {
		return root, true
	}
	ptr = strings.TrimPrefix(ptr, "/")
	cur := root
	for _, tok := range strings.Split(ptr, "/") {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tok = strings.ReplaceAll(tok, "~0", "~")
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[tok]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// extractRanges returns the "ranges" array declared directly on a link
// object.
func extractRanges(link map[string]any) []string {
	raw, ok := link["ranges"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// resolveRef follows a single "$ref" pointer, if present, merging in
// any of type/description/enum/default the local schema does not
// already declare. Mirrors the forgiving $ref handling the rest of
// this package applies when reading nested schema fragments.
func resolveRef(schema map[string]any, root any) map[string]any {
	ref, ok := schema["$ref"].(string)
	if !ok {
		return schema
	}
	target, ok := jsonPointerLookup(root, strings.TrimPrefix(ref, "#"))
	if !ok {
		return schema
	}
	targetMap, ok := target.(map[string]any)
	if !ok {
		return schema
	}
	merged := make(map[string]any, len(schema))
	for k, v := range schema {
		merged[k] = v
	}
	for _, key := range []string{"type", "description", "enum", "default"} {
		if _, has := merged[key]; !has {
			if v, has := targetMap[key]; has {
				merged[key] = v
			}
		}
	}
	return merged
}

// getDescription recursively resolves a schema fragment's description,
// following $ref and joining anyOf/oneOf with " or " and allOf with
// " and ".
func getDescription(schemaAny any, root any) (string, bool) {
	schema, ok := schemaAny.(map[string]any)
	if !ok {
		return "", false
	}
	if ref, ok := schema["$ref"].(string); ok {
		target, ok := jsonPointerLookup(root, strings.TrimPrefix(ref, "#"))
		if !ok {
			return "", false
		}
		return getDescription(target, root)
	}
	if d, ok := schema["description"].(string); ok {
		return d, true
	}
	if descs, ok := joinSubschemaDescriptions(schema["anyOf"], root, " or "); ok {
		return descs, true
	}
	if descs, ok := joinSubschemaDescriptions(schema["oneOf"], root, " or "); ok {
		return descs, true
	}
	if descs, ok := joinSubschemaDescriptions(schema["allOf"], root, " and "); ok {
		return descs, true
	}
	return "", false
}

func joinSubschemaDescriptions(raw any, root any, sep string) (string, bool) {
	arr, ok := raw.([]any)
	if !ok {
		return "", false
	}
	var parts []string
	for _, item := range arr {
		if d, ok := getDescription(item, root); ok {
			parts = append(parts, d)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, sep), true
}

// getType recursively resolves a schema fragment's scalar type,
// defaulting to "string" when it cannot be determined uniquely.
func getType(schemaAny any, root any) string {
	schema, ok := schemaAny.(map[string]any)
	if !ok {
		return "string"
	}
	if ref, ok := schema["$ref"].(string); ok {
		if target, ok := jsonPointerLookup(root, strings.TrimPrefix(ref, "#")); ok {
			return getType(target, root)
		}
	}
	switch t := schema["type"].(type) {
	case string:
		return t
	case []any:
		var nonNull []string
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				nonNull = append(nonNull, s)
			}
		}
		if len(nonNull) == 1 {
			return nonNull[0]
		}
	}
	if u, ok := uniqueSubschemaType(schema["anyOf"], root); ok {
		return u
	}
	if u, ok := uniqueSubschemaType(schema["oneOf"], root); ok {
		return u
	}
	return "string"
}

func uniqueSubschemaType(raw any, root any) (string, bool) {
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return "", false
	}
	seen := make(map[string]bool)
	for _, item := range arr {
		seen[getType(item, root)] = true
	}
	if len(seen) != 1 {
		return "", false
	}
	for t := range seen {
		return t, true
	}
	return "", false
}

// getEnumValues recursively collects a schema fragment's allowed
// string values, following $ref and unioning anyOf/oneOf branches.
func getEnumValues(schemaAny any, root any) []string {
	schema, ok := schemaAny.(map[string]any)
	if !ok {
		return nil
	}
	if ref, ok := schema["$ref"].(string); ok {
		target, ok := jsonPointerLookup(root, strings.TrimPrefix(ref, "#"))
		if !ok {
			return nil
		}
		return getEnumValues(target, root)
	}
	if en, ok := schema["enum"].([]any); ok {
		out := make([]string, 0, len(en))
		for _, v := range en {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	var out []string
	if arr, ok := schema["anyOf"].([]any); ok {
		for _, item := range arr {
			out = append(out, getEnumValues(item, root)...)
		}
	}
	if arr, ok := schema["oneOf"].([]any); ok {
		for _, item := range arr {
			out = append(out, getEnumValues(item, root)...)
		}
	}
	return out
}

// getDefault recursively resolves a schema fragment's default value,
// stringified, following $ref and taking the first resolvable branch
// of anyOf/oneOf.
func getDefault(schemaAny any, root any) (string, bool) {
	schema, ok := schemaAny.(map[string]any)
	if !ok {
		return "", false
	}
	if ref, ok := schema["$ref"].(string); ok {
		if target, ok := jsonPointerLookup(root, strings.TrimPrefix(ref, "#")); ok {
			if d, ok := getDefault(target, root); ok {
				return d, true
			}
		}
	}
	if def, ok := schema["default"]; ok {
		return stringifyDefault(def), true
	}
	if arr, ok := schema["anyOf"].([]any); ok {
		for _, item := range arr {
			if d, ok := getDefault(item, root); ok {
				return d, true
			}
		}
	}
	if arr, ok := schema["oneOf"].([]any); ok {
		for _, item := range arr {
			if d, ok := getDefault(item, root); ok {
				return d, true
			}
		}
	}
	return "", false
}

func stringifyDefault(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// extractFlagsResolved derives the command's flags from a link's
// request-body schema, plus a synthetic set of range-pagination flags
// when the link supports ranges.
func extractFlagsResolved(link map[string]any, root any) []registry.Flag {
	var flags []registry.Flag

	schema, _ := link["schema"].(map[string]any)
	if schema != nil {
		required := make(map[string]bool)
		if req, ok := schema["required"].([]any); ok {
			for _, r := range req {
				if s, ok := r.(string); ok {
					required[s] = true
				}
			}
		}
		if props, ok := schema["properties"].(map[string]any); ok {
			names := make([]string, 0, len(props))
			for name := range props {
				names = append(names, name)
			}
			sortStrings(names)
			for _, name := range names {
				fieldAny := props[name]
				field, ok := fieldAny.(map[string]any)
				if !ok {
					continue
				}
				merged := resolveRef(field, root)

				ty := mapFlagType(getType(merged, root))
				enumValues := getEnumValues(merged, root)
				defaultValue, hasDefault := getDefault(merged, root)
				if !hasDefault && len(enumValues) > 0 {
					defaultValue = enumValues[0]
					hasDefault = true
				}
				description, _ := getDescription(merged, root)

				var defaultAny any
				if hasDefault {
					defaultAny = defaultValue
				}
				flags = append(flags, registry.Flag{
					Name:         name,
					ShortName:    alphabeticShortName(name),
					Required:     required[name],
					Type:         ty,
					EnumValues:   enumValues,
					DefaultValue: defaultAny,
					Description:  description,
				})
			}
		}
	}

	if ranges := extractRanges(link); len(ranges) > 0 {
		flags = append(flags,
			registry.Flag{
				Name: "range-field", ShortName: "r", Type: registry.FlagString,
				EnumValues: ranges, DefaultValue: ranges[0],
				Description: "Field to use for range-based pagination",
			},
			registry.Flag{
				Name: "range-start", ShortName: "s", Type: registry.FlagString,
				Description: "Start value for range (inclusive)",
			},
			registry.Flag{
				Name: "range-end", ShortName: "e", Type: registry.FlagString,
				Description: "End value for range (inclusive)",
			},
			registry.Flag{
				Name: "max", ShortName: "m", Type: registry.FlagNumber,
				DefaultValue: "25",
				Description:  "Max number of items to retrieve",
			},
			registry.Flag{
				Name: "order", ShortName: "o", Type: registry.FlagEnum,
				EnumValues: []string{"asc", "desc"}, DefaultValue: "desc",
				Description: "Sort order of the results",
			},
		)
	}
	return flags
}

func alphabeticShortName(name string) string {
	if name == "" {
		return ""
	}
	r := rune(name[0])
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return string(r)
	}
	return ""
}

func mapFlagType(t string) registry.FlagType {
	switch t {
	case "boolean":
		return registry.FlagBoolean
	case "integer", "number":
		return registry.FlagNumber
	default:
		return registry.FlagString
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
