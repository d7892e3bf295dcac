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

package expr

import "strings"

// Context identifies which path roots an expression may reference. `if`
// guards and provider-arg templates may reference both inputs and
// steps; `repeat.until` may reference both too, but a bare `output`
// root (forgetting the `steps.<id>.` prefix) is specifically rejected
// since it is the single most common authoring mistake for that field.
type Context int

const (
	// ContextGeneral covers `if` guards and templates.
	ContextGeneral Context = iota
	// ContextRepeatUntil covers `repeat.until`, which additionally
	// rejects a bare `output` path root.
	ContextRepeatUntil
)

// allowedRoots is the set of path roots any expression may reference.
var allowedRoots = map[string]bool{
	"inputs": true,
	"steps":  true,
}

// Validate parses src and checks it against the validation-only
// restrictions: strict-equality operators are rejected (already done by
// the parser itself), path roots are restricted to inputs/steps, and
// (for repeat.until) a bare `output` root is rejected.
func Validate(src string, ctx Context) (Node, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if err := validateNode(node, ctx); err != nil {
		return nil, err
	}
	return node, nil
}

// NormalizeExpr trims a surrounding `${{ ... }}` wrapper if present,
// returning the bare expression source. Wrapping is optional per the
// manifest grammar.
func NormalizeExpr(src string) string {
	s := strings.TrimSpace(src)
	if strings.HasPrefix(s, "${{") && strings.HasSuffix(s, "}}") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "${{"), "}}")
		return strings.TrimSpace(s)
	}
	return s
}

func validateNode(n Node, ctx Context) error {
	switch v := n.(type) {
	case *BinaryExpr:
		if err := validateNode(v.Left, ctx); err != nil {
			return err
		}
		return validateNode(v.Right, ctx)
	case *UnaryExpr:
		return validateNode(v.Operand, ctx)
	case *PathExpr:
		if ctx == ContextRepeatUntil && v.Root == "output" {
			return &ParseError{Message: "repeat.until must reference steps.<id>.output, not a bare output root"}
		}
		if !allowedRoots[v.Root] {
			return &ParseError{Message: "unsupported path root " + "\"" + v.Root + "\"" + ": only inputs and steps are allowed"}
		}
		return nil
	case *NumberLit, *StringLit, *BoolLit, *NullLit:
		return nil
	default:
		return nil
	}
}
