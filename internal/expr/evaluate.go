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

import (
	"fmt"
	"strconv"
	"strings"
)

// EvaluationError is raised for runtime failures that parsing alone
// cannot catch: an unsupported node or operator reaching Eval. The
// grammar has no arithmetic, so there is no divide-by-zero case.
type EvaluationError struct {
	Message string
}

func (e *EvaluationError) Error() string {
	return "expression evaluation error: " + e.Message
}

// Resolver looks up a dotted/indexed path rooted at "inputs" or "steps"
// against the current run state. It returns (value, true) when the path
// resolves to something, or (nil, false) when any segment is missing.
type Resolver func(root string, segments []PathSegment) (any, bool)

// Eval evaluates a parsed expression tree against resolver, returning a
// Go value: bool, float64, string, nil, or a resolved path's raw JSON
// value for path-only expressions.
func Eval(n Node, resolve Resolver) (any, error) {
	switch v := n.(type) {
	case *NumberLit:
		return v.Value, nil
	case *StringLit:
		return v.Value, nil
	case *BoolLit:
		return v.Value, nil
	case *NullLit:
		return nil, nil
	case *PathExpr:
		val, ok := resolve(v.Root, v.Segments)
		if !ok {
			return nil, nil
		}
		return val, nil
	case *UnaryExpr:
		operand, err := Eval(v.Operand, resolve)
		if err != nil {
			return nil, err
		}
		return !truthy(operand), nil
	case *BinaryExpr:
		return evalBinary(v, resolve)
	default:
		return nil, &EvaluationError{Message: fmt.Sprintf("unsupported node %T", n)}
	}
}

func evalBinary(b *BinaryExpr, resolve Resolver) (any, error) {
	switch b.Op {
	case OpAnd:
		left, err := Eval(b.Left, resolve)
		if err != nil {
			return nil, err
		}
		if !truthy(left) {
			return false, nil
		}
		right, err := Eval(b.Right, resolve)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	case OpOr:
		left, err := Eval(b.Left, resolve)
		if err != nil {
			return nil, err
		}
		if truthy(left) {
			return true, nil
		}
		right, err := Eval(b.Right, resolve)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil
	}

	left, err := Eval(b.Left, resolve)
	if err != nil {
		return nil, err
	}
	right, err := Eval(b.Right, resolve)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case OpEq:
		return valuesEqual(left, right), nil
	case OpNeq:
		return !valuesEqual(left, right), nil
	case OpLt, OpLte, OpGt, OpGte:
		return compareOrdered(left, right, b.Op)
	default:
		return nil, &EvaluationError{Message: fmt.Sprintf("unsupported operator %q", b.Op)}
	}
}

// truthy implements missing-path-as-false and standard JS-ish boolean
// coercion for the narrow set of types this language produces.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

// valuesEqual compares two values for `==`/`!=`. Comparison between a
// string and a number performs string-equal-after-to-string, per spec.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return toDisplayString(a) == toDisplayString(b)
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return toDisplayString(a) == toDisplayString(b)
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return toDisplayString(a) == toDisplayString(b)
	default:
		return toDisplayString(a) == toDisplayString(b)
	}
}

// compareOrdered implements total ordering on numbers and lexicographic
// ordering on strings; mixed types fall back to string comparison.
func compareOrdered(a, b any, op BinaryOp) (bool, error) {
	if af, aok := a.(float64); aok {
		if bf, bok := b.(float64); bok {
			return numericCompare(af, bf, op), nil
		}
	}
	as := toDisplayString(a)
	bs := toDisplayString(b)
	switch op {
	case OpLt:
		return as < bs, nil
	case OpLte:
		return as <= bs, nil
	case OpGt:
		return as > bs, nil
	case OpGte:
		return as >= bs, nil
	default:
		return false, &EvaluationError{Message: fmt.Sprintf("unsupported comparison operator %q", op)}
	}
}

func numericCompare(a, b float64, op BinaryOp) bool {
	switch op {
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	default:
		return false
	}
}

func toDisplayString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// EvalBool parses and evaluates src as a boolean condition (used for
// `if` and `repeat.until`). A missing path anywhere evaluates to false
// rather than erroring, per spec.
func EvalBool(src string, resolve Resolver) (bool, error) {
	node, err := Parse(NormalizeExpr(src))
	if err != nil {
		return false, err
	}
	v, err := Eval(node, resolve)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// templateSpanStart/End mark `${{` and `}}`.
const (
	templateSpanStart = "${{"
	templateSpanEnd   = "}}"
)

// ExpandTemplate scans s for `${{ expr }}` spans and replaces each with
// its evaluated string form. A missing path resolves to the empty
// string (template context), matching the spec's distinction between
// template and condition contexts (the latter sees a typed null,
// handled by EvalBool/Eval directly rather than through this function).
func ExpandTemplate(s string, resolve Resolver) (string, error) {
	var sb strings.Builder
	rest := s
	for {
		start := strings.Index(rest, templateSpanStart)
		if start == -1 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		end := strings.Index(rest[start:], templateSpanEnd)
		if end == -1 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		end += start
		sb.WriteString(rest[:start])
		exprSrc := strings.TrimSpace(rest[start+len(templateSpanStart) : end])
		node, err := Parse(exprSrc)
		if err != nil {
			return "", err
		}
		val, err := Eval(node, resolve)
		if err != nil {
			return "", err
		}
		if val == nil {
			// Missing path in template context renders as empty string.
		} else {
			sb.WriteString(toDisplayString(val))
		}
		rest = rest[end+len(templateSpanEnd):]
	}
}

// IsWholeTemplateSpan reports whether s is exactly one `${{ ... }}` span
// with nothing else around it. Callers (e.g. `with` values, `body`
// leaves that should preserve JSON type rather than stringify) use this
// to decide whether to evaluate to a raw JSON value instead of going
// through ExpandTemplate's string substitution.
func IsWholeTemplateSpan(s string) (exprSrc string, ok bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, templateSpanStart) || !strings.HasSuffix(trimmed, templateSpanEnd) {
		return "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, templateSpanStart), templateSpanEnd)
	return strings.TrimSpace(inner), true
}

// EvalTyped evaluates a whole-span expression and returns its raw value
// (preserving JSON type), for use by `with`/`body` evaluation where a
// field value that is exactly one template span should keep its
// original type (number, bool, object) rather than being stringified.
func EvalTyped(exprSrc string, resolve Resolver) (any, error) {
	node, err := Parse(exprSrc)
	if err != nil {
		return nil, err
	}
	return Eval(node, resolve)
}
