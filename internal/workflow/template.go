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

package workflow

import "github.com/tombee/oatty/internal/expr"

// Materialize recursively expands templates in v against resolve. A
// string that is exactly one `${{ ... }}` span evaluates to its typed
// value (preserving numbers, booleans, objects); any other string is
// expanded in place with each span's result stringified. Maps and
// slices are walked recursively; every other value passes through
// unchanged. A missing path in a template span resolves to the empty
// string (or, for a whole-span value, to nil) rather than failing —
// `with` values and `body` leaves are optional positions.
func Materialize(v any, resolve expr.Resolver) (any, error) {
	switch val := v.(type) {
	case string:
		if exprSrc, ok := expr.IsWholeTemplateSpan(val); ok {
			return expr.EvalTyped(exprSrc, resolve)
		}
		return expr.ExpandTemplate(val, resolve)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			mv, err := Materialize(vv, resolve)
			if err != nil {
				return nil, err
			}
			out[k] = mv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			mv, err := Materialize(vv, resolve)
			if err != nil {
				return nil, err
			}
			out[i] = mv
		}
		return out, nil
	default:
		return val, nil
	}
}
