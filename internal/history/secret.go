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

package history

import "github.com/tombee/oatty/internal/secrets"

// valueContainsSecret reports whether v carries a secret-shaped string
// anywhere in its tree: a bare string leaf, or recursively through
// arrays and objects produced by decoding/constructing a JSON value.
func valueContainsSecret(v any) bool {
	switch val := v.(type) {
	case string:
		return secrets.LooksLikeSecret(val)
	case []any:
		for _, item := range val {
			if valueContainsSecret(item) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, item := range val {
			if valueContainsSecret(item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
