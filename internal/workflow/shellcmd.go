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

import (
	"fmt"
	"sort"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/tombee/oatty/internal/registry"
)

// BuildHydratedShellCommand renders a step's command spec plus its
// materialized `with` values as the shell-quoted command line C5
// expects, e.g. `apps create --name "my cool app" --async`. Flag
// iteration order is sorted for determinism; a boolean true is
// rendered as a bare flag, boolean false is omitted, and every other
// value is stringified.
func BuildHydratedShellCommand(spec *registry.CommandSpec, with map[string]any) string {
	tokens := []string{spec.Group, spec.Name}

	names := make([]string, 0, len(with))
	for name := range with {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch v := with[name].(type) {
		case bool:
			if v {
				tokens = append(tokens, "--"+name)
			}
		case nil:
			continue
		default:
			tokens = append(tokens, "--"+name, fmt.Sprintf("%v", v))
		}
	}

	return shellquote.Join(tokens...)
}
