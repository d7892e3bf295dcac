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
	"regexp"
	"strings"
	"time"

	oatterrors "github.com/tombee/oatty/pkg/errors"
)

// durationGrammar restricts the manifest's duration strings to the
// documented grammar: one or more <int><unit> tokens with units
// s|m|h, e.g. "1s", "5m", "1m30s". This is a strict subset of Go's own
// time.ParseDuration syntax, so once a string matches the grammar,
// time.ParseDuration does the actual arithmetic.
var durationGrammar = regexp.MustCompile(`^(?:[0-9]+[smh])+$`)

// ParseDuration parses a manifest duration string ("every", "timeout")
// under the grammar above.
func ParseDuration(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if !durationGrammar.MatchString(trimmed) {
		return 0, &oatterrors.ValidationError{
			Field:      "duration",
			Message:    fmt.Sprintf("invalid duration %q: expected <int><unit> tokens with units s, m, or h", s),
			Suggestion: "e.g. \"1s\", \"5m\", or the compound form \"1m30s\"",
		}
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, &oatterrors.ValidationError{Field: "duration", Message: err.Error()}
	}
	return d, nil
}
