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

package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tombee/oatty/internal/history"
	"github.com/tombee/oatty/internal/registry"
)

// Phase is the palette input's current lexical position: which kind of
// token the caret sits in or just past.
type Phase string

const (
	PhaseCommand  Phase = "command"
	PhaseFlagName Phase = "flag_name"
	PhaseValue    Phase = "value"
)

// token is one whitespace-delimited span of the palette's input line,
// with its offsets so phase inference can find which token the caret
// belongs to without re-lexing the whole line on every keystroke.
type token struct {
	Text  string
	Start int
	End   int // exclusive
}

// lex splits line into whitespace-delimited tokens, honoring a single
// level of '"'/'\'' quoting so a quoted value containing spaces reads
// as one token. It does not unescape — callers needing the unescaped
// value use shlex on the finished line instead; this lexer exists only
// to map caret position to a token span.
func lex(line string) []token {
	var tokens []token
	i := 0
	n := len(line)
	for i < n {
		for i < n && line[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		start := i
		if line[i] == '"' || line[i] == '\'' {
			quote := line[i]
			i++
			for i < n && line[i] != quote {
				i++
			}
			if i < n {
				i++
			}
		} else {
			for i < n && line[i] != ' ' {
				i++
			}
		}
		tokens = append(tokens, token{Text: line[start:i], Start: start, End: i})
	}
	return tokens
}

// tokenAtCaret returns the index into tokens whose span contains caret,
// or the index just past the last token ending at or before caret (for
// an in-progress token being typed at the end of the line).
func tokenAtCaret(tokens []token, caret int) int {
	for i, t := range tokens {
		if caret >= t.Start && caret <= t.End {
			return i
		}
	}
	return len(tokens)
}

// Suggestion is one candidate offered to the user: selecting it splices
// InsertText at the current token's boundary.
type Suggestion struct {
	Label      string
	Detail     string
	InsertText string
}

// InferPhase classifies the palette's current line/caret position:
// the first non-flag token is the command (two tokens, group and
// name); a token starting with "--" (or mid-typing of one) is a flag
// name; anything else is a value bound to the preceding flag.
func InferPhase(line string, caret int) (phase Phase, commandTokens []string, flagName string) {
	tokens := lex(line)
	idx := tokenAtCaret(tokens, caret)

	// Commands occupy the first two non-flag tokens (group, name).
	nonFlagCount := 0
	for i := 0; i < idx && i < len(tokens); i++ {
		if !strings.HasPrefix(tokens[i].Text, "--") {
			nonFlagCount++
		} else {
			nonFlagCount = 2 // once a flag appears, command resolution is done
		}
	}

	if nonFlagCount < 2 {
		if idx < len(tokens) && strings.HasPrefix(tokens[idx].Text, "--") {
			return PhaseFlagName, commandPrefix(tokens, idx), ""
		}
		// Include the in-progress token itself: "apps cre|" is still
		// part of the command query being typed.
		return PhaseCommand, commandPrefix(tokens, idx+1), ""
	}

	if idx < len(tokens) && strings.HasPrefix(tokens[idx].Text, "--") {
		return PhaseFlagName, commandPrefix(tokens, idx), ""
	}

	// Value phase: find the nearest preceding "--flag" token.
	for i := idx - 1; i >= 0; i-- {
		if strings.HasPrefix(tokens[i].Text, "--") {
			return PhaseValue, commandPrefix(tokens, idx), strings.TrimPrefix(tokens[i].Text, "--")
		}
	}
	return PhaseFlagName, commandPrefix(tokens, idx), ""
}

func commandPrefix(tokens []token, upto int) []string {
	var out []string
	for i := 0; i < upto && i < len(tokens) && len(out) < 2; i++ {
		if strings.HasPrefix(tokens[i].Text, "--") {
			break
		}
		out = append(out, tokens[i].Text)
	}
	return out
}

// SuggestCommands fuzzy-matches query against every registered
// command's canonical id and summary.
func SuggestCommands(reg *registry.Registry, query string) []Suggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Suggestion
	for _, spec := range reg.Iter() {
		id := spec.CanonicalID()
		if query != "" && !fuzzyMatch(strings.ToLower(id), query) &&
			!fuzzyMatch(strings.ToLower(spec.Summary), query) {
			continue
		}
		out = append(out, Suggestion{
			Label:      id,
			Detail:     spec.Summary,
			InsertText: spec.Group + " " + spec.Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// SuggestFlags lists spec's flags not already present (by name) on
// line, filtered by whatever the user has typed of the flag name so
// far.
func SuggestFlags(spec *registry.CommandSpec, line, typed string) []Suggestion {
	typed = strings.TrimPrefix(strings.ToLower(typed), "--")
	var out []Suggestion
	for _, f := range spec.Flags {
		if typed != "" && !strings.HasPrefix(strings.ToLower(f.Name), typed) {
			continue
		}
		if strings.Contains(line, "--"+f.Name+" ") || strings.HasSuffix(strings.TrimSpace(line), "--"+f.Name) {
			continue
		}
		out = append(out, Suggestion{
			Label:      "--" + f.Name,
			Detail:     f.Description,
			InsertText: "--" + f.Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// SuggestValues builds value suggestions for flagName on spec: enum
// values first, then the flag's provider-sourced values (already
// fetched and passed in via providerValues), then history-backed
// recent values for this workflow input / palette command scope.
func SuggestValues(
	spec *registry.CommandSpec,
	flagName string,
	providerValues []any,
	hist history.Store,
	scope history.Scope,
) []Suggestion {
	var out []Suggestion
	for _, f := range spec.Flags {
		if f.Name != flagName {
			continue
		}
		for _, v := range f.EnumValues {
			out = append(out, Suggestion{Label: v, InsertText: v})
		}
	}
	for _, v := range providerValues {
		text := stringifyValue(v)
		out = append(out, Suggestion{Label: text, Detail: "from provider", InsertText: text})
	}
	if hist != nil {
		if stored, ok, err := hist.GetLatestValue(history.Key{UserID: "default_profile", Scope: scope}); err == nil && ok {
			text := stringifyValue(stored.Value)
			out = append(out, Suggestion{Label: text, Detail: "recent", InsertText: text})
		}
	}
	return out
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// fuzzyMatch reports whether every rune of needle appears in haystack
// in order (a subsequence match), the same loose fuzzy semantics the
// palette's suggestion filter uses everywhere.
func fuzzyMatch(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	hi := 0
	hr := []rune(haystack)
	for _, r := range needle {
		found := false
		for hi < len(hr) {
			if hr[hi] == r {
				found = true
				hi++
				break
			}
			hi++
		}
		if !found {
			return false
		}
	}
	return true
}

// Splice inserts text into line at the token spanning caret, replacing
// that token entirely, and returns the new line plus the caret
// position just past the inserted text.
func Splice(line string, caret int, text string) (string, int) {
	tokens := lex(line)
	idx := tokenAtCaret(tokens, caret)
	if idx >= len(tokens) {
		prefix := line
		if len(prefix) > 0 && !strings.HasSuffix(prefix, " ") {
			prefix += " "
		}
		newLine := prefix + text
		return newLine, len(newLine)
	}
	t := tokens[idx]
	newLine := line[:t.Start] + text + line[t.End:]
	return newLine, t.Start + len(text)
}
