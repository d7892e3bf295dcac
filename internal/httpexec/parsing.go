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

package httpexec

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tombee/oatty/internal/format"
	"github.com/tombee/oatty/internal/registry"
	"github.com/tombee/oatty/internal/util"
	oatterrors "github.com/tombee/oatty/pkg/errors"
)

// ParseArguments splits tokens into the flags the user supplied (nil value
// means a boolean flag was present) and the remaining positional
// arguments, in order. Every declared flag is registered on a throwaway
// pflag.FlagSet so parsing honors "--flag value", "--flag=value", and
// short forms the same way the cobra-based CLI does; flags not declared on
// spec are tolerated and dropped, and do not reach the positional list.
func ParseArguments(spec *registry.CommandSpec, tokens []string) (map[string]*string, []string, error) {
	fs := pflag.NewFlagSet(spec.CanonicalID(), pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}

	usedShort := make(map[string]bool, len(spec.Flags))
	for i := range spec.Flags {
		f := &spec.Flags[i]
		shorthand := ""
		if f.ShortName != "" && !usedShort[f.ShortName] {
			shorthand = f.ShortName
			usedShort[f.ShortName] = true
		}
		if f.Type == registry.FlagBoolean {
			fs.BoolP(f.Name, shorthand, false, f.Description)
		} else {
			// Numbers are parsed as strings here and coerced in
			// BuildRequestBody so an invalid number drops the flag
			// instead of aborting the whole parse.
			fs.StringP(f.Name, shorthand, "", f.Description)
		}
	}

	if err := fs.Parse(tokens); err != nil {
		return nil, nil, &oatterrors.ValidationError{Field: "arguments", Message: err.Error()}
	}

	userFlags := make(map[string]*string)
	for i := range spec.Flags {
		f := &spec.Flags[i]
		if !fs.Changed(f.Name) {
			continue
		}
		if f.Type == registry.FlagBoolean {
			userFlags[f.Name] = nil
			continue
		}
		value, _ := fs.GetString(f.Name)
		if f.Type == registry.FlagEnum && !util.Contains(f.EnumValues, value) {
			return nil, nil, &oatterrors.ValidationError{
				Field:   f.Name,
				Message: fmt.Sprintf("invalid value %q for --%s, must be one of %v", value, f.Name, f.EnumValues),
			}
		}
		userFlags[f.Name] = &value
	}

	return userFlags, fs.Args(), nil
}

// BuildRequestBody converts parsed user flags into a JSON-ready body:
// boolean flags present become true, numbers are parsed (dropped silently
// on failure), strings/enums pass through, and flags absent from spec are
// ignored.
func BuildRequestBody(spec *registry.CommandSpec, userFlags map[string]*string) map[string]any {
	body := make(map[string]any, len(userFlags))
	for name, value := range userFlags {
		flagSpec := findFlag(spec, name)
		if flagSpec == nil {
			continue
		}
		if flagSpec.Type == registry.FlagBoolean {
			body[name] = true
			continue
		}
		if value == nil {
			continue
		}
		switch flagSpec.Type {
		case registry.FlagNumber:
			if format.ValidateNumber(*value) == nil {
				if n, err := strconv.ParseFloat(*value, 64); err == nil {
					body[name] = n
				}
			}
		default:
			body[name] = *value
		}
	}
	return body
}

func findFlag(spec *registry.CommandSpec, name string) *registry.Flag {
	for i := range spec.Flags {
		if spec.Flags[i].Name == name {
			return &spec.Flags[i]
		}
	}
	return nil
}

// SubstitutePath replaces each "{name}" placeholder in path with the
// user-supplied argument at the same declaration position as positionals,
// URL-path-escaped.
func SubstitutePath(path string, positionals []registry.PositionalArg, userArgs []string) (string, error) {
	result := path
	for i, p := range positionals {
		if i >= len(userArgs) {
			return "", &oatterrors.ValidationError{
				Field:   p.Name,
				Message: fmt.Sprintf("missing required argument %q", p.Name),
			}
		}
		placeholder := "{" + p.Name + "}"
		result = strings.Replace(result, placeholder, url.PathEscape(userArgs[i]), 1)
	}
	return result, nil
}
