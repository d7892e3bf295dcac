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

package secrets

import "regexp"

// sensitivePatterns match secret-looking substrings in free text that was
// never registered with a Masker: key=value pairs whose key names a
// credential, bearer tokens, and long opaque alphanumeric strings that
// look like API keys.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret|password|passwd|authorization)\b\s*[:=]\s*[^\s&,;]+`),
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`),
	regexp.MustCompile(`\b[A-Za-z0-9_-]{32,}\b`),
}

// RedactSensitive scans s for secret-shaped substrings and replaces them
// with "***", without requiring the values to have been registered in
// advance. It complements Masker, which only masks known values.
func RedactSensitive(s string) string {
	result := s
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, "***")
	}
	return result
}

// LooksLikeSecret reports whether s contains a secret-shaped substring,
// by the same patterns RedactSensitive masks. Unlike RedactSensitive it
// answers a yes/no question, for callers that must reject a value
// outright rather than launder it.
func LooksLikeSecret(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}
