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
	"strings"

	"github.com/tombee/oatty/internal/secrets"
)

// SummarizeExecutionOutcome reduces a raw status+body log to one line:
// "<canonical_id> • success|failed[: <truncated redacted message>]". A raw
// log beginning with "Error:" (after trimming) is treated as carrying a
// user-facing failure message that gets redacted and truncated; anything
// else falls back to a bare success/failed verdict from the status code.
func SummarizeExecutionOutcome(canonicalID, rawLog string, statusCode int) string {
	trimmed := strings.TrimSpace(rawLog)
	if msg, ok := strings.CutPrefix(trimmed, "Error:"); ok {
		redacted := secrets.RedactSensitive(strings.TrimSpace(msg))
		truncated := truncateForSummary(redacted, 160)
		return fmt.Sprintf("%s • failed: %s", canonicalID, truncated)
	}

	verdict := "failed"
	if statusCode >= 200 && statusCode < 300 {
		verdict = "success"
	}
	return fmt.Sprintf("%s • %s", canonicalID, verdict)
}

// truncateForSummary trims text and, if it exceeds maxLen runes, cuts it
// down to maxLen-3 runes (reserving room for the trailing ellipsis) and
// appends "...".
func truncateForSummary(text string, maxLen int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}

	target := maxLen - 3
	if target < 0 {
		target = 0
	}
	cut := strings.TrimRight(string(runes[:target]), " \t\n")
	return cut + "..."
}
