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
	"strconv"
	"strings"
)

// Pagination carries the parsed Content-Range of a response, plus (for a
// 206 Partial Content response) everything needed to fetch the next page.
type Pagination struct {
	Field string
	Start string
	End   string
	Order string
	Max   *int

	ThisRange             string
	NextRange             string
	HydratedShellCommand  string
}

// rangeBodyFields are the synthetic flags schemagen attaches to any
// command whose schema link declared ranges; they drive Range header
// construction and must never reach the JSON request body.
var rangeBodyFields = []string{"next-range", "range-field", "range-start", "range-end", "max", "order"}

// rangeHeaderValue resolves the outgoing Range header: a raw "next-range"
// passthrough always wins over composing one from the range-* components.
func rangeHeaderValue(body map[string]any) (string, bool) {
	if raw, ok := body["next-range"].(string); ok && raw != "" {
		return raw, true
	}
	return composeRangeHeader(body)
}

// composeRangeHeader builds "<field> <start>..<end>; order=<order>[,
// max=<N>];" from the range-field/range-start/range-end/order/max body
// fields. Field and start must be present; an empty end yields an
// open-ended "<start>.." range.
func composeRangeHeader(body map[string]any) (string, bool) {
	field, _ := body["range-field"].(string)
	start, _ := body["range-start"].(string)
	end, _ := body["range-end"].(string)
	if field == "" || start == "" {
		return "", false
	}
	order, _ := body["order"].(string)

	header := fmt.Sprintf("%s %s..%s; order=%s", field, start, end, order)
	if maxVal, ok := numericBodyValue(body["max"]); ok {
		header += fmt.Sprintf(", max=%d", maxVal)
	}
	return header + ";", true
}

func numericBodyValue(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n, true
		}
	}
	return 0, false
}

// stripRangeBodyFields returns a copy of body with the synthetic range
// fields removed, leaving only the real request payload.
func stripRangeBodyFields(body map[string]any) map[string]any {
	skip := make(map[string]bool, len(rangeBodyFields))
	for _, f := range rangeBodyFields {
		skip[f] = true
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		if skip[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// ParseContentRange parses a "<field> <start>..<end>; order=<asc|desc>[,
// max=<N>];" header value.
func ParseContentRange(header string) (*Pagination, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, false
	}

	parts := strings.SplitN(header, ";", 2)
	fieldAndRange := strings.SplitN(strings.TrimSpace(parts[0]), " ", 2)
	if len(fieldAndRange) != 2 {
		return nil, false
	}
	startEnd := strings.SplitN(fieldAndRange[1], "..", 2)
	if len(startEnd) != 2 {
		return nil, false
	}

	p := &Pagination{
		Field: fieldAndRange[0],
		Start: startEnd[0],
		End:   startEnd[1],
	}

	if len(parts) == 2 {
		for _, attr := range strings.Split(parts[1], ",") {
			attr = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(attr), ";"))
			if attr == "" {
				continue
			}
			key, val, ok := strings.Cut(attr, "=")
			if !ok {
				continue
			}
			key, val = strings.TrimSpace(key), strings.TrimSpace(val)
			switch key {
			case "order":
				p.Order = val
			case "max":
				if n, err := strconv.Atoi(val); err == nil {
					p.Max = &n
				}
			}
		}
	}

	return p, true
}
