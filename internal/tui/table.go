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
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Kind tags how a JSON result was rendered: as a table, or as plain
// key/value rows.
type Kind string

const (
	KindTable    Kind = "table"
	KindKeyValue Kind = "key_value"
	KindEmpty    Kind = "empty"
)

// KeyValueRow is one row of a key/value rendering.
type KeyValueRow struct {
	Key   string
	Value string
}

// Inferred is the outcome of inferring a presentation for a result
// value: either a ready-to-render table.Model, or key/value rows.
type Inferred struct {
	Kind     Kind
	Table    table.Model
	KeyValue []KeyValueRow
}

// Infer classifies value and builds its presentation: a table when
// value is an array of objects, or an object with at least one
// array-valued field (that field's elements become the rows); else
// key/value rows for a scalar or flat object; KindEmpty for nil or an
// empty array.
func Infer(value any) Inferred {
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return Inferred{Kind: KindEmpty}
		}
		if rows, columns, ok := rowsFromObjectArray(v); ok {
			return Inferred{Kind: KindTable, Table: buildTable(columns, rows)}
		}
		return Inferred{Kind: KindKeyValue, KeyValue: indexedKeyValue(v)}
	case map[string]any:
		if field, arr, ok := firstArrayField(v); ok {
			if rows, columns, ok2 := rowsFromObjectArray(arr); ok2 {
				return Inferred{Kind: KindTable, Table: buildTable(columns, rows)}
			}
			return Inferred{Kind: KindKeyValue, KeyValue: []KeyValueRow{{Key: field, Value: fmt.Sprintf("%v", arr)}}}
		}
		return Inferred{Kind: KindKeyValue, KeyValue: flatKeyValue(v)}
	case nil:
		return Inferred{Kind: KindEmpty}
	default:
		return Inferred{Kind: KindKeyValue, KeyValue: []KeyValueRow{{Key: "value", Value: fmt.Sprintf("%v", v)}}}
	}
}

// firstArrayField returns the first array-valued field found in obj,
// in a deterministic (sorted-key) order, so the same object always
// infers the same table.
func firstArrayField(obj map[string]any) (string, []any, bool) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if arr, ok := obj[k].([]any); ok {
			return k, arr, true
		}
	}
	return "", nil, false
}

// rowsFromObjectArray reports whether every element of arr is an
// object, and if so returns the union of their keys (sorted, for
// column order) as columns and each element's values as a row, with
// missing fields rendered empty.
func rowsFromObjectArray(arr []any) ([]map[string]string, []string, bool) {
	columnSet := map[string]bool{}
	objects := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, nil, false
		}
		objects = append(objects, obj)
		for k := range obj {
			columnSet[k] = true
		}
	}
	columns := make([]string, 0, len(columnSet))
	for k := range columnSet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([]map[string]string, 0, len(objects))
	for _, obj := range objects {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			row[col] = cellText(obj[col])
		}
		rows = append(rows, row)
	}
	return rows, columns, true
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

func indexedKeyValue(arr []any) []KeyValueRow {
	rows := make([]KeyValueRow, 0, len(arr))
	for i, v := range arr {
		rows = append(rows, KeyValueRow{Key: fmt.Sprintf("[%d]", i), Value: cellText(v)})
	}
	return rows
}

func flatKeyValue(obj map[string]any) []KeyValueRow {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]KeyValueRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, KeyValueRow{Key: k, Value: cellText(obj[k])})
	}
	return rows
}

func buildTable(columns []string, rows []map[string]string) table.Model {
	cols := make([]table.Column, 0, len(columns))
	for _, c := range columns {
		width := len(c) + 2
		for _, row := range rows {
			if l := len(row[c]); l+2 > width {
				width = l + 2
			}
			if width > 40 {
				width = 40
				break
			}
		}
		cols = append(cols, table.Column{Title: c, Width: width})
	}

	trows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		r := make(table.Row, 0, len(columns))
		for _, c := range columns {
			r = append(r, row[c])
		}
		trows = append(trows, r)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(trows),
		table.WithFocused(true),
		table.WithHeight(min(len(trows)+1, 15)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Bold(true)
	t.SetStyles(styles)
	return t
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
