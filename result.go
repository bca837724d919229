/*
 * Copyright 2024 ScopeDB, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chtest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Response is the raw outcome of a successfully executed statement.
type Response struct {
	// StatusCode is the HTTP status code, always 200 for a returned Response.
	StatusCode int
	// QueryID is the query_id the statement ran under.
	QueryID string
	// Summary is the progress summary ClickHouse reports in the
	// X-ClickHouse-Summary header. It is nil if the header is absent.
	Summary *Summary
	// Body is the decoded response body.
	Body []byte
}

// Summary is the statement summary reported by ClickHouse.
type Summary struct {
	ReadRows     uint64 `json:"read_rows,string"`
	ReadBytes    uint64 `json:"read_bytes,string"`
	WrittenRows  uint64 `json:"written_rows,string"`
	WrittenBytes uint64 `json:"written_bytes,string"`
	ResultRows   uint64 `json:"result_rows,string"`
}

func parseSummary(header string) *Summary {
	if header == "" {
		return nil
	}
	var s Summary
	if err := json.Unmarshal([]byte(header), &s); err != nil {
		return nil
	}
	return &s
}

// Value stores the contents of a single cell: a string, a json.Number,
// a bool, nil, or a nested JSON value for composite columns.
type Value any

// Row is one decoded JSONEachRow line, keyed by column name.
type Row map[string]Value

// Has reports whether the row carries the column.
func (r Row) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// Int64 returns the column as an integer.
//
// ClickHouse quotes 64-bit integers in JSON output by default, so quoted
// decimal strings are accepted as well as JSON numbers.
func (r Row) Int64(col string) (int64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("column %q not in row", col)
	}
	switch v := v.(type) {
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, fmt.Errorf("column %q is null", col)
	default:
		return 0, fmt.Errorf("column %q: expected integer, got %T", col, v)
	}
}

// Text returns the column as a string.
func (r Row) Text(col string) (string, error) {
	v, ok := r[col]
	if !ok {
		return "", fmt.Errorf("column %q not in row", col)
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "", fmt.Errorf("column %q is null", col)
	default:
		return fmt.Sprint(v), nil
	}
}

// decodeRows splits the body on newlines and decodes every non-empty line as
// a JSON object.
func decodeRows(body []byte) ([]Row, error) {
	rows := make([]Row, 0)
	for i, line := range bytes.Split(body, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		row, err := decodeRow(line)
		if err != nil {
			return nil, &DecodeError{Line: i + 1, Text: string(line), Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(line []byte) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var row Row
	if err := dec.Decode(&row); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.New("expected JSON object, got null")
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}
	return row, nil
}

// FormatRows renders rows as a text table with columns sorted by name.
func FormatRows(rows []Row) string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range rows {
		for col := range r {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)

	t := table.NewWriter()
	header := make(table.Row, 0, len(cols))
	for _, col := range cols {
		header = append(header, col)
	}
	t.AppendHeader(header)
	for _, r := range rows {
		line := make(table.Row, 0, len(cols))
		for _, col := range cols {
			v, ok := r[col]
			switch {
			case !ok:
				line = append(line, "")
			case v == nil:
				line = append(line, "NULL")
			default:
				line = append(line, v)
			}
		}
		t.AppendRow(line)
	}
	return t.Render()
}
