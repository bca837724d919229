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
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
)

// Table is a handle to a ClickHouse table.
type Table struct {
	c *Client

	// Database is the name of the database.
	//
	// This is optional and may be empty, in which case the database of the
	// client configuration is used.
	Database string
	// Table is the name of the table.
	Table string
}

// Table creates a handle to the named table in the configured database.
func (c *Client) Table(tableName string) *Table {
	return &Table{
		c:     c,
		Table: tableName,
	}
}

func (t *Table) database() string {
	if t.Database != "" {
		return t.Database
	}
	return t.c.config.database()
}

// Identifier returns the back-quoted, fully qualified table name.
func (t *Table) Identifier() string {
	var b bytes.Buffer
	if t.Database != "" {
		b.WriteString(quoteIdent(t.Database, '`'))
		b.WriteByte('.')
	}
	b.WriteString(quoteIdent(t.Table, '`'))
	return b.String()
}

// Drop drops the table if it exists.
func (t *Table) Drop(ctx context.Context) error {
	_, err := t.c.Execute(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.Identifier()))
	return err
}

// InsertData inserts literal VALUES tuples, e.g. "(1, 'a'), (2, 'b')".
func (t *Table) InsertData(ctx context.Context, values string) error {
	return t.c.InsertData(ctx, t.Identifier(), values)
}

// InsertDataFile inserts the VALUES tuples stored in the named file.
func (t *Table) InsertDataFile(ctx context.Context, filename string) error {
	return t.c.InsertDataFile(ctx, t.Identifier(), filename)
}

// InsertArrow inserts record batches with the ArrowStream input format.
func (t *Table) InsertArrow(ctx context.Context, batches []arrow.Record) (*Response, error) {
	if len(batches) == 0 {
		return nil, fmt.Errorf("no batches to insert into %s", t.Identifier())
	}
	payload, err := encodeArrowStream(batches[0].Schema(), batches)
	if err != nil {
		return nil, err
	}
	return t.c.Statement(fmt.Sprintf(`INSERT INTO %s FORMAT ArrowStream`, t.Identifier())).ExecuteWithBody(ctx, payload)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(ctx context.Context, column string) (bool, error) {
	rows, err := t.c.Query(ctx, hasColumnQuery(t.database(), t.Table, column))
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, fmt.Errorf("hasColumnInTable returned no rows for %s", t.Identifier())
	}
	exists, err := rows[0].Int64("is_exist")
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// InsertData executes "insert into <tableName> format Values <values>".
//
// The table name is interpolated as given, so it may be qualified or quoted by the caller.
func (c *Client) InsertData(ctx context.Context, tableName string, values string) error {
	_, err := c.Execute(ctx, fmt.Sprintf("insert into %s format Values %s", tableName, values))
	return err
}

// InsertDataFile reads VALUES tuples from the named file and inserts them into the table.
func (c *Client) InsertDataFile(ctx context.Context, tableName string, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return c.InsertData(ctx, tableName, string(content))
}

func hasColumnQuery(database, table, column string) string {
	return fmt.Sprintf("select hasColumnInTable(%s, %s, %s) as is_exist",
		quoteIdent(database, '\''), quoteIdent(table, '\''), quoteIdent(column, '\''))
}

func quoteIdent(s string, r rune) string {
	var b bytes.Buffer
	b.WriteRune(r)
	for _, c := range s {
		switch c {
		case '\t':
			b.WriteString("\\t")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\\':
			b.WriteString("\\\\")
		default:
			if c == r {
				b.WriteRune('\\')
				b.WriteRune(c)
				break
			}

			if c < 0x20 {
				b.WriteString(fmt.Sprintf("\\x%02x", c))
				break
			}

			b.WriteRune(c)
		}
	}
	b.WriteRune(r)
	return b.String()
}
