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
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultVersionTable is the table the schema version is recorded in.
const DefaultVersionTable = "rspamd_version"

// SplitStatements splits a schema script on ';' and returns the trimmed,
// non-empty statements in order.
//
// The split is textual: a ';' inside a string literal also ends a statement.
func SplitStatements(schema string) []string {
	var stmts []string
	for _, q := range strings.Split(schema, ";") {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		stmts = append(stmts, q)
	}
	return stmts
}

// UploadSchema executes every statement of the schema script in sequence and
// stops at the first failure. Statements applied before the failure are not
// rolled back.
func (c *Client) UploadSchema(ctx context.Context, schema string) error {
	for i, stmt := range SplitStatements(schema) {
		if _, err := c.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

// UploadSchemaFile reads a schema script from the named file and uploads it.
func (c *Client) UploadSchemaFile(ctx context.Context, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return c.UploadSchema(ctx, string(content))
}

// SchemaVersion returns the highest Version recorded in the version table.
// An empty table name means DefaultVersionTable.
func (c *Client) SchemaVersion(ctx context.Context, versionTable string) (int64, error) {
	if versionTable == "" {
		versionTable = DefaultVersionTable
	}
	rows, err := c.Query(ctx, fmt.Sprintf("select max(Version) as version from %s", versionTable))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("no version row in %s", versionTable)
	}
	return rows[0].Int64("version")
}
