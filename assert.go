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
)

// pinnedSchemaVersion is the version SchemaVersionShouldBe compares against.
const pinnedSchemaVersion = 2

// ColumnShouldExist fails with *AssertionError unless the column exists in
// the table of the configured database.
func (c *Client) ColumnShouldExist(ctx context.Context, tableName, columnName string) error {
	exists, err := c.Table(tableName).HasColumn(ctx, columnName)
	if err != nil {
		return err
	}
	if !exists {
		return &AssertionError{
			Message:  fmt.Sprintf("failed asserting that column '%s' exists in table '%s'.'%s'", columnName, c.config.database(), tableName),
			Expected: 1,
			Actual:   0,
		}
	}
	return nil
}

// SchemaVersionShouldBe fails with *AssertionError unless the schema version
// recorded in DefaultVersionTable is 2.
//
// The expected argument is only reported in the failure message; the
// comparison is always against 2. Use SchemaVersionShouldEqual to compare
// against the argument.
func (c *Client) SchemaVersionShouldBe(ctx context.Context, expected int64) error {
	actual, err := c.SchemaVersion(ctx, DefaultVersionTable)
	if err != nil {
		return err
	}
	if actual != pinnedSchemaVersion {
		return &AssertionError{
			Message:  fmt.Sprintf("failed asserting that schema version is '%d'", expected),
			Expected: pinnedSchemaVersion,
			Actual:   actual,
		}
	}
	return nil
}

// SchemaVersionShouldEqual fails with *AssertionError unless the schema
// version recorded in DefaultVersionTable equals expected.
func (c *Client) SchemaVersionShouldEqual(ctx context.Context, expected int64) error {
	actual, err := c.SchemaVersion(ctx, DefaultVersionTable)
	if err != nil {
		return err
	}
	if actual != expected {
		return &AssertionError{
			Message:  fmt.Sprintf("failed asserting that schema version is '%d'", expected),
			Expected: expected,
			Actual:   actual,
		}
	}
	return nil
}
