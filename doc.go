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

/*
Package chtest provides fixtures for functional tests that run against a
ClickHouse server through its HTTP interface.

# Client

Use NewClient once at suite setup and pass the client to every fixture:

	c, err := chtest.NewClient(&chtest.Config{
		Host: "localhost",
		Port: chtest.DefaultPort,
	})

# Schema and Data

Upload a ';'-separated schema script and insert literal VALUES tuples:

	if err := c.UploadSchemaFile(ctx, "testdata/schema.sql"); err != nil {
		return err
	}
	if err := c.InsertDataFile(ctx, "rspamd", "testdata/data.sql"); err != nil {
		return err
	}

# Query Data

Query decodes the JSONEachRow response into rows, one per output line:

	rows, err := c.Query(ctx, "SELECT Action, count() AS c FROM rspamd GROUP BY Action")
	if err != nil {
		return err
	}
	n, err := rows[0].Int64("c")

# Assertions

ColumnShouldExist and SchemaVersionShouldBe return *AssertionError when the
database state does not match:

	if err := c.ColumnShouldExist(ctx, "rspamd", "Helo"); err != nil {
		return err
	}

The testkit package wraps these helpers for use with testing.TB.
*/
package chtest
