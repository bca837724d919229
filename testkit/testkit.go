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

// Package testkit binds chtest fixtures to a testing.TB. Every helper fails
// the calling test immediately when the underlying fixture returns an error.
package testkit

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lucasepe/codename"
	"github.com/rspamd/chtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type TestKit struct {
	t testing.TB

	client *chtest.Client

	tables []*chtest.Table
}

// NewTestKit creates a test kit from the environment, see LoadConfig.
// It returns nil if no server is configured.
func NewTestKit(t testing.TB) *TestKit {
	config, err := LoadConfig()
	require.NoError(t, err)
	if config == nil {
		return nil
	}
	return New(t, config)
}

// New creates a test kit for the given configuration. Statements are logged
// to the test log.
func New(t testing.TB, config *chtest.Config, opts ...chtest.Option) *TestKit {
	opts = append([]chtest.Option{chtest.WithLogger(zaptest.NewLogger(t))}, opts...)
	c, err := chtest.NewClient(config, opts...)
	require.NoError(t, err)

	return &TestKit{
		t:      t,
		client: c,
	}
}

// Client returns the underlying client.
func (tk *TestKit) Client() *chtest.Client {
	return tk.client
}

// Close drops the tables created through NewTable, newest first.
func (tk *TestKit) Close() {
	ctx := context.Background()

	for i := len(tk.tables) - 1; i >= 0; i-- {
		require.NoError(tk.t, tk.tables[i].Drop(ctx))
	}
	tk.tables = nil
}

// WaitReady pings the server with exponential backoff until it answers or
// timeout elapses.
func (tk *TestKit) WaitReady(ctx context.Context, timeout time.Duration) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = timeout

	err := backoff.Retry(func() error {
		return tk.client.Ping(ctx)
	}, backoff.WithContext(b, ctx))
	require.NoError(tk.t, err, "clickhouse at %s is not ready", tk.client.Config().Endpoint())
}

// RandomName generates a random table name.
func (tk *TestKit) RandomName() string {
	rng, err := codename.DefaultRNG()
	require.NoError(tk.t, err)
	return strings.ReplaceAll(codename.Generate(rng, 10), "-", "_")
}

// NewTable creates a table with the given column definitions and tracks it for Close.
func (tk *TestKit) NewTable(ctx context.Context, tableName string, columns string) *chtest.Table {
	tbl := tk.client.Table(tableName)
	tk.Execute(ctx, fmt.Sprintf("CREATE TABLE %s (%s) ENGINE = MergeTree ORDER BY tuple()", tbl.Identifier(), columns))
	tk.tables = append(tk.tables, tbl)
	return tbl
}

// TrackTable schedules a table created by other means, e.g. a schema file, for dropping on Close.
func (tk *TestKit) TrackTable(tableName string) {
	tk.tables = append(tk.tables, tk.client.Table(tableName))
}

func (tk *TestKit) Execute(ctx context.Context, sql string) *chtest.Response {
	resp, err := tk.client.Execute(ctx, sql)
	require.NoError(tk.t, err)
	return resp
}

func (tk *TestKit) Query(ctx context.Context, sql string) []chtest.Row {
	rows, err := tk.client.Query(ctx, sql)
	require.NoError(tk.t, err)
	return rows
}

// LogQuery runs the query and writes the result as a table to the test log.
func (tk *TestKit) LogQuery(ctx context.Context, sql string) []chtest.Row {
	rows := tk.Query(ctx, sql)
	tk.t.Logf("%s\n%s", sql, chtest.FormatRows(rows))
	return rows
}

// UploadNewSchema executes every statement of the schema file.
func (tk *TestKit) UploadNewSchema(ctx context.Context, filename string) {
	require.NoError(tk.t, tk.client.UploadSchemaFile(ctx, filename))
}

// InsertData inserts the VALUES tuples of the data file into the table.
func (tk *TestKit) InsertData(ctx context.Context, tableName string, filename string) {
	require.NoError(tk.t, tk.client.InsertDataFile(ctx, tableName, filename))
}

func (tk *TestKit) ColumnShouldExist(ctx context.Context, tableName string, columnName string) {
	require.NoError(tk.t, tk.client.ColumnShouldExist(ctx, tableName, columnName))
}

func (tk *TestKit) SchemaVersionShouldBe(ctx context.Context, version int64) {
	require.NoError(tk.t, tk.client.SchemaVersionShouldBe(ctx, version))
}
