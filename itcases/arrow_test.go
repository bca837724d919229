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

package itcases

import (
	"context"
	"fmt"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

func makeSenderRecords(n int) (*arrow.Schema, []arrow.Record) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "sender", Type: arrow.BinaryTypes.String},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	f := gofakeit.New(0)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	for i := 0; i < n; i++ {
		b.Field(0).(*array.Int64Builder).Append(int64(i))
		b.Field(1).(*array.StringBuilder).Append(f.Email())
		b.Field(2).(*array.Float64Builder).Append(f.Float64Range(-10, 30))
	}
	return schema, []arrow.Record{b.NewRecord()}
}

func TestArrowRoundTrip(t *testing.T) {
	tk := NewKit(t)
	defer tk.Close()

	ctx := context.Background()
	tbl := tk.NewTable(ctx, tk.RandomName(), "id Int64, sender String, score Float64")

	schema, records := makeSenderRecords(64)
	defer records[0].Release()

	resp, err := tbl.InsertArrow(ctx, records)
	require.NoError(t, err)
	if resp.Summary != nil {
		require.Equal(t, uint64(64), resp.Summary.WrittenRows)
	}

	got, err := tk.Client().QueryArrow(ctx, fmt.Sprintf("SELECT id, sender, score FROM %s ORDER BY id", tbl.Identifier()))
	require.NoError(t, err)
	var n int64
	for _, rec := range got {
		require.Equal(t, schema.NumFields(), int(rec.NumCols()))
		n += rec.NumRows()
		rec.Release()
	}
	require.Equal(t, int64(64), n)
}

// TestNativeProtocolSeesInserts checks rows inserted through the HTTP
// fixtures with an independent native protocol connection.
func TestNativeProtocolSeesInserts(t *testing.T) {
	tk, dsn := NewContainerKit(t)
	defer tk.Close()

	ctx := context.Background()
	tbl := tk.NewTable(ctx, tk.RandomName(), "id UInt32, helo String")
	require.NoError(t, tbl.InsertData(ctx, "(1, 'mx1.example.com'), (2, 'mx2.example.com')"))

	opts, err := clickhouse.ParseDSN(dsn)
	require.NoError(t, err)
	db := clickhouse.OpenDB(opts)
	defer db.Close()
	require.NoError(t, db.PingContext(ctx))

	var count uint64
	require.NoError(t, db.QueryRowContext(ctx, fmt.Sprintf("SELECT count() FROM %s", tbl.Identifier())).Scan(&count))
	require.Equal(t, uint64(2), count)

	var helo string
	require.NoError(t, db.QueryRowContext(ctx, fmt.Sprintf("SELECT helo FROM %s WHERE id = 2", tbl.Identifier())).Scan(&helo))
	require.Equal(t, "mx2.example.com", helo)
}
