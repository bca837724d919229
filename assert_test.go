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

package chtest_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/rspamd/chtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answerRows answers every statement with the given JSONEachRow body and
// records the last statement.
func answerRows(body string, last *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*last = string(data)
		_, _ = w.Write([]byte(body))
	}
}

func TestColumnShouldExist(t *testing.T) {
	var stmt string
	c := newFakeClient(t, nil, answerRows(`{"is_exist":1}`+"\n", &stmt))

	require.NoError(t, c.ColumnShouldExist(context.Background(), "rspamd", "Helo"))
	assert.Equal(t, "select hasColumnInTable('default', 'rspamd', 'Helo') as is_exist", stmt)
}

func TestColumnShouldExistFails(t *testing.T) {
	var stmt string
	c := newFakeClient(t, nil, answerRows(`{"is_exist":0}`+"\n", &stmt))

	err := c.ColumnShouldExist(context.Background(), "rspamd", "Missing")
	require.Error(t, err)

	var assertErr *chtest.AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Contains(t, assertErr.Message, "'Missing'")
	assert.Contains(t, assertErr.Message, "'default'.'rspamd'")
	assert.Equal(t, 0, assertErr.Actual)
}

func TestColumnShouldExistUsesConfiguredDatabase(t *testing.T) {
	var stmt string
	c := newFakeClient(t, &chtest.Config{Database: "stats"}, answerRows(`{"is_exist":1}`, &stmt))

	require.NoError(t, c.ColumnShouldExist(context.Background(), "rspamd", "Helo"))
	assert.Equal(t, "select hasColumnInTable('stats', 'rspamd', 'Helo') as is_exist", stmt)
}

func TestColumnShouldExistNoRows(t *testing.T) {
	var stmt string
	c := newFakeClient(t, nil, answerRows("", &stmt))

	err := c.ColumnShouldExist(context.Background(), "rspamd", "Helo")
	require.Error(t, err)
}

func TestColumnShouldExistRequestError(t *testing.T) {
	c := newFakeClient(t, nil, replyWith(http.StatusNotFound, "Code: 60. DB::Exception: Table doesn't exist"))

	err := c.ColumnShouldExist(context.Background(), "nope", "Helo")
	var reqErr *chtest.RequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestSchemaVersionShouldBe(t *testing.T) {
	for _, tc := range []struct {
		name     string
		live     string
		expected int64
		fails    bool
	}{
		{name: "live 2 expected 2", live: `{"version":2}`, expected: 2},
		{name: "quoted live 2", live: `{"version":"2"}`, expected: 2},
		{name: "live 2 expected 3", live: `{"version":2}`, expected: 3},
		{name: "live 3 expected 3", live: `{"version":3}`, expected: 3, fails: true},
		{name: "live 1 expected 1", live: `{"version":1}`, expected: 1, fails: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var stmt string
			c := newFakeClient(t, nil, answerRows(tc.live, &stmt))

			err := c.SchemaVersionShouldBe(context.Background(), tc.expected)
			assert.Equal(t, "select max(Version) as version from rspamd_version", stmt)
			if !tc.fails {
				require.NoError(t, err)
				return
			}

			var assertErr *chtest.AssertionError
			require.ErrorAs(t, err, &assertErr)
			assert.Contains(t, assertErr.Message, "schema version")
		})
	}
}

func TestSchemaVersionShouldEqual(t *testing.T) {
	var stmt string
	c := newFakeClient(t, nil, answerRows(`{"version":3}`, &stmt))

	require.NoError(t, c.SchemaVersionShouldEqual(context.Background(), 3))

	err := c.SchemaVersionShouldEqual(context.Background(), 2)
	var assertErr *chtest.AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Equal(t, int64(2), assertErr.Expected)
	assert.Equal(t, int64(3), assertErr.Actual)
}

func TestSchemaVersionNull(t *testing.T) {
	var stmt string
	c := newFakeClient(t, nil, answerRows(`{"version":null}`, &stmt))

	err := c.SchemaVersionShouldBe(context.Background(), 2)
	require.Error(t, err)
	var assertErr *chtest.AssertionError
	assert.False(t, errors.As(err, &assertErr))
}
