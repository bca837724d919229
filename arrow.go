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
	"errors"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/ipc"
)

// QueryArrow executes the SQL text with the ArrowStream output format and
// returns the result as Arrow record batches. Callers must Release the records.
func (c *Client) QueryArrow(ctx context.Context, sql string) ([]arrow.Record, error) {
	s := c.Statement(sql)
	s.Format = ResultFormatArrowStream
	resp, err := s.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return decodeArrowStream(resp.Body)
}

// encodeArrowStream encodes the given record batches as an Arrow IPC stream.
func encodeArrowStream(schema *arrow.Schema, batches []arrow.Record) (payload []byte, err error) {
	if len(batches) == 0 {
		return nil, errors.New("cannot encode empty batches")
	}

	var buf bytes.Buffer
	defer func() {
		if err == nil {
			payload = buf.Bytes()
		}
	}()

	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	defer func() {
		err = errors.Join(err, writer.Close())
	}()

	for _, batch := range batches {
		if !batch.Schema().Equal(schema) {
			return nil, errors.New("schema mismatch")
		}
		if err := writer.Write(batch); err != nil {
			return nil, err
		}
	}
	return
}

// decodeArrowStream decodes the given Arrow IPC stream into record batches.
func decodeArrowStream(data []byte) ([]arrow.Record, error) {
	batches := make([]arrow.Record, 0)
	if len(data) == 0 {
		return batches, nil
	}

	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Release()

	for reader.Next() {
		batch := reader.Record()
		batch.Retain()
		batches = append(batches, batch)
	}
	if err := reader.Err(); err != nil {
		for _, batch := range batches {
			batch.Release()
		}
		return nil, err
	}
	return batches, nil
}
