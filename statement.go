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
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultFormat is the ClickHouse output format requested for a statement.
type ResultFormat string

const (
	// ResultFormatJSONEachRow renders every result row as one JSON object per line.
	ResultFormatJSONEachRow ResultFormat = "JSONEachRow"
	// ResultFormatArrowStream renders the result as an Arrow IPC stream.
	ResultFormatArrowStream ResultFormat = "ArrowStream"
)

// Statement is a struct that represents a statement to be executed on ClickHouse.
type Statement struct {
	c *Client

	stmt string

	// QueryID of the statement.
	//
	// If provided, ClickHouse records the statement under this ID in
	// system.query_log; otherwise a random UUID is generated per execution.
	QueryID *uuid.UUID
	// Format is the default output format of the statement.
	Format ResultFormat
	// Settings are ClickHouse settings for this statement only. They take
	// precedence over Config.Settings.
	Settings map[string]string
}

// Statement creates a new statement with the given SQL text.
func (c *Client) Statement(stmt string) *Statement {
	return &Statement{
		c:      c,
		stmt:   stmt,
		Format: ResultFormatJSONEachRow,
	}
}

// Execute posts the statement as the request body and returns the full response.
func (s *Statement) Execute(ctx context.Context) (*Response, error) {
	return s.do(ctx, nil, false)
}

// ExecuteWithBody sends the statement as the query URL parameter and body as
// the request payload. This is how data in binary formats is inserted.
func (s *Statement) ExecuteWithBody(ctx context.Context, body []byte) (*Response, error) {
	return s.do(ctx, body, true)
}

// Query executes the statement and decodes the JSONEachRow response into rows.
func (s *Statement) Query(ctx context.Context) ([]Row, error) {
	resp, err := s.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return decodeRows(resp.Body)
}

func (s *Statement) queryID() string {
	if s.QueryID != nil {
		return s.QueryID.String()
	}
	return uuid.NewString()
}

func (s *Statement) requestURL(queryID string, inline bool) (*url.URL, error) {
	u, err := url.Parse(s.c.config.Endpoint() + "/")
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("default_format", string(s.Format))
	q.Set("database", s.c.config.database())
	q.Set("query_id", queryID)
	for k, v := range s.c.config.Settings {
		q.Set(k, v)
	}
	for k, v := range s.Settings {
		q.Set(k, v)
	}
	if s.c.config.Compression != CompressionNone {
		q.Set("enable_http_compression", "1")
	}
	if inline {
		q.Set("query", s.stmt)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

func (s *Statement) do(ctx context.Context, payload []byte, inline bool) (*Response, error) {
	queryID := s.queryID()
	req, err := s.requestURL(queryID, inline)
	if err != nil {
		return nil, err
	}

	header := s.c.authHeader()
	setAcceptEncoding(header, s.c.config.Compression)

	body := payload
	if !inline {
		body = []byte(s.stmt)
	}

	logger := s.c.logger.With(zap.String("query_id", queryID))
	start := time.Now()
	resp, err := s.c.http.Post(ctx, req, header, body)
	if err != nil {
		logger.Debug("statement failed", zap.String("statement", s.stmt), zap.Error(err))
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)

	reader, err := decompressBody(resp)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(reader)
	resp.Body = reader

	if err := checkStatusCodeOK(resp); err != nil {
		logger.Debug("statement rejected",
			zap.String("statement", s.stmt),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logger.Debug("statement executed",
		zap.String("statement", s.stmt),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(data)))

	return &Response{
		StatusCode: resp.StatusCode,
		QueryID:    queryID,
		Summary:    parseSummary(resp.Header.Get("X-ClickHouse-Summary")),
		Body:       data,
	}, nil
}
