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
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RequestError is returned when ClickHouse answers a statement with a non-200 status.
type RequestError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Body is the response body, usually the ClickHouse exception text.
	Body string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("clickhouse request failed: %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// DecodeError is returned when a line of a JSONEachRow response is not a JSON object.
type DecodeError struct {
	// Line is the 1-based line number in the response body.
	Line int
	// Text is the offending line.
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AssertionError is returned by fixture assertions when the database state
// does not match the expectation.
type AssertionError struct {
	Message  string
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s (expected: %v, actual: %v)", e.Message, e.Expected, e.Actual)
}

func checkStatusCodeOK(resp *http.Response) error {
	return checkStatusCode(resp, http.StatusOK)
}

func checkStatusCode(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{StatusCode: resp.StatusCode, Body: err.Error()}
	}
	return &RequestError{StatusCode: resp.StatusCode, Body: string(data)}
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
