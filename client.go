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
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Client executes statements against a ClickHouse server over its HTTP interface.
//
// A Client holds no mutable state after construction. Create one at test
// suite setup and pass it to every fixture that needs it.
type Client struct {
	config *Config
	http   HTTPClient
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used to reach ClickHouse.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the logger statements are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new client. A nil config means DefaultConfig.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: config,
		http:   NewHTTPClient(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the configuration the client was created with.
func (c *Client) Config() *Config {
	return c.config
}

// Execute sends the SQL text as the body of a POST request and returns the raw response.
//
// A non-200 status is reported as *RequestError carrying the response body.
func (c *Client) Execute(ctx context.Context, sql string) (*Response, error) {
	return c.Statement(sql).Execute(ctx)
}

// Query executes the SQL text and decodes the JSONEachRow response into rows,
// in response order.
func (c *Client) Query(ctx context.Context, sql string) ([]Row, error) {
	return c.Statement(sql).Query(ctx)
}

// Ping checks that the server answers on its /ping handler.
func (c *Client) Ping(ctx context.Context) error {
	u, err := url.Parse(c.config.Endpoint() + "/ping")
	if err != nil {
		return err
	}

	resp, err := c.http.Get(ctx, u, nil)
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) != "Ok." {
		return fmt.Errorf("unexpected ping response: %q", data)
	}
	return nil
}

func (c *Client) authHeader() http.Header {
	header := make(http.Header)
	if c.config.User != "" {
		header.Set("X-ClickHouse-User", c.config.User)
	}
	if c.config.Password != "" {
		header.Set("X-ClickHouse-Key", c.config.Password)
	}
	return header
}
