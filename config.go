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
	"net"
	"strconv"
)

const (
	// DefaultHost is the host of the ClickHouse server used by functional tests.
	DefaultHost = "localhost"
	// DefaultPort is the HTTP port of the ClickHouse server used by functional tests.
	DefaultPort = 18123
	// DefaultDatabase is the database statements run against when none is configured.
	DefaultDatabase = "default"
)

// Compression is the HTTP response compression requested from ClickHouse.
type Compression string

const (
	// CompressionNone disables response compression.
	CompressionNone Compression = ""
	// CompressionGzip asks ClickHouse to gzip responses.
	CompressionGzip Compression = "gzip"
	// CompressionZstd asks ClickHouse to zstd-compress responses.
	CompressionZstd Compression = "zstd"
)

// Config defines the configuration for the client.
type Config struct {
	// Host is the hostname of the ClickHouse server.
	Host string `json:"host" mapstructure:"host"`
	// Port is the HTTP port of the ClickHouse server.
	Port int `json:"port" mapstructure:"port"`
	// Database is the database statements run against.
	//
	// This is optional. When empty, DefaultDatabase is used.
	Database string `json:"database" mapstructure:"database"`
	// User and Password authenticate the HTTP requests. Both are optional.
	User     string `json:"user" mapstructure:"user"`
	Password string `json:"password" mapstructure:"password"`
	// Compression is the response compression to request.
	Compression Compression `json:"compression" mapstructure:"compression"`
	// Settings are ClickHouse settings sent with every statement as URL parameters.
	Settings map[string]string `json:"settings" mapstructure:"settings"`
}

// DefaultConfig returns the configuration of the local functional test server.
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		Database: DefaultDatabase,
	}
}

// Endpoint returns the base URL of the ClickHouse HTTP interface.
func (c *Config) Endpoint() string {
	host, port := c.Host, c.Port
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

func (c *Config) database() string {
	if c.Database == "" {
		return DefaultDatabase
	}
	return c.Database
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Compression {
	case CompressionNone, CompressionGzip, CompressionZstd:
		return nil
	default:
		return fmt.Errorf("unsupported compression: %s", c.Compression)
	}
}
