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

package testkit

import (
	"context"
	"testing"

	"github.com/rspamd/chtest"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

const (
	// ContainerImage is the ClickHouse image StartContainer runs.
	ContainerImage = "clickhouse/clickhouse-server:25.1-alpine"

	containerUser     = "chtest"
	containerPassword = "chtest"
	httpPort          = "8123/tcp"
)

// Container is a ClickHouse server started for the duration of a test.
type Container struct {
	*clickhouse.ClickHouseContainer

	// Config points at the mapped HTTP port of the container.
	Config *chtest.Config
	// DSN is the native protocol connection string of the container.
	DSN string
}

// StartContainer starts a ClickHouse container and registers its removal
// with t.Cleanup.
func StartContainer(ctx context.Context, t testing.TB) *Container {
	ctr, err := clickhouse.Run(
		ctx,
		ContainerImage,
		clickhouse.WithUsername(containerUser),
		clickhouse.WithPassword(containerPassword),
		clickhouse.WithDatabase(chtest.DefaultDatabase),
	)
	tc.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, httpPort)
	require.NoError(t, err)
	dsn, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	return &Container{
		ClickHouseContainer: ctr,
		Config: &chtest.Config{
			Host:     host,
			Port:     port.Int(),
			Database: chtest.DefaultDatabase,
			User:     containerUser,
			Password: containerPassword,
		},
		DSN: dsn,
	}
}
