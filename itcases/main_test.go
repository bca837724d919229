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
	"testing"
	"time"

	"github.com/rspamd/chtest/testkit"
)

const readyTimeout = 60 * time.Second

// NewKit returns a test kit for the server configured in the environment.
// Without one, a container is started when CHTEST_CONTAINER is enabled;
// otherwise the test is skipped.
func NewKit(t testing.TB) *testkit.TestKit {
	if tk := testkit.NewTestKit(t); tk != nil {
		tk.WaitReady(context.Background(), readyTimeout)
		return tk
	}
	tk, _ := NewContainerKit(t)
	return tk
}

// NewContainerKit starts a ClickHouse container and returns a kit for it
// together with the native protocol DSN of the container.
func NewContainerKit(t testing.TB) (*testkit.TestKit, string) {
	if !testkit.OptionEnabled("CHTEST_CONTAINER") {
		t.Skip("CHTEST_HOST not set and CHTEST_CONTAINER not enabled")
		return nil, "" // unreachable
	}

	ctx := context.Background()
	ctr := testkit.StartContainer(ctx, t)
	tk := testkit.New(t, ctr.Config)
	tk.WaitReady(ctx, readyTimeout)
	return tk, ctr.DSN
}
