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
	"os"
	"strings"

	"github.com/rspamd/chtest"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable LoadConfig reads.
const EnvPrefix = "CHTEST"

// LoadConfig loads the client configuration from CHTEST_HOST, CHTEST_PORT,
// CHTEST_DATABASE, CHTEST_USER, CHTEST_PASSWORD and CHTEST_COMPRESSION.
//
// It returns nil when CHTEST_HOST is not set.
func LoadConfig() (*chtest.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", chtest.DefaultPort)
	v.SetDefault("database", chtest.DefaultDatabase)
	for _, key := range []string{"host", "user", "password", "compression"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if v.GetString("host") == "" {
		return nil, nil
	}

	var config chtest.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// OptionEnabled returns true if the environment variable is set to a truthy value.
func OptionEnabled(key string) bool {
	value := os.Getenv(key)
	switch strings.ToLower(value) {
	case "1", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
