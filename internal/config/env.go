// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// GetConfig populates a Config from environment variables using the
// caarlos0/env library. Struct fields are mapped via the `env` and
// `envPrefix` tags defined on [Config] and its nested types, all under the
// MENUMIRROR_ prefix.
//
// Returns a wrapped error if env.Parse fails (e.g. a value cannot be
// converted to the target type).
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "MENUMIRROR_"}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	return cfg, nil
}
