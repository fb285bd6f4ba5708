// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config assembles go-menu-mirror configuration from environment
// variables (caarlos0/env struct tags, MENUMIRROR_ prefix) with command-line
// flag overrides for the menudump tool.
package config

import (
	"errors"
	"time"
)

// ErrBusNameRequired is returned when no remote bus name was configured.
var ErrBusNameRequired = errors.New("remote bus name is required")

// Config is the top-level configuration container for go-menu-mirror.
type Config struct {
	// Bus identifies the remote menu endpoint on the message bus.
	Bus Bus `envPrefix:"BUS_"`

	// Timeouts holds the per-call deadlines of the client protocol.
	Timeouts Timeouts `envPrefix:"TIMEOUT_"`

	// Workers configures the background workers of the menudump tool.
	Workers Workers `envPrefix:"WORKERS_"`
}

// Bus identifies the remote endpoint that owns the menu structure.
type Bus struct {
	// Name is the well-known or unique bus name of the menu server
	// (e.g. ":1.42" or "com.example.app").
	// Env: MENUMIRROR_BUS_NAME
	Name string `env:"NAME"`

	// ObjectPath is the object path exporting the menu interface
	// (e.g. "/com/example/app/menubar").
	// Env: MENUMIRROR_BUS_OBJECT_PATH
	ObjectPath string `env:"OBJECT_PATH" envDefault:"/"`
}

// Timeouts holds the deadlines applied to outbound remote calls.
type Timeouts struct {
	// Layout bounds a full-tree layout fetch. Zero means unbounded, which
	// is the protocol default: a slow server delays the mirror but never
	// fails it.
	// Env: MENUMIRROR_TIMEOUT_LAYOUT
	Layout time.Duration `env:"LAYOUT" envDefault:"0"`

	// Event bounds delivery of a user-triggered event. Events are fire and
	// report, so the bound is short.
	// Env: MENUMIRROR_TIMEOUT_EVENT
	Event time.Duration `env:"EVENT" envDefault:"1s"`
}

// Workers configures background workers.
type Workers struct {
	// RefreshInterval is the period of the safety-net full refresh. The
	// mirror is signal-driven, so zero (disabled) is the default; a positive
	// interval papers over servers that forget to emit layout notifications.
	// Env: MENUMIRROR_WORKERS_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"0"`
}

// Validate checks that the config addresses a remote endpoint.
func (c *Config) Validate() error {
	if c.Bus.Name == "" {
		return ErrBusNameRequired
	}
	return nil
}
