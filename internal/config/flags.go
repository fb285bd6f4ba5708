// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
)

// ToolOptions carries menudump settings that have no meaning for the library
// itself.
type ToolOptions struct {
	// Once makes the tool print a single JSON dump of the tree and exit
	// instead of starting the interactive viewer.
	Once bool
}

// ParseFlags parses menudump command-line flags on top of cfg. Flags that
// were explicitly passed override values loaded from the environment.
//
// Flags:
//
//	-name    bus name of the menu server
//	-object  object path exporting the menu
//	-once    dump the tree as JSON once and exit
func ParseFlags(cfg *Config) ToolOptions {
	var opts ToolOptions

	name := flag.String("name", "", "bus name of the menu server")
	object := flag.String("object", "", "object path exporting the menu")
	flag.BoolVar(&opts.Once, "once", false, "dump the menu tree as JSON once and exit")
	flag.Parse()

	if *name != "" {
		cfg.Bus.Name = *name
	}
	if *object != "" {
		cfg.Bus.ObjectPath = *object
	}

	return opts
}
