// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Well-known property keys set by menu servers. The mirror itself treats the
// property map as opaque except for PropertyType, which selects the type
// handler when a node is realized.
const (
	PropertyType            = "type"
	PropertyLabel           = "label"
	PropertyEnabled         = "enabled"
	PropertyVisible         = "visible"
	PropertyIconName        = "icon-name"
	PropertyToggleType      = "toggle-type"
	PropertyToggleState     = "toggle-state"
	PropertyChildrenDisplay = "children-display"
)

// TypeDefault is the type tag assumed for nodes that declare no "type"
// property. A handler registered under this tag sees every untyped node.
const TypeDefault = "standard"

// NodeProperties is one entry of a group property response: the property map
// belonging to a single node id.
type NodeProperties struct {
	// ID is the node the properties belong to.
	ID int

	// Properties maps property keys to their current values.
	Properties map[string]Variant
}

// RemovedProperties names the property keys a bulk update dropped from a
// single node.
type RemovedProperties struct {
	// ID is the node the removals apply to.
	ID int

	// Keys are the property names no longer present on the node.
	Keys []string
}
