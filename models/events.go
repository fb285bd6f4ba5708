// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Event names understood by menu servers. Arbitrary names are allowed on the
// wire; these cover the interactions a presentation layer normally produces.
const (
	EventClicked = "clicked"
	EventHovered = "hovered"
	EventOpened  = "opened"
	EventClosed  = "closed"
)
