// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import "errors"

var (
	// ErrShutdown is delivered to every callback still waiting when the
	// session is torn down, so resources held by listeners are released
	// deterministically.
	ErrShutdown = errors.New("session shut down")

	// ErrConnectionLost is delivered to callbacks whose pending fetches
	// were orphaned by the menu owner leaving the bus.
	ErrConnectionLost = errors.New("connection to menu owner lost")

	// ErrProtocolMismatch reports a remote subtree description whose top
	// identity disagrees with the local node it should patch.
	ErrProtocolMismatch = errors.New("layout identity does not match local node")

	// ErrTypeRegistered reports a second handler registration for a type
	// tag that already has one.
	ErrTypeRegistered = errors.New("type tag already has a registered handler")

	// ErrUnknownNode reports an operation addressing a node id the mirror
	// does not hold.
	ErrUnknownNode = errors.New("unknown menu node id")
)
