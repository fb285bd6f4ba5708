// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package batch

import "errors"

var (
	// ErrDuplicateRequest reports a property request for an id that is
	// already waiting in the current batch.
	ErrDuplicateRequest = errors.New("properties already requested for id")

	// ErrPropertiesUnavailable reports that a group response carried no
	// entry for a requested id.
	ErrPropertiesUnavailable = errors.New("properties unavailable for id")
)
