// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package transport

import (
	"github.com/MKhiriev/go-menu-mirror/models"
)

// SignalHandler receives the inbound notifications of the menu protocol.
// The session implements it; the transport delivers from its own receive
// goroutine, so implementations must be safe to call off-loop.
type SignalHandler interface {
	// LayoutUpdated announces a new remote revision for the subtree under
	// parentID.
	LayoutUpdated(revision uint32, parentID int)

	// ItemPropertyUpdated pushes a single changed property value.
	ItemPropertyUpdated(id int, key string, value models.Variant)

	// ItemPropertiesUpdated pushes a bulk change: per-node removed keys
	// and per-node changed pairs.
	ItemPropertiesUpdated(updated []models.NodeProperties, removed []models.RemovedProperties)

	// ItemUpdated invalidates one node; its properties must be refetched.
	ItemUpdated(id int)

	// ItemActivationRequested asks the client to display a node.
	ItemActivationRequested(id int, timestamp uint32)

	// OwnerAppeared reports that the remote endpoint gained a bus owner.
	OwnerAppeared()

	// OwnerLost reports that the remote endpoint left the bus.
	OwnerLost()
}
