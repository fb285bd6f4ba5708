// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import (
	"context"

	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/models"
)

// Caller is the remote procedure surface the session consumes. The transport
// layer implements it over the message bus; tests implement it in memory.
// All methods block until the remote side answers or ctx is done.
type Caller interface {
	// GetLayout fetches the structural description of the subtree rooted
	// at parentID together with the revision it reflects.
	GetLayout(ctx context.Context, parentID int) (revision uint32, layout models.Layout, err error)

	// GetGroupProperties fetches the property maps of several nodes in one
	// round-trip. An empty names list requests all properties.
	GetGroupProperties(ctx context.Context, ids []int, names []string) ([]models.NodeProperties, error)

	// Event delivers a user-triggered event for a node to the remote side.
	Event(ctx context.Context, id int, name string, data models.Variant, timestamp uint32) error

	// AboutToShow tells the remote side a submenu is about to be shown and
	// learns whether the layout should be refetched first.
	AboutToShow(ctx context.Context, id int) (needUpdate bool, err error)
}

// Observer consumes session notifications. Implementations are called on
// the session loop and must not block or mutate the tree; copy what you
// need (menu.NodeSnapshot) and return.
type Observer interface {
	// RootChanged reports that the tree root was replaced wholesale. root
	// is nil after a connection loss. The node is a structural reference;
	// its properties may still be on their way.
	RootChanged(root *menu.Node)

	// LayoutUpdated reports that a refresh completed and the tree now
	// reflects a newer revision.
	LayoutUpdated()

	// NewNode reports a freshly realized node no type handler claimed.
	NewNode(node *menu.Node)

	// ItemActivationRequested reports that the remote side wants the
	// presentation layer to display the given node.
	ItemActivationRequested(node *menu.Node, timestamp uint32)

	// EventResult reports the outcome of a previously sent event. err is
	// nil when the remote side accepted it.
	EventResult(node *menu.Node, event string, data models.Variant, timestamp uint32, err error)
}

// NopObserver is an Observer that ignores every notification. Embed it to
// implement only the callbacks you care about.
type NopObserver struct{}

func (NopObserver) RootChanged(*menu.Node)                        {}
func (NopObserver) LayoutUpdated()                                {}
func (NopObserver) NewNode(*menu.Node)                            {}
func (NopObserver) ItemActivationRequested(*menu.Node, uint32)    {}
func (NopObserver) EventResult(*menu.Node, string, models.Variant, uint32, error) {
}
