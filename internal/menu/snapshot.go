// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package menu

import (
	"github.com/MKhiriev/go-menu-mirror/models"
)

// NodeSnapshot is an immutable copy of a realized node and its realized
// descendants. Snapshots are what crosses the session-loop boundary: the
// live tree is confined to the loop, while snapshots may be kept and read
// from any goroutine.
type NodeSnapshot struct {
	// ID is the remote-assigned identity of the node.
	ID int `json:"id"`

	// Properties is a copy of the node's property map.
	Properties map[string]models.Variant `json:"properties,omitempty"`

	// Children are the realized children in presentation order.
	Children []NodeSnapshot `json:"children,omitempty"`
}

// Snapshot copies the node and every realized descendant. Unrealized nodes
// are skipped; they have not finished their initial property fetch and are
// not exposed outside the session.
func (n *Node) Snapshot() NodeSnapshot {
	s := NodeSnapshot{ID: n.id, Properties: make(map[string]models.Variant, len(n.props))}
	for k, v := range n.props {
		s.Properties[k] = v
	}
	for _, child := range n.Children() {
		if !child.realized {
			continue
		}
		s.Children = append(s.Children, child.Snapshot())
	}
	return s
}

// Label returns the snapshot's display label, or "" when it has none.
func (s NodeSnapshot) Label() string {
	if v, ok := s.Properties[models.PropertyLabel]; ok {
		if label, ok := v.AsString(); ok {
			return label
		}
	}
	return ""
}
