// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package menu

import (
	"github.com/MKhiriev/go-menu-mirror/models"
)

// Node is a single element of the mirrored menu tree.
//
// Nodes are owned by their Tree and addressed by the integer id the remote
// side assigned. The parent link is a relation, never ownership: detaching a
// subtree is a removal from the arena, there is no reference cycle to break.
//
// All mutating methods must run on the owning session's loop. Observers read
// nodes through Snapshot, which copies everything they are allowed to see.
type Node struct {
	id       int
	tree     *Tree
	parent   int
	children []int
	props    map[string]models.Variant
	realized bool
}

const noParent = -1

// ID returns the remote-assigned identity of the node.
func (n *Node) ID() int {
	return n.id
}

// Root reports whether the node is the root of its tree.
func (n *Node) Root() bool {
	return n.parent == noParent
}

// Parent returns the parent node, or nil for the root and for nodes not yet
// attached anywhere.
func (n *Node) Parent() *Node {
	if n.parent == noParent {
		return nil
	}
	return n.tree.Find(n.parent)
}

// Children returns the node's children in presentation order. The slice is
// freshly allocated; callers may keep it. Unrealized children are included,
// so only the owning session should walk the tree directly.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c := n.tree.Find(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ChildIDs returns a copy of the ordered child identity list.
func (n *Node) ChildIDs() []int {
	out := make([]int, len(n.children))
	copy(out, n.children)
	return out
}

// Property returns the value stored under key.
func (n *Node) Property(key string) (models.Variant, bool) {
	v, ok := n.props[key]
	return v, ok
}

// PropertyString returns the value under key as a string, or "" when the
// property is absent or not a string.
func (n *Node) PropertyString(key string) string {
	if v, ok := n.props[key]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

// SetProperty stores value under key, replacing any previous value.
func (n *Node) SetProperty(key string, value models.Variant) {
	n.props[key] = value
}

// RemoveProperty drops the value stored under key, if any.
func (n *Node) RemoveProperty(key string) {
	delete(n.props, key)
}

// ReplaceProperties discards every stored property and installs props in
// their place. Used when a recycled node's full property set is refetched.
func (n *Node) ReplaceProperties(props map[string]models.Variant) {
	n.props = make(map[string]models.Variant, len(props))
	for k, v := range props {
		n.props[k] = v
	}
}

// MergeProperties stores every entry of props, keeping unrelated existing
// keys. Used for single-node change notifications.
func (n *Node) MergeProperties(props map[string]models.Variant) {
	for k, v := range props {
		n.props[k] = v
	}
}

// PropertyKeys returns the stored property names in no particular order.
func (n *Node) PropertyKeys() []string {
	keys := make([]string, 0, len(n.props))
	for k := range n.props {
		keys = append(keys, k)
	}
	return keys
}

// Realized reports whether the node's initial property fetch has completed
// and its type handler has run. Unrealized nodes are invisible to observers.
func (n *Node) Realized() bool {
	return n.realized
}

// MarkRealized flags the node as ready for observers. Called exactly once by
// the owning session after type handler dispatch.
func (n *Node) MarkRealized() {
	n.realized = true
}

// TypeTag returns the node's declared "type" property, or the default tag
// when the node declares none.
func (n *Node) TypeTag() string {
	if tag := n.PropertyString(models.PropertyType); tag != "" {
		return tag
	}
	return models.TypeDefault
}
