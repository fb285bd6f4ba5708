// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package menu holds the client-side mirror of a remote menu structure: an
// arena of nodes addressed by the integer ids the remote process assigned.
//
// The arena, not any node, owns node lifetime. Children are ordered id
// slices and the parent link is a plain id, so pruning a subtree is a set of
// map removals with no ownership cycles involved.
package menu

import (
	"github.com/MKhiriev/go-menu-mirror/models"
)

// Tree is the arena owning every node of one mirrored menu.
// It is not safe for concurrent use; all access runs on the session loop.
type Tree struct {
	nodes map[int]*Node
	root  int
	// hasRoot distinguishes "no root" from a root with id 0, which is the
	// usual remote-assigned root identity.
	hasRoot bool
}

// NewTree returns an empty arena.
func NewTree() *Tree {
	return &Tree{nodes: make(map[int]*Node)}
}

// Len returns the number of live nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the current root node, or nil when the tree is empty.
func (t *Tree) Root() *Node {
	if !t.hasRoot {
		return nil
	}
	return t.nodes[t.root]
}

// Find returns the node with the given id, or nil.
func (t *Tree) Find(id int) *Node {
	return t.nodes[id]
}

// Create allocates a new unattached node with the given id and adds it to
// the arena. Creating an id that already exists replaces the old entry; the
// reconciler guarantees this never happens for live nodes.
func (t *Tree) Create(id int) *Node {
	n := &Node{
		id:     id,
		tree:   t,
		parent: noParent,
		props:  make(map[string]models.Variant),
	}
	t.nodes[id] = n
	return n
}

// SetRoot makes node the root of the tree. The node must already live in
// this arena.
func (t *Tree) SetRoot(node *Node) {
	node.parent = noParent
	t.root = node.id
	t.hasRoot = true
}

// AttachChildAt inserts child into parent's ordered child list at position
// pos, clamping pos to the list's bounds.
func (t *Tree) AttachChildAt(parent, child *Node, pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(parent.children) {
		pos = len(parent.children)
	}
	parent.children = append(parent.children, 0)
	copy(parent.children[pos+1:], parent.children[pos:])
	parent.children[pos] = child.id
	child.parent = parent.id
}

// ReorderChild moves an existing child of parent to position pos, keeping
// the relative order of its siblings. A child not currently attached to
// parent is left untouched.
func (t *Tree) ReorderChild(parent *Node, childID, pos int) {
	cur := -1
	for i, id := range parent.children {
		if id == childID {
			cur = i
			break
		}
	}
	if cur == -1 {
		return
	}

	parent.children = append(parent.children[:cur], parent.children[cur+1:]...)
	if pos < 0 {
		pos = 0
	}
	if pos > len(parent.children) {
		pos = len(parent.children)
	}
	parent.children = append(parent.children, 0)
	copy(parent.children[pos+1:], parent.children[pos:])
	parent.children[pos] = childID
}

// Detach removes node from its parent's ordered child list, leaving the
// node and its descendants alive in the arena. Detaching a node with no
// parent is a no-op.
func (t *Tree) Detach(node *Node) {
	parent := node.Parent()
	if parent == nil {
		return
	}
	for i, cid := range parent.children {
		if cid == node.id {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	node.parent = noParent
}

// RemoveSubtree detaches the node with the given id from its parent and
// removes it and all its descendants from the arena. Removing an unknown id
// is a no-op.
func (t *Tree) RemoveSubtree(id int) {
	node := t.nodes[id]
	if node == nil {
		return
	}

	if parent := node.Parent(); parent != nil {
		for i, cid := range parent.children {
			if cid == id {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	if t.hasRoot && t.root == id {
		t.hasRoot = false
	}

	// Iterative walk; menu depth is unbounded in principle.
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n := t.nodes[cur]; n != nil {
			stack = append(stack, n.children...)
			delete(t.nodes, cur)
		}
	}
}

// Clear drops every node in the arena, root included.
func (t *Tree) Clear() {
	t.nodes = make(map[int]*Node)
	t.hasRoot = false
}
