// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import (
	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/models"
)

// reconcileRoot patches the current tree to match a freshly fetched layout.
// Nodes that exist on both sides keep their identity ("recycle, not
// rebuild"); a top-level identity the existing root cannot represent
// replaces the root wholesale. Returns the root the tree ends up with.
// Runs on the loop.
func (s *Session) reconcileRoot(layout models.Layout) (*menu.Node, error) {
	root := s.tree.Root()

	if root != nil && root.ID() != layout.ID {
		// The remote side came back as something else entirely; no
		// incremental patch can bridge that.
		s.log.Warn().
			Int("local_root", root.ID()).
			Int("remote_root", layout.ID).
			Msg("root identity changed, rebuilding tree")
		s.tree.RemoveSubtree(root.ID())
		root = nil
	}

	if root == nil {
		root = s.tree.Create(layout.ID)
		s.tree.SetRoot(root)
		s.scheduleNewNode(root, nil)
	} else {
		s.scheduleRefresh(root)
	}

	s.reconcile(root, layout)
	return root, nil
}

type reconcileFrame struct {
	node   *menu.Node
	layout models.Layout
}

// reconcile walks layout against the subtree rooted at node with an
// explicit work stack; menus are rarely deep, but depth is remote-controlled
// and must not be able to exhaust the goroutine stack.
func (s *Session) reconcile(node *menu.Node, layout models.Layout) {
	stack := []reconcileFrame{{node: node, layout: layout}}
	var orphans []*menu.Node

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if frame.node.ID() != frame.layout.ID {
			// The description no longer lines up with the node it
			// should patch; leave this subtree as it was.
			s.log.Warn().
				Err(ErrProtocolMismatch).
				Int("node", frame.node.ID()).
				Int("layout", frame.layout.ID).
				Msg("skipping subtree")
			continue
		}

		orphans = append(orphans, s.reconcileChildren(frame.node, frame.layout)...)

		childIDs := frame.node.ChildIDs()
		if len(childIDs) != len(frame.layout.Children) {
			s.log.Warn().
				Int("node", frame.node.ID()).
				Int("children", len(childIDs)).
				Int("described", len(frame.layout.Children)).
				Msg("sync failed, child counts disagree")
		}

		// The original protocol flushes queued property requests once a
		// first-level subtree is assembled, as a "probably done with this
		// burst" heuristic. Batch boundaries are a latency knob, not a
		// correctness requirement.
		if parent := frame.node.Parent(); parent != nil && parent.Root() {
			s.batcher.Flush()
		}

		for i := 0; i < len(childIDs) && i < len(frame.layout.Children); i++ {
			child := s.tree.Find(childIDs[i])
			if child == nil {
				continue
			}
			stack = append(stack, reconcileFrame{node: child, layout: frame.layout.Children[i]})
		}
	}

	// Pruning waits until the whole pass is done: an id dropped from one
	// parent's description may reappear under another parent, and such a
	// move must keep the node alive with its identity intact. Anything
	// still detached now is really gone.
	for _, orphan := range orphans {
		if s.tree.Find(orphan.ID()) != orphan || orphan.Parent() != nil {
			continue
		}
		s.log.Debug().Int("id", orphan.ID()).Msg("pruning menu item dropped by layout")
		s.tree.RemoveSubtree(orphan.ID())
	}
}

// reconcileChildren lines node's direct children up with the description:
// recycle matching ids into their new position, re-home ids that moved in
// from another parent, create what is missing, and detach what is gone. The
// detached nodes are returned for the caller to prune after the pass.
func (s *Session) reconcileChildren(node *menu.Node, layout models.Layout) []*menu.Node {
	remaining := node.ChildIDs()

	for pos, childLayout := range layout.Children {
		if idx := indexOf(remaining, childLayout.ID); idx >= 0 {
			remaining = append(remaining[:idx], remaining[idx+1:]...)

			// Recycling keeps handler-attached state and avoids
			// destroy/recreate churn; only the position moves.
			s.tree.ReorderChild(node, childLayout.ID, pos)
			if child := s.tree.Find(childLayout.ID); child != nil {
				s.scheduleRefresh(child)
			}
			continue
		}

		if child := s.tree.Find(childLayout.ID); child != nil {
			if child.Root() {
				s.log.Warn().
					Err(ErrProtocolMismatch).
					Int("id", childLayout.ID).
					Msg("layout lists the root as a child, skipping")
				continue
			}
			// The id already lives elsewhere in the arena: the item
			// moved between parents. Re-home the existing node.
			s.log.Debug().Int("id", childLayout.ID).Int("parent", node.ID()).Msg("menu item moved to a new parent")
			s.tree.Detach(child)
			s.tree.AttachChildAt(node, child, pos)
			s.scheduleRefresh(child)
			continue
		}

		child := s.tree.Create(childLayout.ID)
		s.tree.AttachChildAt(node, child, pos)
		s.scheduleNewNode(child, node)
	}

	var orphans []*menu.Node
	for _, gone := range remaining {
		child := s.tree.Find(gone)
		if child == nil {
			continue
		}
		s.tree.Detach(child)
		orphans = append(orphans, child)
	}
	return orphans
}

// scheduleNewNode queues the initial property fetch for a node that did not
// exist before. When the properties arrive the node runs through type
// handler dispatch, is marked realized, and (unless a handler claimed it)
// announced to observers.
func (s *Session) scheduleNewNode(node, parent *menu.Node) {
	id := node.ID()
	err := s.batcher.Request(id, func(props map[string]models.Variant, err error) {
		if err != nil {
			s.log.Warn().Err(err).Int("id", id).Msg("error getting properties on a new menuitem")
			return
		}
		if s.tree.Find(id) != node {
			// Pruned or replaced while the fetch was in flight.
			return
		}

		node.MergeProperties(props)

		handled := s.registry.dispatch(node, parent)
		node.MarkRealized()
		if !handled {
			s.observer.NewNode(node)
		}
	})
	if err != nil {
		s.log.Warn().Err(err).Int("id", id).Msg("unable to queue properties for menuitem, it will never be realized")
	}
}

// scheduleRefresh queues a full property refetch for a recycled node. The
// fetched set replaces the stored one wholesale so properties the remote
// side dropped disappear here too.
func (s *Session) scheduleRefresh(node *menu.Node) {
	id := node.ID()
	err := s.batcher.Request(id, func(props map[string]models.Variant, err error) {
		if err != nil {
			s.log.Warn().Err(err).Int("id", id).Msg("unable to replace properties")
			return
		}
		if s.tree.Find(id) != node {
			return
		}
		node.ReplaceProperties(props)
	})
	if err != nil {
		s.log.Debug().Err(err).Int("id", id).Msg("property refresh already queued")
	}
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
