// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// RootID is the node identifier the remote side reserves for the root of
// every menu tree.
const RootID = 0

// Layout is the structural description of a menu subtree as reported by the
// remote side. It carries identities and ordering only; node properties
// arrive separately through grouped property fetches.
type Layout struct {
	// ID is the remote-assigned identity of this node.
	ID int

	// Children are the node's sub-layouts in presentation order.
	Children []Layout
}

// layoutXML mirrors the wire representation: nested <menu id="..."/>
// elements. The id attribute is kept as a string so a missing attribute can
// be told apart from an explicit id of zero.
type layoutXML struct {
	ID       string      `xml:"id,attr"`
	Children []layoutXML `xml:"menu"`
}

// ParseLayout decodes the XML layout string returned by GetLayout into a
// Layout tree. Elements without a parseable id attribute are skipped, the
// same way the reference protocol treats comments and foreign elements; a
// root without an id is a hard error because nothing below it can be
// addressed.
func ParseLayout(raw string) (Layout, error) {
	var root layoutXML
	if err := xml.NewDecoder(strings.NewReader(raw)).Decode(&root); err != nil {
		return Layout{}, fmt.Errorf("decode layout xml: %w", err)
	}

	id, err := strconv.Atoi(strings.TrimSpace(root.ID))
	if err != nil {
		return Layout{}, fmt.Errorf("layout root has no usable id attribute: %w", err)
	}

	return buildLayout(id, root.Children), nil
}

func buildLayout(id int, children []layoutXML) Layout {
	l := Layout{ID: id}
	for _, child := range children {
		childID, err := strconv.Atoi(strings.TrimSpace(child.ID))
		if err != nil {
			continue
		}
		l.Children = append(l.Children, buildLayout(childID, child.Children))
	}
	return l
}

// CountNodes returns the total number of nodes in the layout, the root
// included. Used for logging and consistency checks after reconciliation.
func (l Layout) CountNodes() int {
	n := 1
	for _, c := range l.Children {
		n += c.CountNodes()
	}
	return n
}
