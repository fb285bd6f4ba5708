// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import (
	"fmt"

	"github.com/MKhiriev/go-menu-mirror/internal/logger"
	"github.com/MKhiriev/go-menu-mirror/internal/menu"
)

// TypeHandler gets first chance at a newly realized node whose "type"
// property matches the tag it was registered under.
type TypeHandler interface {
	// Realize processes the node right after its initial properties
	// arrived and before observers see it. parent is nil for the root.
	// Returning true marks the node handled and suppresses the generic
	// NewNode notification.
	Realize(node, parent *menu.Node) (handled bool)

	// Release is called once when the handler is removed, at session
	// teardown, so it can free whatever it attached to nodes.
	Release()
}

// TypeHandlerFunc adapts a plain function to the TypeHandler interface with
// a no-op Release.
type TypeHandlerFunc func(node, parent *menu.Node) bool

func (f TypeHandlerFunc) Realize(node, parent *menu.Node) bool { return f(node, parent) }

func (TypeHandlerFunc) Release() {}

// typeRegistry maps type tags to handlers for one session. Owned by the
// session instance; there is no process-wide handler state.
type typeRegistry struct {
	log      *logger.Logger
	handlers map[string]TypeHandler
}

func newTypeRegistry(log *logger.Logger) *typeRegistry {
	return &typeRegistry{
		log:      log,
		handlers: make(map[string]TypeHandler),
	}
}

// register stores handler under tag. A tag can only be claimed once.
func (r *typeRegistry) register(tag string, handler TypeHandler) error {
	if _, taken := r.handlers[tag]; taken {
		r.log.Warn().Str("type", tag).Msg("type already had a registered handler")
		return fmt.Errorf("%w: %q", ErrTypeRegistered, tag)
	}
	r.handlers[tag] = handler
	return nil
}

// dispatch runs the handler matching the node's type tag. Nodes declaring no
// type carry the default tag; a declared tag nobody registered stays
// unhandled. Returns true when a handler claimed the node.
func (r *typeRegistry) dispatch(node, parent *menu.Node) bool {
	handler, ok := r.handlers[node.TypeTag()]
	if !ok {
		return false
	}
	return handler.Realize(node, parent)
}

// releaseAll removes every handler, giving each a chance to free resources.
func (r *typeRegistry) releaseAll() {
	for tag, handler := range r.handlers {
		handler.Release()
		delete(r.handlers, tag)
	}
}
