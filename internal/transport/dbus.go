// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package transport connects go-menu-mirror to a remote menu server over
// the D-Bus session bus. It implements the session.Caller call surface and
// delivers the protocol's inbound signals to a SignalHandler, translating
// between wire values and the module's models types at the boundary.
package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/MKhiriev/go-menu-mirror/internal/config"
	"github.com/MKhiriev/go-menu-mirror/internal/logger"
	"github.com/MKhiriev/go-menu-mirror/models"
)

const (
	menuInterface = "com.canonical.dbusmenu"

	methodGetLayout          = menuInterface + ".GetLayout"
	methodGetGroupProperties = menuInterface + ".GetGroupProperties"
	methodEvent              = menuInterface + ".Event"
	methodAboutToShow        = menuInterface + ".AboutToShow"

	signalLayoutUpdated           = menuInterface + ".LayoutUpdated"
	signalItemPropertyUpdated     = menuInterface + ".ItemPropertyUpdated"
	signalItemPropertiesUpdated   = menuInterface + ".ItemPropertiesUpdated"
	signalItemUpdated             = menuInterface + ".ItemUpdated"
	signalItemActivationRequested = menuInterface + ".ItemActivationRequested"

	signalNameOwnerChanged = "org.freedesktop.DBus.NameOwnerChanged"
)

// Transport is a connection to one remote menu object on the session bus.
type Transport struct {
	log     *logger.Logger
	conn    *dbus.Conn
	obj     dbus.BusObject
	busName string
	path    dbus.ObjectPath

	signals   chan *dbus.Signal
	closeOnce sync.Once
	stopped   chan struct{}
}

// Connect opens a private session bus connection and binds to the menu
// object described by cfg. No traffic flows until Watch is called.
func Connect(cfg config.Bus, log *logger.Logger) (*Transport, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	path := dbus.ObjectPath(cfg.ObjectPath)
	if !path.IsValid() {
		_ = conn.Close()
		return nil, fmt.Errorf("invalid object path %q", cfg.ObjectPath)
	}

	return &Transport{
		log:     log,
		conn:    conn,
		obj:     conn.Object(cfg.Name, path),
		busName: cfg.Name,
		path:    path,
		stopped: make(chan struct{}),
	}, nil
}

// ── Outbound calls (session.Caller) ──────────────────────────────────────────

// GetLayout fetches the layout of the subtree under parentID and the
// revision it reflects. The wire carries the structure as an XML string.
func (t *Transport) GetLayout(ctx context.Context, parentID int) (uint32, models.Layout, error) {
	var revision uint32
	var raw string

	call := t.obj.CallWithContext(ctx, methodGetLayout, 0, int32(parentID))
	if call.Err != nil {
		return 0, models.Layout{}, fmt.Errorf("get layout: %w", call.Err)
	}
	if err := call.Store(&revision, &raw); err != nil {
		return 0, models.Layout{}, fmt.Errorf("get layout reply: %w", err)
	}

	layout, err := models.ParseLayout(raw)
	if err != nil {
		return 0, models.Layout{}, err
	}
	return revision, layout, nil
}

// groupPropertiesEntry mirrors one (ia{sv}) tuple of the group reply.
type groupPropertiesEntry struct {
	ID         int32
	Properties map[string]dbus.Variant
}

// GetGroupProperties fetches the property maps for ids in one round-trip.
func (t *Transport) GetGroupProperties(ctx context.Context, ids []int, names []string) ([]models.NodeProperties, error) {
	wireIDs := make([]int32, len(ids))
	for i, id := range ids {
		wireIDs[i] = int32(id)
	}
	if names == nil {
		names = []string{}
	}

	call := t.obj.CallWithContext(ctx, methodGetGroupProperties, 0, wireIDs, names)
	if call.Err != nil {
		return nil, fmt.Errorf("get group properties: %w", call.Err)
	}

	var entries []groupPropertiesEntry
	if err := call.Store(&entries); err != nil {
		return nil, fmt.Errorf("get group properties reply: %w", err)
	}

	out := make([]models.NodeProperties, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.NodeProperties{
			ID:         int(entry.ID),
			Properties: fromWireProperties(entry.Properties),
		})
	}
	return out, nil
}

// Event delivers a user-triggered event to the remote side.
func (t *Transport) Event(ctx context.Context, id int, name string, data models.Variant, timestamp uint32) error {
	payload := data.Value()
	if payload == nil {
		payload = int32(0)
	}

	call := t.obj.CallWithContext(ctx, methodEvent, 0, int32(id), name, dbus.MakeVariant(payload), timestamp)
	if call.Err != nil {
		return fmt.Errorf("event %q on %d: %w", name, id, call.Err)
	}
	return nil
}

// AboutToShow asks the remote side whether the subtree under id needs a
// refetch before being shown.
func (t *Transport) AboutToShow(ctx context.Context, id int) (bool, error) {
	var needUpdate bool
	call := t.obj.CallWithContext(ctx, methodAboutToShow, 0, int32(id))
	if call.Err != nil {
		return false, fmt.Errorf("about to show %d: %w", id, call.Err)
	}
	if err := call.Store(&needUpdate); err != nil {
		return false, fmt.Errorf("about to show reply: %w", err)
	}
	return needUpdate, nil
}

// ── Inbound signals ──────────────────────────────────────────────────────────

// Watch subscribes to the menu interface's signals and the bus name's
// ownership changes, delivering both to handler until Close. If the remote
// name already has an owner, handler.OwnerAppeared fires once immediately.
func (t *Transport) Watch(handler SignalHandler) error {
	if err := t.conn.AddMatchSignal(
		dbus.WithMatchInterface(menuInterface),
		dbus.WithMatchObjectPath(t.path),
	); err != nil {
		return fmt.Errorf("match menu signals: %w", err)
	}
	if err := t.conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, t.busName),
	); err != nil {
		return fmt.Errorf("match owner changes: %w", err)
	}

	t.signals = make(chan *dbus.Signal, 64)
	t.conn.Signal(t.signals)

	go t.receive(handler)

	var owner string
	err := t.conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, t.busName).Store(&owner)
	if err == nil && owner != "" {
		handler.OwnerAppeared()
	}
	return nil
}

func (t *Transport) receive(handler SignalHandler) {
	defer close(t.stopped)
	for sig := range t.signals {
		t.dispatch(handler, sig)
	}
}

func (t *Transport) dispatch(handler SignalHandler, sig *dbus.Signal) {
	switch sig.Name {
	case signalLayoutUpdated:
		var revision uint32
		var parent int32
		if err := dbus.Store(sig.Body, &revision, &parent); err != nil {
			t.log.Warn().Err(err).Msg("bad LayoutUpdated signal")
			return
		}
		handler.LayoutUpdated(revision, int(parent))

	case signalItemPropertyUpdated:
		var id int32
		var key string
		var value dbus.Variant
		if err := dbus.Store(sig.Body, &id, &key, &value); err != nil {
			t.log.Warn().Err(err).Msg("bad ItemPropertyUpdated signal")
			return
		}
		handler.ItemPropertyUpdated(int(id), key, fromWireVariant(value))

	case signalItemPropertiesUpdated:
		updated, removed, err := decodePropertiesUpdated(sig.Body)
		if err != nil {
			t.log.Warn().Err(err).Msg("bad ItemPropertiesUpdated signal")
			return
		}
		handler.ItemPropertiesUpdated(updated, removed)

	case signalItemUpdated:
		var id int32
		if err := dbus.Store(sig.Body, &id); err != nil {
			t.log.Warn().Err(err).Msg("bad ItemUpdated signal")
			return
		}
		handler.ItemUpdated(int(id))

	case signalItemActivationRequested:
		var id int32
		var timestamp uint32
		if err := dbus.Store(sig.Body, &id, &timestamp); err != nil {
			t.log.Warn().Err(err).Msg("bad ItemActivationRequested signal")
			return
		}
		handler.ItemActivationRequested(int(id), timestamp)

	case signalNameOwnerChanged:
		var name, oldOwner, newOwner string
		if err := dbus.Store(sig.Body, &name, &oldOwner, &newOwner); err != nil {
			t.log.Warn().Err(err).Msg("bad NameOwnerChanged signal")
			return
		}
		if name != t.busName {
			return
		}
		if newOwner == "" {
			handler.OwnerLost()
		} else {
			handler.OwnerAppeared()
		}

	default:
		t.log.Debug().Str("signal", sig.Name).Msg("ignoring unknown signal")
	}
}

// decodePropertiesUpdated unpacks (a(ia{sv}) a(ias)).
func decodePropertiesUpdated(body []any) ([]models.NodeProperties, []models.RemovedProperties, error) {
	var changed []groupPropertiesEntry
	var dropped []struct {
		ID   int32
		Keys []string
	}
	if err := dbus.Store(body, &changed, &dropped); err != nil {
		return nil, nil, err
	}

	updated := make([]models.NodeProperties, 0, len(changed))
	for _, entry := range changed {
		updated = append(updated, models.NodeProperties{
			ID:         int(entry.ID),
			Properties: fromWireProperties(entry.Properties),
		})
	}
	removed := make([]models.RemovedProperties, 0, len(dropped))
	for _, entry := range dropped {
		removed = append(removed, models.RemovedProperties{ID: int(entry.ID), Keys: entry.Keys})
	}
	return updated, removed, nil
}

// Close tears the bus connection down and stops signal delivery.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
		if t.signals != nil {
			<-t.stopped
		}
	})
	return err
}

// ── Wire value conversion ────────────────────────────────────────────────────

func fromWireProperties(props map[string]dbus.Variant) map[string]models.Variant {
	out := make(map[string]models.Variant, len(props))
	for k, v := range props {
		out[k] = fromWireVariant(v)
	}
	return out
}

// fromWireVariant unboxes nested variants the way the reference protocol
// expects and wraps the payload in a transport-agnostic models.Variant.
func fromWireVariant(v dbus.Variant) models.Variant {
	value := v.Value()
	for {
		inner, nested := value.(dbus.Variant)
		if !nested {
			break
		}
		value = inner.Value()
	}
	return models.NewVariant(value)
}
