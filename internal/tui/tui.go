// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui implements the interactive terminal viewer of the menudump
// tool: a live rendering of the mirrored menu tree with keyboard-driven
// event injection.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-menu-mirror/internal/logger"
	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/internal/session"
	"github.com/MKhiriev/go-menu-mirror/models"
)

// TUI is the interactive menu viewer. It doubles as the session's Observer:
// notifications arriving on the session loop are forwarded to the bubbletea
// program as messages, so the view repaints without polling.
type TUI struct {
	log *logger.Logger

	mu      sync.Mutex
	program *tea.Program
}

// New constructs an unbound viewer. Bind must be called before Run; the two
// steps are separate because the session wants the TUI as its observer while
// the TUI wants the session to render.
func New(log *logger.Logger) *TUI {
	return &TUI{log: log}
}

// Bind attaches the session the viewer renders and names the remote endpoint
// for the title line.
func (t *TUI) Bind(sess *session.Session, busName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.program = tea.NewProgram(newAppModel(sess, busName), tea.WithAltScreen())
}

// Run blocks until the user quits the viewer.
func (t *TUI) Run() error {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()

	if p == nil {
		return ErrNotBound
	}
	_, err := p.Run()
	return err
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// ── session.Observer ─────────────────────────────────────────────────────────
// Callbacks run on the session loop; everything the view needs is copied into
// the message before it crosses over.

func (t *TUI) RootChanged(*menu.Node) {
	t.send(menuChangedMsg{})
}

func (t *TUI) LayoutUpdated() {
	t.send(menuChangedMsg{})
}

func (t *TUI) NewNode(*menu.Node) {}

func (t *TUI) ItemActivationRequested(node *menu.Node, _ uint32) {
	t.send(activationMsg{id: node.ID()})
}

func (t *TUI) EventResult(_ *menu.Node, event string, _ models.Variant, _ uint32, err error) {
	t.send(eventResultMsg{event: event, err: err})
}

var _ session.Observer = (*TUI)(nil)
