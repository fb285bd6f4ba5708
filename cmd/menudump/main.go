// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// menudump mirrors the menu of a running application and either shows it in
// an interactive terminal viewer or dumps it once as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/MKhiriev/go-menu-mirror/internal/config"
	"github.com/MKhiriev/go-menu-mirror/internal/logger"
	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/internal/session"
	"github.com/MKhiriev/go-menu-mirror/internal/transport"
	"github.com/MKhiriev/go-menu-mirror/internal/tui"
	"github.com/MKhiriev/go-menu-mirror/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const settleTimeout = 10 * time.Second

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "menudump: %v\n", err)
		os.Exit(1)
	}
	opts := config.ParseFlags(cfg)
	if err = cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "menudump: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewToolLogger("menudump")

	conn, err := transport.Connect(cfg.Bus, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to the bus")
	}

	if opts.Once {
		runOnce(conn, cfg, log)
		return
	}

	printBuildInfo()
	runViewer(conn, cfg, log)
}

// runViewer starts the interactive viewer and blocks until the user quits.
func runViewer(conn *transport.Transport, cfg *config.Config, log *logger.Logger) {
	ui := tui.New(log)
	sess := session.New(conn, ui, cfg.Timeouts, log)
	ui.Bind(sess, cfg.Bus.Name)

	if err := conn.Watch(sess); err != nil {
		log.Fatal().Err(err).Msg("error subscribing to menu signals")
	}

	refresher := workers.NewRefreshWorker(sess, cfg.Workers.RefreshInterval, log)
	workers.New(refresher).Run()

	sess.RequestRefresh()

	err := ui.Run()

	refresher.Stop()
	_ = sess.Close()
	_ = conn.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("viewer error")
	}
}

// runOnce waits for the mirror to settle, prints it as JSON, and exits.
func runOnce(conn *transport.Transport, cfg *config.Config, log *logger.Logger) {
	waiter := newLayoutWaiter()
	sess := session.New(conn, waiter, cfg.Timeouts, log)

	if err := conn.Watch(sess); err != nil {
		log.Fatal().Err(err).Msg("error subscribing to menu signals")
	}
	sess.RequestRefresh()

	select {
	case <-waiter.updates:
	case <-time.After(settleTimeout):
		fmt.Fprintln(os.Stderr, "menudump: timed out waiting for the menu layout")
		os.Exit(1)
	}

	snapshot, err := settledSnapshot(sess)
	if err != nil {
		fmt.Fprintf(os.Stderr, "menudump: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("error encoding menu tree")
	}
	fmt.Println(string(out))

	_ = sess.Close()
	_ = conn.Close()
}

// layoutWaiter signals the first completed refresh.
type layoutWaiter struct {
	session.NopObserver
	updates chan struct{}
}

func newLayoutWaiter() *layoutWaiter {
	return &layoutWaiter{updates: make(chan struct{}, 1)}
}

func (w *layoutWaiter) LayoutUpdated() {
	select {
	case w.updates <- struct{}{}:
	default:
	}
}

// settledSnapshot polls until every node finished its initial property fetch
// and returns the full tree snapshot.
func settledSnapshot(sess *session.Session) (menu.NodeSnapshot, error) {
	deadline := time.Now().Add(settleTimeout)
	for {
		var snap menu.NodeSnapshot
		settled := false
		err := sess.Inspect(func(tree *menu.Tree) {
			root := tree.Root()
			if root == nil {
				return
			}
			settled = treeSettled(root)
			if settled {
				snap = root.Snapshot()
			}
		})
		if err != nil {
			return menu.NodeSnapshot{}, err
		}
		if settled {
			return snap, nil
		}
		if time.Now().After(deadline) {
			return menu.NodeSnapshot{}, fmt.Errorf("menu never settled within %s", settleTimeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func treeSettled(root *menu.Node) bool {
	stack := []*menu.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.Realized() {
			return false
		}
		stack = append(stack, n.Children()...)
	}
	return true
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
