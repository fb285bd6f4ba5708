// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-menu-mirror/internal/logger"
)

// RefreshWorker periodically asks the session for a full layout refresh.
// The mirror is normally driven by remote notifications; the worker exists
// for servers that change their menu without announcing it.
type RefreshWorker struct {
	log      *logger.Logger
	target   Refresher
	interval time.Duration

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRefreshWorker builds a worker refreshing target every interval. An
// interval of zero or less disables the worker; Run becomes a no-op.
func NewRefreshWorker(target Refresher, interval time.Duration, log *logger.Logger) *RefreshWorker {
	return &RefreshWorker{
		log:      log,
		target:   target,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run starts the ticker goroutine.
func (w *RefreshWorker) Run() {
	if w.interval <= 0 {
		return
	}
	w.log.Debug().Dur("interval", w.interval).Msg("starting periodic refresh worker")
	w.started = true
	go w.loop()
}

func (w *RefreshWorker) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.target.RequestRefresh()
		case <-w.stop:
			return
		}
	}
}

// Stop halts the ticker and waits for the worker goroutine to exit. Safe to
// call more than once and on a worker that never ran.
func (w *RefreshWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	if !w.started {
		return
	}
	<-w.done
}
