// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import "sync"

// loop is the session's single logical thread: a mailbox drained by one
// goroutine. Everything that touches session state runs as a posted task,
// which is what makes the batcher tick, reconciliation, and notification
// handling mutually non-overlapping without any further locking.
type loop struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

func newLoop() *loop {
	return &loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn behind the currently waiting tasks. Posting to a closed
// loop drops fn; by then every listener has already received its synthetic
// shutdown completion.
func (l *loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// run drains the mailbox until Close. Queued tasks still run after Close is
// requested; the loop exits once the mailbox is empty.
func (l *loop) run() {
	defer close(l.done)
	for {
		fn, ok := l.next()
		if !ok {
			return
		}
		fn()
	}
}

func (l *loop) next() (func(), bool) {
	for {
		l.mu.Lock()
		if len(l.tasks) > 0 {
			fn := l.tasks[0]
			l.tasks = l.tasks[1:]
			l.mu.Unlock()
			return fn, true
		}
		if l.closed {
			l.mu.Unlock()
			return nil, false
		}
		l.mu.Unlock()
		<-l.wake
	}
}

// Close stops the loop after the remaining tasks have run and waits for the
// goroutine to exit. Safe to call more than once.
func (l *loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}
