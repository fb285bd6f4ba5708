// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package batch coalesces per-node property requests into group calls.
//
// Requests accumulate while the owning session works through its current
// task cascade; the batcher schedules one flush task behind that work, so a
// reconciliation pass that touches dozens of nodes produces a single group
// call instead of one round-trip per node.
package batch

import (
	"fmt"

	"github.com/MKhiriev/go-menu-mirror/internal/logger"
	"github.com/MKhiriev/go-menu-mirror/models"
)

// MaxBatch is the number of queued requests that forces an immediate flush
// instead of waiting for the scheduled tick.
const MaxBatch = 100

// Callback receives the fetched property map for one node, or the error
// that prevented the fetch. Exactly one of the two is non-nil. Callbacks run
// on the session loop.
type Callback func(props map[string]models.Variant, err error)

// Scheduler posts a function to run after the currently queued session work.
// The session loop implements it.
type Scheduler interface {
	Post(fn func())
}

// GroupFetcher issues one group property call for ids and eventually invokes
// done with the response, on the session loop. Implementations must always
// call done, also on cancellation.
type GroupFetcher func(ids []int, done func(props []models.NodeProperties, err error))

type pendingRequest struct {
	id      int
	cb      Callback
	replied bool
}

// Batcher coalesces property requests for one session. It is confined to
// the session loop and performs no locking of its own.
type Batcher struct {
	log   *logger.Logger
	sched Scheduler
	fetch GroupFetcher

	pending    []*pendingRequest
	index      map[int]*pendingRequest
	tickQueued bool
}

// New constructs a Batcher flushing through fetch on ticks posted to sched.
func New(sched Scheduler, fetch GroupFetcher, log *logger.Logger) *Batcher {
	return &Batcher{
		log:   log,
		sched: sched,
		fetch: fetch,
		index: make(map[int]*pendingRequest),
	}
}

// Len returns the number of requests waiting in the current batch.
func (b *Batcher) Len() int {
	return len(b.pending)
}

// Request queues a property fetch for id. The callback fires after the next
// flush. A second request for an id already waiting in this batch is
// rejected with ErrDuplicateRequest and leaves the first request untouched.
func (b *Batcher) Request(id int, cb Callback) error {
	if _, dup := b.index[id]; dup {
		b.log.Warn().Int("id", id).Msg("asking for properties from same id twice")
		return fmt.Errorf("%w: %d", ErrDuplicateRequest, id)
	}

	req := &pendingRequest{id: id, cb: cb}
	b.pending = append(b.pending, req)
	b.index[id] = req

	if !b.tickQueued {
		b.tickQueued = true
		b.sched.Post(b.tick)
	}

	// Don't let a single group call grow without bound.
	if len(b.pending) == MaxBatch {
		b.Flush()
	}

	return nil
}

func (b *Batcher) tick() {
	b.tickQueued = false
	b.Flush()
}

// Flush issues the group call for everything queued so far and starts a
// fresh batch. Flushing an empty batch is a no-op.
func (b *Batcher) Flush() {
	if len(b.pending) == 0 {
		return
	}

	take := b.pending
	b.pending = nil
	b.index = make(map[int]*pendingRequest)

	ids := make([]int, len(take))
	for i, req := range take {
		ids[i] = req.id
	}
	b.log.Debug().Ints("ids", ids).Msg("flushing property batch")

	b.fetch(ids, func(props []models.NodeProperties, err error) {
		b.demux(take, props, err)
	})
}

// demux routes one group response back to the callbacks that were waiting
// for it.
func (b *Batcher) demux(take []*pendingRequest, props []models.NodeProperties, err error) {
	if err != nil {
		// A call-level failure belongs to every waiting callback.
		b.log.Warn().Err(err).Int("count", len(take)).Msg("group properties call failed")
		for _, req := range take {
			req.cb(nil, err)
			req.replied = true
		}
		return
	}

	for _, entry := range props {
		req := findRequest(take, entry.ID)
		if req == nil {
			b.log.Warn().Int("id", entry.ID).Msg("unable to find listener for id")
			continue
		}
		if req.replied {
			b.log.Warn().Int("id", entry.ID).Msg("already replied to the listener on id")
			continue
		}
		req.replied = true
		req.cb(entry.Properties, nil)
	}

	// Everyone the response skipped still gets an answer.
	for _, req := range take {
		if req.replied {
			continue
		}
		b.log.Warn().Int("id", req.id).Msg("generating properties error for id")
		req.replied = true
		req.cb(nil, fmt.Errorf("%w: %d", ErrPropertiesUnavailable, req.id))
	}
}

// Shutdown fails every request still waiting in the current batch with err,
// so no callback is silently dropped at session teardown. Requests already
// in flight are answered by their group call's cancellation instead.
func (b *Batcher) Shutdown(err error) {
	take := b.pending
	b.pending = nil
	b.index = make(map[int]*pendingRequest)
	b.tickQueued = false

	for _, req := range take {
		req.replied = true
		req.cb(nil, err)
	}
}

func findRequest(take []*pendingRequest, id int) *pendingRequest {
	for _, req := range take {
		if req.id == id {
			return req
		}
	}
	return nil
}
