// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session implements the synchronization engine of go-menu-mirror:
// it keeps a local menu.Tree consistent with the remote structure by
// fetching layouts, reconciling them against the existing tree, batching
// property fetches, and dispatching newly realized nodes to type handlers
// before observers see them.
package session

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-menu-mirror/internal/batch"
	"github.com/MKhiriev/go-menu-mirror/internal/config"
	"github.com/MKhiriev/go-menu-mirror/internal/logger"
	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/internal/utils"
	"github.com/MKhiriev/go-menu-mirror/models"
)

// Session owns one mirrored menu tree and the synchronization state machine
// around it. All internal state is confined to the session loop; the
// exported methods are safe to call from any goroutine.
type Session struct {
	log      *logger.Logger
	caller   Caller
	observer Observer
	timeouts config.Timeouts

	loop     *loop
	tree     *menu.Tree
	batcher  *batch.Batcher
	registry *typeRegistry

	// remoteRevision is the newest revision the remote side announced;
	// localRevision is the one the tree actually reflects. localRevision
	// trails remoteRevision until a refresh settles.
	remoteRevision  uint32
	localRevision   uint32
	refreshInFlight bool

	// epoch increments on connection loss; completions carrying an older
	// epoch are stale and discarded without touching the tree.
	epoch uint64

	closing   bool
	ctx       context.Context
	cancel    context.CancelFunc
	calls     sync.WaitGroup
	closeOnce sync.Once
}

// New constructs a Session mirroring the remote menu reachable through
// caller and starts its loop. observer may be nil; timeouts normally come
// from config.GetConfig.
func New(caller Caller, observer Observer, timeouts config.Timeouts, log *logger.Logger) *Session {
	if observer == nil {
		observer = NopObserver{}
	}

	sessionLog := log.GetChildLogger()
	sessionLog.Logger = sessionLog.With().Str("session_id", utils.NewUUIDGenerator().Generate()).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		log:      sessionLog,
		caller:   caller,
		observer: observer,
		timeouts: timeouts,
		loop:     newLoop(),
		tree:     menu.NewTree(),
		registry: newTypeRegistry(sessionLog),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.batcher = batch.New(s.loop, s.fetchGroupProperties, sessionLog)

	go s.loop.run()
	return s
}

// AddTypeHandler registers handler for nodes declaring the given type tag.
// Registration fails if the tag is already claimed.
func (s *Session) AddTypeHandler(tag string, handler TypeHandler) error {
	errc := make(chan error, 1)
	s.loop.Post(func() {
		if s.closing {
			errc <- ErrShutdown
			return
		}
		errc <- s.registry.register(tag, handler)
	})
	select {
	case err := <-errc:
		return err
	case <-s.ctx.Done():
		return ErrShutdown
	}
}

// RequestRefresh asks the session to fetch and reconcile the current remote
// layout. A refresh already in flight absorbs the request: its completion
// re-issues the fetch if the tree is still behind.
func (s *Session) RequestRefresh() {
	s.loop.Post(s.requestRefresh)
}

// Inspect runs fn on the session loop with the live tree and waits for it
// to return. fn must not retain the tree or any node; take snapshots for
// anything that outlives the call.
func (s *Session) Inspect(fn func(tree *menu.Tree)) error {
	done := make(chan struct{})
	s.loop.Post(func() {
		fn(s.tree)
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-s.ctx.Done():
		return ErrShutdown
	}
}

// Close tears the session down: outstanding remote calls are cancelled,
// every waiting callback receives a synthetic error, type handlers release
// their resources, and the loop drains and stops.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		stopped := make(chan struct{})
		s.loop.Post(func() {
			s.closing = true
			s.cancel()
			s.batcher.Shutdown(ErrShutdown)
			s.registry.releaseAll()
			close(stopped)
		})
		// Every task able to start a remote call is ordered before the
		// closing task; tasks behind it see closing set and synthesize
		// their results instead. So once it ran, the in-flight count can
		// only shrink, and each completion posts before the count drops.
		<-stopped
		s.calls.Wait()
		s.loop.Close()
		s.log.Debug().Msg("session closed")
	})
	return nil
}

// ── Transport notification entry points ──────────────────────────────────────
// The transport layer calls these from its own receive goroutine; each posts
// onto the loop so notification handling never overlaps reconciliation.

// LayoutUpdated handles the remote revision-bump notification.
func (s *Session) LayoutUpdated(revision uint32, parentID int) {
	s.loop.Post(func() {
		s.remoteRevision = revision
		s.log.Debug().Uint32("revision", revision).Int("parent", parentID).Msg("layout updated notification")
		if s.remoteRevision > s.localRevision {
			s.requestRefresh()
		}
	})
}

// ItemPropertyUpdated applies a single pushed property change. No fetch is
// needed; the value travels with the notification.
func (s *Session) ItemPropertyUpdated(id int, key string, value models.Variant) {
	s.loop.Post(func() {
		node := s.tree.Find(id)
		if node == nil {
			s.log.Debug().Int("id", id).Str("key", key).Msg("property update for unknown node")
			return
		}
		node.SetProperty(key, value)
	})
}

// ItemPropertiesUpdated applies a bulk property change: removals first,
// then changed pairs.
func (s *Session) ItemPropertiesUpdated(updated []models.NodeProperties, removed []models.RemovedProperties) {
	s.loop.Post(func() {
		for _, rem := range removed {
			node := s.tree.Find(rem.ID)
			if node == nil {
				continue
			}
			for _, key := range rem.Keys {
				node.RemoveProperty(key)
			}
		}
		for _, upd := range updated {
			node := s.tree.Find(upd.ID)
			if node == nil {
				continue
			}
			node.MergeProperties(upd.Properties)
		}
	})
}

// ItemUpdated invalidates one node's properties and refetches them, merging
// the result in place. Structural changes arrive via LayoutUpdated instead.
func (s *Session) ItemUpdated(id int) {
	s.loop.Post(func() {
		if s.closing {
			return
		}
		node := s.tree.Find(id)
		if node == nil {
			s.log.Warn().Int("id", id).Msg("item update for unknown node")
			return
		}
		err := s.batcher.Request(id, func(props map[string]models.Variant, err error) {
			if err != nil {
				s.log.Warn().Err(err).Int("id", id).Msg("error getting properties on a menuitem")
				return
			}
			if s.tree.Find(id) != node {
				// Superseded while the fetch was in flight.
				return
			}
			node.MergeProperties(props)
		})
		if err != nil {
			s.log.Warn().Err(err).Int("id", id).Msg("could not queue property refetch")
		}
	})
}

// ItemActivationRequested resolves the node and tells observers the remote
// side wants it displayed.
func (s *Session) ItemActivationRequested(id int, timestamp uint32) {
	s.loop.Post(func() {
		if s.tree.Root() == nil {
			s.log.Warn().Int("id", id).Msg("asked to activate item without a menu structure")
			return
		}
		node := s.tree.Find(id)
		if node == nil {
			s.log.Warn().Int("id", id).Msg("unable to find menu item to activate")
			return
		}
		s.observer.ItemActivationRequested(node, timestamp)
	})
}

// OwnerAppeared handles the remote endpoint (re)appearing on the bus.
func (s *Session) OwnerAppeared() {
	s.loop.Post(s.requestRefresh)
}

// OwnerLost handles the remote endpoint disappearing: the whole tree is
// dropped, both revision counters reset, and observers are told the root is
// gone. The session then waits for OwnerAppeared before refreshing again.
func (s *Session) OwnerLost() {
	s.loop.Post(func() {
		s.epoch++
		s.remoteRevision = 0
		s.localRevision = 0
		if s.tree.Root() == nil {
			return
		}
		s.log.Info().Msg("menu owner lost, dropping tree")
		s.batcher.Shutdown(ErrConnectionLost)
		s.tree.Clear()
		s.observer.RootChanged(nil)
		s.observer.LayoutUpdated()
	})
}

// ── Refresh machinery ────────────────────────────────────────────────────────

// requestRefresh issues the top-level layout fetch unless one is already in
// flight. Runs on the loop.
func (s *Session) requestRefresh() {
	if s.closing || s.refreshInFlight {
		return
	}
	s.refreshInFlight = true

	epoch := s.epoch
	trace := utils.ShortID()
	s.log.Debug().Str("trace_id", trace).Msg("requesting layout")

	ctx := s.ctx
	var cancel context.CancelFunc = func() {}
	if s.timeouts.Layout > 0 {
		ctx, cancel = context.WithTimeout(s.ctx, s.timeouts.Layout)
	}

	s.calls.Add(1)
	go func() {
		defer s.calls.Done()
		defer cancel()
		revision, layout, err := s.caller.GetLayout(ctx, models.RootID)
		s.loop.Post(func() {
			s.onRefreshComplete(epoch, trace, revision, layout, err)
		})
	}()
}

// onRefreshComplete finishes one refresh: reconcile on success, log and keep
// the old tree authoritative on failure, and go again when a newer revision
// arrived mid-flight. Runs on the loop.
func (s *Session) onRefreshComplete(epoch uint64, trace string, revision uint32, layout models.Layout, err error) {
	s.refreshInFlight = false
	if s.closing {
		return
	}
	if epoch != s.epoch {
		// The connection went away while this call was in flight; the
		// tree it would patch no longer exists.
		s.log.Debug().Str("trace_id", trace).Msg("discarding stale layout response")
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("trace_id", trace).Msg("getting layout failed")
		return
	}

	oldRoot := s.tree.Root()
	newRoot, recErr := s.reconcileRoot(layout)
	if recErr != nil {
		s.log.Warn().Err(recErr).Str("trace_id", trace).Msg("unable to apply layout")
		return
	}

	s.localRevision = revision
	s.log.Debug().
		Str("trace_id", trace).
		Uint32("revision", revision).
		Int("nodes", layout.CountNodes()).
		Msg("layout applied")

	if newRoot != oldRoot {
		s.observer.RootChanged(newRoot)
	}
	s.observer.LayoutUpdated()

	// A newer revision may have been announced while we were parsing.
	if s.localRevision < s.remoteRevision {
		s.requestRefresh()
	}
}

// fetchGroupProperties is the batch.GroupFetcher bound to this session: it
// issues the group call off-loop and posts the response back.
func (s *Session) fetchGroupProperties(ids []int, done func([]models.NodeProperties, error)) {
	epoch := s.epoch
	s.calls.Add(1)
	go func() {
		defer s.calls.Done()
		props, err := s.caller.GetGroupProperties(s.ctx, ids, nil)
		s.loop.Post(func() {
			if epoch != s.epoch {
				// Stale by disconnect; answer the callbacks so nothing
				// leaks, but with an error instead of dead data.
				done(nil, ErrConnectionLost)
				return
			}
			done(props, err)
		})
	}()
}
