// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import (
	"context"

	"github.com/MKhiriev/go-menu-mirror/models"
)

// SendEvent delivers a user-triggered event (click, hover, open, close) for
// the node with the given id to the remote side. The outcome, success or
// failure, is reported through Observer.EventResult; a nil data payload is
// replaced by the protocol's zero placeholder.
func (s *Session) SendEvent(id int, event string, data models.Variant, timestamp uint32) {
	s.loop.Post(func() {
		node := s.tree.Find(id)
		if node == nil {
			s.log.Warn().Err(ErrUnknownNode).Int("id", id).Str("event", event).Msg("asked to send event for a menuitem we don't know about")
			return
		}
		if data.IsZero() {
			data = models.IntVariant(0)
		}
		if s.closing {
			// Too late to reach the remote side, but the outcome is
			// still reported rather than dropped.
			s.observer.EventResult(node, event, data, timestamp, ErrShutdown)
			return
		}

		ctx := s.ctx
		var cancel context.CancelFunc = func() {}
		if s.timeouts.Event > 0 {
			ctx, cancel = context.WithTimeout(s.ctx, s.timeouts.Event)
		}

		s.calls.Add(1)
		go func() {
			defer s.calls.Done()
			defer cancel()
			err := s.caller.Event(ctx, id, event, data, timestamp)
			s.loop.Post(func() {
				if err != nil {
					s.log.Warn().Err(err).Int("id", id).Str("event", event).Msg("unable to call event on menu item")
				}
				s.observer.EventResult(node, event, data, timestamp, err)
			})
		}()
	})
}

// SendAboutToShow tells the remote side the submenu under id is about to be
// shown. If the server replies that an update is needed, a refresh is issued
// before done runs. done may be nil; when set it runs on the session loop
// exactly once, whether the call succeeded or not.
func (s *Session) SendAboutToShow(id int, done func()) {
	s.loop.Post(func() {
		if s.closing {
			if done != nil {
				done()
			}
			return
		}
		s.calls.Add(1)
		go func() {
			defer s.calls.Done()
			needUpdate, err := s.caller.AboutToShow(s.ctx, id)
			s.loop.Post(func() {
				if err != nil {
					s.log.Warn().Err(err).Int("id", id).Msg("unable to send about-to-show")
				} else if needUpdate {
					s.requestRefresh()
				}
				if done != nil {
					done()
				}
			})
		}()
	})
}
