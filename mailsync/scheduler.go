// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import (
	"context"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"

	"github.com/sirupsen/logrus"
)

const evictionInterval = 24 * time.Hour

// Start runs a sync of folders every Interval until Stop or StopSchedule is called. Calling
// Start again replaces the folder set. A folder whose pass is still running is skipped for
// that tick.
func (s *Synchronizer) Start(ctx context.Context, folders []string) {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	if s.schedCancel != nil {
		s.schedCancel()
	}
	if s.ctx.Err() != nil {
		return
	}

	schedCtx, cancel := context.WithCancel(s.ctx)
	s.schedCancel = cancel

	folders = append([]string{}, folders...)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.schedule(ctx, schedCtx, folders)
	}()

	s.l.WithFields(logrus.Fields{"folders": folders, "interval": s.configuration.Interval}).Info("Started scheduled sync")
}

// StopSchedule cancels the scheduled loop, passes that are running finish normally.
func (s *Synchronizer) StopSchedule() {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	if s.schedCancel != nil {
		s.schedCancel()
		s.schedCancel = nil
	}
}

func (s *Synchronizer) schedule(parent context.Context, ctx context.Context, folders []string) {
	ticker := time.NewTicker(s.configuration.Interval)
	defer ticker.Stop()

	lastEviction := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return
		case <-parent.Done():
			return
		case <-ticker.C:
		}

		if !s.ensureConnected(ctx) {
			continue
		}

		for _, folder := range folders {
			if ctx.Err() != nil {
				return
			}
			_, err := s.run(ctx, folder, request{target: s.Target(folder)}, false)
			if domain.IsConnectionError(err) {
				// the session is in Error now, reconnect on the next tick
				break
			}
		}

		if s.configuration.EvictAfterDays > 0 && time.Since(lastEviction) >= evictionInterval {
			lastEviction = time.Now()
			s.evict(ctx)
		}
	}
}

func (s *Synchronizer) ensureConnected(ctx context.Context) bool {
	switch s.session.State() {
	case domain.Ready:
		return true
	case domain.Error:
		err := s.session.Reconnect(ctx)
		if err != nil {
			s.l.WithField("error", err).Warn("Reconnect failed, retrying on next tick")
			s.publish(Event{Kind: ConnectionLost, Err: err})
			return false
		}
		s.l.Info("Reconnected")
		return true
	default:
		s.l.WithField("state", s.session.State()).Debug("Session not ready, skipping scheduled sync")
		return false
	}
}

// Evict removes messages cached more than EvictAfter days ago. It does nothing when eviction
// is disabled. Folders lose their exhausted mark, so the next passes load evicted messages
// again up to the target.
func (s *Synchronizer) Evict(ctx context.Context) (int64, error) {
	if s.configuration.EvictAfterDays == 0 {
		return 0, nil
	}

	evicted, err := s.cache.EvictOlderThan(ctx, s.configuration.EvictAfterDays)
	if err != nil {
		return 0, err
	}
	if evicted > 0 {
		s.targetsMu.Lock()
		s.exhausted = map[string]bool{}
		s.targetsMu.Unlock()
	}
	return evicted, nil
}

func (s *Synchronizer) evict(ctx context.Context) {
	evicted, err := s.Evict(ctx)
	if err != nil {
		s.l.WithField("error", err).Warn("Could not evict cached messages")
		return
	}
	s.l.WithField("evicted", evicted).Debug("Evicted cached messages")
}
