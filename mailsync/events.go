// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import "time"

type EventKind string

const (
	SyncStarted    = EventKind("started")
	SyncFinished   = EventKind("finished")
	BatchLoaded    = EventKind("batch")
	SyncFailed     = EventKind("failed")
	ConnectionLost = EventKind("connectionlost")
)

type Event struct {
	Folder string
	Kind   EventKind
	Result *Result
	Err    error
	At     time.Time
}

const subscriberBuffer = 32

// Subscribe returns a channel receiving sync events. Slow subscribers miss events instead of
// stalling the sync, the cache always holds the current state.
func (s *Synchronizer) Subscribe() <-chan Event {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.stopped {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Synchronizer) Unsubscribe(sub <-chan Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for i, ch := range s.subscribers {
		if ch == sub {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (s *Synchronizer) publish(e Event) {
	e.At = time.Now()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- e:
		default:
			s.l.WithField("folder", e.Folder).Debug("Dropped event for slow subscriber")
		}
	}
}

func (s *Synchronizer) closeSubscribers() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	s.stopped = true
}
