// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import "sync"

type request struct {
	target int
	full   bool
}

func (r request) merge(other request) request {
	if other.target > r.target {
		r.target = other.target
	}
	r.full = r.full || other.full
	return r
}

type folderGuard struct {
	pending *request
}

// guards allows at most one pass per folder. Requests arriving while a pass is running are
// collapsed into a single follow-up pass.
type guards struct {
	mu      sync.Mutex
	running map[string]*folderGuard
}

func newGuards() *guards {
	return &guards{running: map[string]*folderGuard{}}
}

// acquire returns true when the caller owns the folder and must eventually call next until it
// returns false. When the folder is busy and collapse is set, req is merged into the follow-up.
func (g *guards) acquire(folder string, req request, collapse bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	guard, busy := g.running[folder]
	if !busy {
		g.running[folder] = &folderGuard{}
		return true
	}

	if collapse {
		if guard.pending == nil {
			guard.pending = &req
		} else {
			merged := guard.pending.merge(req)
			guard.pending = &merged
		}
	}
	return false
}

// next hands the collapsed follow-up to the owner, or releases the folder when there is none.
func (g *guards) next(folder string) (request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	guard, busy := g.running[folder]
	if !busy {
		return request{}, false
	}
	if guard.pending == nil {
		delete(g.running, folder)
		return request{}, false
	}

	req := *guard.pending
	guard.pending = nil
	return req, true
}

func (g *guards) busy(folder string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.running[folder]
	return busy
}

func (g *guards) hasPending(folder string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	guard, busy := g.running[folder]
	return busy && guard.pending != nil
}
