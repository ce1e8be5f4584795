// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
)

// fakeSession is an in-memory mailbox with a single folder.
type fakeSession struct {
	mu          sync.Mutex
	state       domain.SessionState
	uidValidity uint32
	uids        []uint32
	unparseable map[uint32]bool
	flags       map[uint32]domain.Flags
	fetchErr    error
	reconnects  int
	fetches     int

	gate        chan struct{}
	inFlight    int32
	maxInFlight int32
}

func newFakeSession(uids ...uint32) *fakeSession {
	return &fakeSession{
		state:       domain.Ready,
		uidValidity: 7,
		uids:        uids,
		unparseable: map[uint32]bool{},
		flags:       map[uint32]domain.Flags{},
	}
}

func uidRange(from, to uint32) []uint32 {
	uids := []uint32{}
	for u := from; u <= to; u++ {
		uids = append(uids, u)
	}
	return uids
}

func (f *fakeSession) add(uids ...uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uids = append(f.uids, uids...)
}

// appendNext delivers a new message with the next free uid.
func (f *fakeSession) appendNext() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := uint32(1)
	for _, u := range f.uids {
		if u >= next {
			next = u + 1
		}
	}
	f.uids = append(f.uids, next)
	return next
}

// expunge removes uids the way another client would.
func (f *fakeSession) expunge(uids ...uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uids = filterOut(f.uids, uids)
}

func (f *fakeSession) setFlags(uid uint32, flags domain.Flags) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[uid] = flags
}

func filterOut(uids []uint32, drop []uint32) []uint32 {
	kept := []uint32{}
	for _, u := range uids {
		keep := true
		for _, d := range drop {
			if u == d {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, u)
		}
	}
	return kept
}

func (f *fakeSession) setState(state domain.SessionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

func (f *fakeSession) reconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnects
}

func (f *fakeSession) message(folder string, uid uint32) *domain.Message {
	return &domain.Message{
		ID:          fmt.Sprintf("%d.%d@example.org", f.uidValidity, uid),
		UID:         uid,
		Folder:      folder,
		Subject:     fmt.Sprintf("message %d", uid),
		From:        domain.EmailAddress{Address: "bob@example.org"},
		Date:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(uid) * time.Minute),
		Attachments: []domain.Attachment{},
		Flags:       f.flags[uid],
	}
}

func (f *fakeSession) enter() func() {
	n := atomic.AddInt32(&f.inFlight, 1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if n <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, n) {
			break
		}
	}

	f.mu.Lock()
	gate := f.gate
	f.fetches++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return func() { atomic.AddInt32(&f.inFlight, -1) }
}

func (f *fakeSession) result(folder string, uids []uint32) *domain.FetchResult {
	result := &domain.FetchResult{UIDValidity: f.uidValidity, Requested: len(uids)}
	for _, uid := range uids {
		if uid > result.MaxUID {
			result.MaxUID = uid
		}
		if result.MinUID == 0 || uid < result.MinUID {
			result.MinUID = uid
		}
		if f.unparseable[uid] {
			result.Skipped++
			continue
		}
		result.Messages = append(result.Messages, f.message(folder, uid))
	}
	return result
}

func (f *fakeSession) Connect(ctx context.Context, creds *domain.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = domain.Ready
	return nil
}

func (f *fakeSession) Reconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	f.state = domain.Ready
	f.fetchErr = nil
	return nil
}

func (f *fakeSession) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = domain.Disconnected
	return nil
}

func (f *fakeSession) State() domain.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	return []*domain.Folder{{Name: "INBOX", Path: "INBOX", Delimiter: "/", Attributes: []string{}}}, nil
}

func (f *fakeSession) FetchMessages(ctx context.Context, folder string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	defer f.enter()()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	uids := []uint32{}
	for _, u := range f.uids {
		if opts.BeforeUID == 0 || u < opts.BeforeUID {
			uids = append(uids, u)
		}
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
	if opts.Limit > 0 && len(uids) > opts.Limit {
		uids = uids[:opts.Limit]
	}
	return f.result(folder, uids), nil
}

func (f *fakeSession) FetchMessagesAfter(ctx context.Context, folder string, uid uint32) (*domain.FetchResult, error) {
	defer f.enter()()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	uids := []uint32{}
	for _, u := range f.uids {
		if u > uid {
			uids = append(uids, u)
		}
	}
	return f.result(folder, uids), nil
}

func (f *fakeSession) FetchFlags(ctx context.Context, folder string, uids []uint32) (*domain.FlagsResult, error) {
	defer f.enter()()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	result := &domain.FlagsResult{Flags: map[uint32]domain.Flags{}, UIDValidity: f.uidValidity}
	for _, uid := range uids {
		for _, u := range f.uids {
			if u == uid {
				result.Flags[uid] = f.flags[uid]
			}
		}
	}
	return result, nil
}

func (f *fakeSession) FetchBody(ctx context.Context, folder string, uid uint32) (*domain.Body, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeSession) SetFlag(ctx context.Context, folder string, uid uint32, flag domain.Flag, value bool) error {
	return nil
}

func (f *fakeSession) Delete(ctx context.Context, folder string, uid uint32) error {
	return nil
}

func (f *fakeSession) Move(ctx context.Context, folder string, uid uint32, dest string) error {
	return nil
}

func (f *fakeSession) Send(ctx context.Context, opts domain.SendOptions) error {
	return nil
}
