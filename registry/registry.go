// SPDX-License-Identifier: GPL-3.0-or-later
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/log"
	"github.com/CrawX/go-imap-mailsync/mailcache"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTTL      = 30 * time.Minute
	DefaultCapacity = 10
)

var ErrUnknownSession = errors.New("unknown or expired session")

// Factory builds an unconnected mailbox session and the cached mailbox on top of it.
type Factory func(creds *domain.Credentials) (domain.MailboxSession, *mailcache.CachedMailbox, error)

type Entry struct {
	ID       string
	Username string
	OpenedAt time.Time

	Mailbox *mailcache.CachedMailbox
	session domain.MailboxSession
}

func (e *Entry) State() domain.SessionState {
	return e.session.State()
}

// Registry holds the logged in sessions of the process. Sessions expire after ttl without
// access, the least recently used session is logged out when capacity is exceeded.
type Registry struct {
	sessions *expirable.LRU[string, *Entry]
	wg       sync.WaitGroup
	l        *logrus.Logger
}

func NewRegistry(ttl time.Duration, capacity int) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	r := &Registry{l: log.Logger(log.LOG_REGISTRY)}
	r.sessions = expirable.NewLRU[string, *Entry](capacity, r.evicted, ttl)
	return r
}

// Open connects a new session with creds. The registry takes ownership of creds: they are
// wiped once the session holds its own copy, or when connecting failed.
func (r *Registry) Open(ctx context.Context, creds *domain.Credentials, factory Factory) (string, *Entry, error) {
	defer creds.Wipe()

	session, mailbox, err := factory(creds)
	if err != nil {
		return "", nil, fmt.Errorf("could not create session: %w", err)
	}

	err = session.Connect(ctx, creds)
	if err != nil {
		<-mailbox.Logout()
		return "", nil, fmt.Errorf("could not open session for %s: %w", creds.Username, err)
	}

	entry := &Entry{
		ID:       uuid.New().String(),
		Username: creds.Username,
		OpenedAt: time.Now(),
		Mailbox:  mailbox,
		session:  session,
	}
	r.sessions.Add(entry.ID, entry)

	r.l.WithFields(logrus.Fields{"id": entry.ID, "user": entry.Username, "sessions": r.sessions.Len()}).Info("Opened session")
	return entry.ID, entry, nil
}

// Get returns the session with id and restarts its expiry.
func (r *Registry) Get(id string) (*Entry, error) {
	entry, ok := r.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	r.sessions.Add(id, entry)
	return entry, nil
}

// Close logs out the session with id. Closing an unknown session is not an error.
func (r *Registry) Close(id string) {
	r.sessions.Remove(id)
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Shutdown logs out every session and waits until all of them finished disconnecting.
func (r *Registry) Shutdown() {
	r.sessions.Purge()
	r.wg.Wait()
}

// evicted runs under the lock of the LRU, the logout happens in the background.
func (r *Registry) evicted(id string, entry *Entry) {
	r.l.WithFields(logrus.Fields{"id": id, "user": entry.Username, "age": time.Since(entry.OpenedAt)}).Info("Closing session")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		<-entry.Mailbox.Logout()
	}()
}
